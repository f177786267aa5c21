package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/audio-features/pkg/audio/scaler"
)

// run executes the root command with args and returns its output. The global
// viper and package flag variables are reset first since rootCmd is shared
// between tests.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	configFile = ""
	logLevel = "info"
	verbose = false
	scalerFormat = ""
	scalerTo = ""
	scalerForce = false
	extractFeature = "spectrogram"
	extractSaveScaler = ""
	resetChanged(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetChanged(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetChanged(sub)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigTestDefaults(t *testing.T) {
	out, err := run(t, "config-test")
	require.NoError(t, err)

	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "17640 samples")
	assert.Regexp(t, `Time Frames:\s+33`, out)
	assert.Regexp(t, `Scaler:\s+standard`, out)
}

func TestConfigTestFromFile(t *testing.T) {
	path := writeFile(t, "features.yaml", `features:
  sample_rate: 16000
  duration: 1.0
  n_fft: 512
  hop_length: 160
  scaler_type: none
`)

	out, err := run(t, "--config", path, "config-test")
	require.NoError(t, err)
	assert.Regexp(t, `Time Frames:\s+97`, out)
	assert.Regexp(t, `Frequency Bins:\s+257`, out)
	assert.Regexp(t, `Scaler:\s+none`, out)
}

func TestConfigTestSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "audio-features.yaml"),
		[]byte("log_level: debug\nfeatures:\n  n_fft: 2048\n"), 0o644))
	t.Chdir(dir)

	out, err := run(t, "config-test")
	require.NoError(t, err)
	assert.Regexp(t, `FFT Size:\s+2048`, out)
	assert.Regexp(t, `Time Frames:\s+31`, out)
	assert.Regexp(t, `Log Level:\s+debug`, out)
}

func TestConfigTestLogLevelFlag(t *testing.T) {
	out, err := run(t, "--log-level", "debug", "config-test")
	require.NoError(t, err)
	assert.Regexp(t, `Log Level:\s+debug`, out)
}

func TestConfigTestMissingFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config-test")
	assert.Error(t, err)
}

func TestConfigTestInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "features:\n  scaler_type: quantile\n")

	_, err := run(t, "--config", path, "config-test")
	assert.Error(t, err)
}

func TestExtractAndScalerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "scaler.yaml")
	packPath := filepath.Join(dir, "scaler.msgpack")

	out, err := run(t, "extract-test", "--feature", "mel", "--save-scaler", yamlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "33x128")
	assert.Contains(t, out, "Saved standard scaler")

	out, err = run(t, "scaler", "inspect", yamlPath)
	require.NoError(t, err)
	assert.Regexp(t, `Kind:\s+standard`, out)
	assert.Regexp(t, `Columns:\s+33`, out)

	out, err = run(t, "scaler", "convert", yamlPath, packPath)
	require.NoError(t, err)
	assert.Contains(t, out, "(msgpack)")

	out, err = run(t, "scaler", "inspect", packPath)
	require.NoError(t, err)
	assert.Regexp(t, `Kind:\s+standard`, out)

	_, err = run(t, "scaler", "convert", yamlPath, packPath)
	assert.Error(t, err)

	_, err = run(t, "scaler", "convert", "--force", yamlPath, packPath)
	assert.NoError(t, err)
}

func TestExtractTestUnknownFeature(t *testing.T) {
	_, err := run(t, "extract-test", "--feature", "chroma")
	assert.Error(t, err)
}

func TestScalerInspectUnknownFormat(t *testing.T) {
	path := writeFile(t, "scaler.json", "{}")

	_, err := run(t, "scaler", "inspect", path)
	assert.Error(t, err)
}

func TestWriteScalerFileLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "unfitted.yaml")
	err := writeScalerFile(path, scaler.NewStandardScaler(), scaler.FormatYAML)
	assert.ErrorIs(t, err, scaler.ErrNotFitted)
	assert.NoFileExists(t, path)

	fitted := scaler.NewMinMaxScaler()
	require.NoError(t, fitted.Fit(mat.NewDense(2, 2, []float64{0, 1, 2, 3})))

	path = filepath.Join(dir, "bad-format.bin")
	err = writeScalerFile(path, fitted, scaler.Format(9))
	assert.Error(t, err)
	assert.NoFileExists(t, path)

	path = filepath.Join(dir, "ok.msgpack")
	require.NoError(t, writeScalerFile(path, fitted, scaler.FormatMsgPack))
	assert.FileExists(t, path)
}
