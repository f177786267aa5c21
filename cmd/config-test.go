package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/audio-features/configs"
	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Validate and display the feature extraction configuration",
	Long: `Load the configuration and display the resolved feature settings,
including the derived clip length and frame count.

Examples:
  # Defaults only
  audio-features config-test

  # With a specific config file
  audio-features --config /path/to/config.yaml config-test`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fc, err := cfg.Features.ToFeatureConfig()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "AUDIO FEATURES CONFIGURATION TEST")
	fmt.Fprintln(out, strings.Repeat("=", 80))

	printSection(out, "APPLICATION SETTINGS")
	printKeyValue(out, "Log Level", cfg.LogLevel)

	printFeatureConfig(out, fc)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid")
	return nil
}

func printFeatureConfig(out io.Writer, fc config.FeatureConfig) {
	length := fc.AudioLength()

	printSection(out, "SAMPLING")
	printKeyValue(out, "Sample Rate", fmt.Sprintf("%d Hz", fc.SampleRate))
	printKeyValue(out, "Duration", fmt.Sprintf("%.3f s", fc.Duration))
	printKeyValue(out, "Audio Length", fmt.Sprintf("%d samples", length))

	printSection(out, "TRANSFORMS")
	printKeyValue(out, "FFT Size", fmt.Sprintf("%d", fc.FFTSize))
	printKeyValue(out, "Hop Length", fmt.Sprintf("%d", fc.HopLength))
	printKeyValue(out, "Time Frames", fmt.Sprintf("%d", fc.NumFrames(length)))
	printKeyValue(out, "Frequency Bins", fmt.Sprintf("%d", fc.FFTSize/2+1))
	printKeyValue(out, "Mel Bands", fmt.Sprintf("%d", fc.NumMels))
	printKeyValue(out, "MFCC", fmt.Sprintf("%d", fc.NumMFCC))
	printKeyValue(out, "Use Delta", fmt.Sprintf("%t", fc.UseDelta))

	printSection(out, "NORMALIZATION")
	printKeyValue(out, "Scaler", fc.ScalerKind.String())
	lo, hi := fc.DataRange.Bounds()
	printKeyValue(out, "Data Range", fmt.Sprintf("%s [%g, %g]", fc.DataRange, lo, hi))
}

// loadConfig decodes the global configuration assembled by initConfig: the
// config file, AUDIO_FEATURES_* environment, bound flags and defaults
func loadConfig() (*configs.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return configs.Load(viper.GetViper())
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "\n%s\n", title)
	fmt.Fprintln(out, strings.Repeat("-", len(title)))
}

func printSubsection(out io.Writer, title string) {
	fmt.Fprintf(out, "\n  %s\n", title)
}

func printKeyValue(out io.Writer, key, value string) {
	if value == "" {
		fmt.Fprintf(out, "%-35s\n", key)
	} else {
		fmt.Fprintf(out, "%-35s %s\n", key+":", value)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
