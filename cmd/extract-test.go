package cmd

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
	"github.com/RyanBlaney/audio-features/pkg/audio/extractors"
	"github.com/RyanBlaney/audio-features/pkg/audio/scaler"
)

var (
	extractFeature    string
	extractTones      []float64
	extractSaveScaler string
)

// extractTestCmd runs the full pipeline on synthetic tones
var extractTestCmd = &cobra.Command{
	Use:   "extract-test",
	Short: "Run feature extraction on synthetic tones",
	Long: `Generate one pure tone per --tones frequency at the configured clip
length, fit the configured scaler on all of them and extract the selected
feature from each, reporting shapes and value ranges.

Examples:
  # Spectrogram with the default configuration
  audio-features extract-test

  # MFCC of three tones, keeping the fitted scaler
  audio-features extract-test --feature mfcc --tones 220,440,880 --save-scaler scaler.yaml`,
	RunE: runExtractTest,
}

func init() {
	extractTestCmd.Flags().StringVar(&extractFeature, "feature", "spectrogram",
		"feature to extract (spectrogram, mel, mfcc)")
	extractTestCmd.Flags().Float64SliceVar(&extractTones, "tones", []float64{220, 440, 880},
		"tone frequencies in Hz, one clip per tone")
	extractTestCmd.Flags().StringVar(&extractSaveScaler, "save-scaler", "",
		"write the fitted scaler to this file (.yaml or .msgpack)")

	rootCmd.AddCommand(extractTestCmd)
}

type featureFuncs struct {
	raw     func([]float64) (*mat.Dense, error)
	extract func([]float64) (*extractors.Feature, error)
}

func selectFeature(fe *extractors.FeatureExtractor, name string) (featureFuncs, error) {
	switch strings.ToLower(name) {
	case "spectrogram", "spec":
		return featureFuncs{fe.SpectrogramDB, fe.ExtractSpectrogram}, nil
	case "mel", "melspectrogram":
		return featureFuncs{fe.MelSpectrogramDB, fe.ExtractMelSpectrogram}, nil
	case "mfcc":
		return featureFuncs{fe.MFCCMatrix, fe.ExtractMFCC}, nil
	default:
		return featureFuncs{}, fmt.Errorf("unknown feature %q", name)
	}
}

func runExtractTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(extractTones) == 0 {
		return fmt.Errorf("at least one tone is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	fc, err := cfg.Features.ToFeatureConfig()
	if err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "extract_test",
		"feature":   extractFeature,
	})

	fe, err := extractors.NewFeatureExtractor(fc, extractors.WithLogger(logger))
	if err != nil {
		return err
	}
	funcs, err := selectFeature(fe, extractFeature)
	if err != nil {
		return err
	}

	clips := make([][]float64, len(extractTones))
	for i, freq := range extractTones {
		clips[i] = synthesizeTone(freq, fc)
	}

	printFeatureConfig(out, fc)

	if fc.ScalerKind != config.ScalerNone {
		start := time.Now()
		raws := make([]mat.Matrix, len(clips))
		for i, clip := range clips {
			raws[i], err = funcs.raw(clip)
			if err != nil {
				return err
			}
		}
		if err := fe.FitScaler(raws...); err != nil {
			return err
		}

		printSection(out, "SCALER FIT")
		printKeyValue(out, "Clips", fmt.Sprintf("%d", len(raws)))
		printKeyValue(out, "Elapsed", time.Since(start).String())
	}

	printSection(out, "EXTRACTION")
	for i, clip := range clips {
		feature, err := funcs.extract(clip)
		if err != nil {
			return fmt.Errorf("tone %.1f Hz: %w", extractTones[i], err)
		}
		rows, cols := feature.Dims()
		printKeyValue(out, fmt.Sprintf("%.1f Hz", extractTones[i]),
			fmt.Sprintf("%dx%d, min %.4f, max %.4f",
				rows, cols, mat.Min(feature.Matrix), mat.Max(feature.Matrix)))
	}

	if extractSaveScaler != "" {
		if err := saveScalerFile(fe.Scaler(), extractSaveScaler); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved %s scaler to %s\n", fe.Scaler().Kind(), extractSaveScaler)
	}

	return nil
}

func synthesizeTone(freq float64, fc config.FeatureConfig) []float64 {
	pcm := make([]float64, fc.AudioLength())
	for i := range pcm {
		pcm[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(fc.SampleRate))
	}
	return pcm
}

func saveScalerFile(s scaler.Scaler, path string) error {
	format, err := resolveFormat(path, "")
	if err != nil {
		return err
	}
	return writeScalerFile(path, s, format)
}
