package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/audio-features/pkg/audio/scaler"
)

var (
	scalerFormat string
	scalerTo     string
	scalerForce  bool
)

// scalerCmd groups the persisted scaler commands
var scalerCmd = &cobra.Command{
	Use:   "scaler",
	Short: "Inspect and convert persisted dataset scalers",
}

var scalerInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Display the statistics of a saved scaler",
	Long: `Load a scaler saved with scaler.Save and display its kind and a summary
of its per-column statistics.

The format is taken from --format, or from the file extension
(.yaml/.yml or .msgpack/.mp) when --format is not given.`,
	Args: cobra.ExactArgs(1),
	RunE: runScalerInspect,
}

var scalerConvertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Re-encode a saved scaler in another format",
	Args:  cobra.ExactArgs(2),
	RunE:  runScalerConvert,
}

func init() {
	scalerCmd.PersistentFlags().StringVarP(&scalerFormat, "format", "f", "",
		"input format (yaml, msgpack); detected from the extension when empty")
	scalerConvertCmd.Flags().StringVarP(&scalerTo, "to", "t", "",
		"output format (yaml, msgpack); detected from the extension when empty")
	scalerConvertCmd.Flags().BoolVar(&scalerForce, "force", false,
		"overwrite an existing output file")

	scalerCmd.AddCommand(scalerInspectCmd, scalerConvertCmd)
	rootCmd.AddCommand(scalerCmd)
}

func runScalerInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := loadScalerFile(args[0], scalerFormat)
	if err != nil {
		return err
	}

	printSection(out, "SCALER")
	printKeyValue(out, "File", args[0])
	printKeyValue(out, "Kind", s.Kind().String())

	state, err := s.State()
	if err != nil {
		return err
	}
	printKeyValue(out, "Columns", fmt.Sprintf("%d", len(state.Center)))
	if len(state.Center) == 0 {
		return nil
	}

	printKeyValue(out, "Center", fmt.Sprintf("min %.4f, max %.4f",
		floats.Min(state.Center), floats.Max(state.Center)))
	printKeyValue(out, "Scale", fmt.Sprintf("min %.4f, max %.4f",
		floats.Min(state.Scale), floats.Max(state.Scale)))

	if verbose {
		printSubsection(out, "Per column")
		for j := range state.Center {
			printKeyValue(out, fmt.Sprintf("    [%d]", j),
				fmt.Sprintf("center %.6f, scale %.6f", state.Center[j], state.Scale[j]))
		}
	}
	return nil
}

func runScalerConvert(cmd *cobra.Command, args []string) error {
	in, outPath := args[0], args[1]

	s, err := loadScalerFile(in, scalerFormat)
	if err != nil {
		return err
	}

	format, err := resolveFormat(outPath, scalerTo)
	if err != nil {
		return err
	}

	if fileExists(outPath) && !scalerForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", outPath)
	}

	if err := writeScalerFile(outPath, s, format); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s scaler to %s (%s)\n", s.Kind(), outPath, format)
	return nil
}

func loadScalerFile(path, name string) (scaler.Scaler, error) {
	format, err := resolveFormat(path, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scaler file: %w", err)
	}
	defer f.Close()

	s, err := scaler.Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load scaler from %s: %w", path, err)
	}
	return s, nil
}

// writeScalerFile saves s to path. A failed save or close removes the
// partially written file.
func writeScalerFile(path string, s scaler.Scaler, format scaler.Format) (err error) {
	if _, err := s.State(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := scaler.Save(f, s, format); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// resolveFormat parses an explicit format name or falls back to the file extension
func resolveFormat(path, name string) (scaler.Format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	return scaler.ParseFormat(name)
}
