package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configFile string
	verbose    bool
	logLevel   string

	// configErr keeps the read failure of an explicit --config file
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audio-features",
	Short: "Audio feature extraction toolkit",
	Long: `Tooling around the audio feature extractor.

Inspect the effective feature configuration, inspect or convert persisted
dataset scalers, and run the extraction pipeline on synthetic signals to
check a configuration end to end.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return err
		}
		applyLogLevel()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/audio-features/audio-features.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info)")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	configErr = nil

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "audio-features"))
		}
		viper.AddConfigPath("./configs")
		viper.SetConfigName("audio-features")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("AUDIO_FEATURES")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		configErr = fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper())
}

// bindFlags binds each cobra flag to its associated viper configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindEnv(f.Name, "AUDIO_FEATURES_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

func applyLogLevel() {
	if strings.EqualFold(viper.GetString("log_level"), "debug") || verbose {
		logging.SetLevel(logging.DebugLevel)
		return
	}
	logging.SetLevel(logging.InfoLevel)
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
