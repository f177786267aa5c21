package configs

import (
	"github.com/spf13/viper"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

// setDefaults registers default configuration values for all components.
// Defaults have the lowest precedence, below files, environment and flags.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	def := config.DefaultFeatureConfig()

	v.SetDefault("features.sample_rate", def.SampleRate)
	v.SetDefault("features.duration", def.Duration)
	v.SetDefault("features.n_mels", def.NumMels)
	v.SetDefault("features.n_mfcc", def.NumMFCC)
	v.SetDefault("features.n_fft", def.FFTSize)
	v.SetDefault("features.hop_length", def.HopLength)
	v.SetDefault("features.data_range", def.DataRange.Int())
	v.SetDefault("features.scaler_type", def.ScalerKind.String())
	v.SetDefault("features.use_delta", def.UseDelta)
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	def := config.DefaultFeatureConfig()
	return &Config{
		LogLevel: "info",
		Features: FeaturesConfig{
			SampleRate: def.SampleRate,
			Duration:   def.Duration,
			NumMels:    def.NumMels,
			NumMFCC:    def.NumMFCC,
			FFTSize:    def.FFTSize,
			HopLength:  def.HopLength,
			DataRange:  def.DataRange.Int(),
			ScalerType: def.ScalerKind.String(),
			UseDelta:   def.UseDelta,
		},
	}
}
