package configs

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	LogLevel string `mapstructure:"log_level"`

	// Feature extraction configuration
	Features FeaturesConfig `mapstructure:"features"`
}

// FeaturesConfig contains feature extraction settings as they appear in
// configuration files
type FeaturesConfig struct {
	SampleRate int     `mapstructure:"sample_rate"`
	Duration   float64 `mapstructure:"duration"`
	NumMels    int     `mapstructure:"n_mels"`
	NumMFCC    int     `mapstructure:"n_mfcc"`
	FFTSize    int     `mapstructure:"n_fft"`
	HopLength  int     `mapstructure:"hop_length"`
	DataRange  int     `mapstructure:"data_range"`
	ScalerType string  `mapstructure:"scaler_type"`
	UseDelta   bool    `mapstructure:"use_delta"`
}

// ToFeatureConfig converts file settings into a validated extractor configuration
func (f FeaturesConfig) ToFeatureConfig() (config.FeatureConfig, error) {
	kind, err := config.ParseScalerKind(f.ScalerType)
	if err != nil {
		return config.FeatureConfig{}, err
	}

	cfg := config.FeatureConfig{
		SampleRate: f.SampleRate,
		Duration:   f.Duration,
		NumMels:    f.NumMels,
		NumMFCC:    f.NumMFCC,
		FFTSize:    f.FFTSize,
		HopLength:  f.HopLength,
		DataRange:  config.DataRangeFromInt(f.DataRange),
		ScalerKind: kind,
		UseDelta:   f.UseDelta,
	}

	if err := cfg.Validate(); err != nil {
		return config.FeatureConfig{}, err
	}
	return cfg, nil
}

// Load decodes the configuration held by v, filling unset keys with defaults
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a configuration file (any format viper understands)
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Load(v)
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	if _, err := cfg.Features.ToFeatureConfig(); err != nil {
		return fmt.Errorf("invalid features configuration: %w", err)
	}
	return nil
}
