package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ScalerKind selects the dataset-level normalization applied before the
// per-matrix rescale.
type ScalerKind int

const (
	ScalerNone ScalerKind = iota
	ScalerStandard
	ScalerMinMax
	ScalerMaxAbs
	ScalerRobust
)

var scalerNames = map[ScalerKind]string{
	ScalerNone:     "none",
	ScalerStandard: "standard",
	ScalerMinMax:   "minmax",
	ScalerMaxAbs:   "maxabs",
	ScalerRobust:   "robust",
}

func (k ScalerKind) String() string {
	if name, ok := scalerNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ScalerKind(%d)", int(k))
}

// Valid reports whether k is one of the declared scaler kinds.
func (k ScalerKind) Valid() bool {
	_, ok := scalerNames[k]
	return ok
}

// ParseScalerKind converts a configuration string into a ScalerKind.
// Matching is case-insensitive and an empty string means no scaler.
func ParseScalerKind(s string) (ScalerKind, error) {
	name := cases.Lower(language.Und).String(strings.TrimSpace(s))
	if name == "" {
		return ScalerNone, nil
	}
	for kind, n := range scalerNames {
		if n == name {
			return kind, nil
		}
	}
	return ScalerNone, fmt.Errorf("unknown scaler type %q", s)
}

// DataRange selects the final output range of post-processed features.
type DataRange int

const (
	// RangeRaw leaves features in [0,1].
	RangeRaw DataRange = iota
	// RangeUnit remaps features to [-1,1].
	RangeUnit
	// RangeByte quantizes features to 0..255.
	RangeByte
)

// DataRangeFromInt maps the numeric data range setting: 1 selects [-1,1],
// 255 selects 8-bit quantization and every other value keeps [0,1].
func DataRangeFromInt(v int) DataRange {
	switch v {
	case 1:
		return RangeUnit
	case 255:
		return RangeByte
	default:
		return RangeRaw
	}
}

// Int returns the numeric form of the range (1, 255 or 0 for raw).
func (r DataRange) Int() int {
	switch r {
	case RangeUnit:
		return 1
	case RangeByte:
		return 255
	default:
		return 0
	}
}

func (r DataRange) String() string {
	switch r {
	case RangeUnit:
		return "unit"
	case RangeByte:
		return "byte"
	default:
		return "raw"
	}
}

// Bounds returns the inclusive interval post-processed values fall into.
func (r DataRange) Bounds() (lo, hi float64) {
	switch r {
	case RangeUnit:
		return -1, 1
	case RangeByte:
		return 0, 255
	default:
		return 0, 1
	}
}

// FeatureConfig holds the sampling and normalization parameters of a
// feature extractor. It is fixed once an extractor is built.
type FeatureConfig struct {
	SampleRate int     `json:"sample_rate"`
	Duration   float64 `json:"duration"` // seconds
	NumMels    int     `json:"n_mels"`
	NumMFCC    int     `json:"n_mfcc"`
	FFTSize    int     `json:"n_fft"`
	HopLength  int     `json:"hop_length"`

	DataRange  DataRange  `json:"data_range"`
	ScalerKind ScalerKind `json:"scaler_type"`
	UseDelta   bool       `json:"use_delta"`
}

// DefaultFeatureConfig returns the settings used for 0.4s clips at 44.1kHz.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		SampleRate: 44100,
		Duration:   0.4,
		NumMels:    128,
		NumMFCC:    40,
		FFTSize:    1024,
		HopLength:  512,
		DataRange:  RangeUnit,
		ScalerKind: ScalerStandard,
		UseDelta:   false,
	}
}

// AudioLength is the number of samples in one clip, truncated.
func (c FeatureConfig) AudioLength() int {
	return int(float64(c.SampleRate) * c.Duration)
}

// NumFrames returns the STFT frame count for a signal of n samples, or 0
// when the signal is shorter than one window.
func (c FeatureConfig) NumFrames(n int) int {
	if c.HopLength <= 0 || n < c.FFTSize {
		return 0
	}
	return 1 + (n-c.FFTSize)/c.HopLength
}

// Validate checks the configuration for values no extractor can run with.
func (c FeatureConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive")
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if c.FFTSize <= 0 {
		return fmt.Errorf("n_fft must be positive")
	}
	if c.HopLength <= 0 {
		return fmt.Errorf("hop length must be positive")
	}
	if c.NumMels <= 0 {
		return fmt.Errorf("n_mels must be positive")
	}
	if c.NumMFCC <= 0 || c.NumMFCC > c.NumMels {
		return fmt.Errorf("n_mfcc must be between 1 and n_mels (%d)", c.NumMels)
	}
	if !c.ScalerKind.Valid() {
		return fmt.Errorf("invalid scaler kind %d", int(c.ScalerKind))
	}
	if c.DataRange < RangeRaw || c.DataRange > RangeByte {
		return fmt.Errorf("invalid data range %d", int(c.DataRange))
	}
	if c.AudioLength() < c.FFTSize {
		return fmt.Errorf("audio length %d is shorter than n_fft %d", c.AudioLength(), c.FFTSize)
	}
	return nil
}
