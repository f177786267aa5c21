package extractors

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/audio-features/pkg/audio/analyzers"
	"github.com/RyanBlaney/audio-features/pkg/audio/config"
	"github.com/RyanBlaney/audio-features/pkg/audio/scaler"
)

// FeatureExtractor turns fixed-length clips into normalized spectrogram,
// mel-spectrogram and MFCC matrices.
//
// The extractor owns one dataset scaler. Fit it once with FitScaler on raw
// matrices from SpectrogramDB, MelSpectrogramDB or MFCCMatrix; afterwards
// extraction calls may run concurrently. FitScaler must not race with
// extraction if the results are expected to use one consistent set of
// statistics.
type FeatureExtractor struct {
	config   config.FeatureConfig
	spectral *analyzers.SpectralAnalyzer
	mel      *analyzers.MelAnalyzer

	mu     sync.RWMutex
	scaler scaler.Scaler

	logger logging.Logger
}

// Option customizes a FeatureExtractor
type Option func(*FeatureExtractor)

// WithLogger replaces the component logger
func WithLogger(logger logging.Logger) Option {
	return func(fe *FeatureExtractor) {
		if logger != nil {
			fe.logger = logger
		}
	}
}

// WithScaler installs a scaler, typically one restored with scaler.Load.
// Its kind must match the configured scaler kind.
func WithScaler(s scaler.Scaler) Option {
	return func(fe *FeatureExtractor) {
		if s != nil {
			fe.scaler = s
		}
	}
}

// NewFeatureExtractor validates cfg and builds an extractor with an unfitted
// scaler of the configured kind
func NewFeatureExtractor(cfg config.FeatureConfig, opts ...Option) (*FeatureExtractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature configuration: %w", err)
	}

	fe := &FeatureExtractor{
		config:   cfg,
		spectral: analyzers.NewSpectralAnalyzer(cfg.SampleRate),
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
	}

	for _, opt := range opts {
		opt(fe)
	}

	if fe.scaler == nil {
		s, err := scaler.New(cfg.ScalerKind)
		if err != nil {
			return nil, err
		}
		fe.scaler = s
	} else if fe.scaler.Kind() != cfg.ScalerKind {
		return nil, fmt.Errorf("scaler kind %s does not match configured kind %s",
			fe.scaler.Kind(), cfg.ScalerKind)
	}

	mel, err := analyzers.NewMelAnalyzer(fe.spectral, cfg.NumMels, cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create mel analyzer: %w", err)
	}
	fe.mel = mel

	fe.logger.Debug("Feature extractor initialized", logging.Fields{
		"sample_rate":  cfg.SampleRate,
		"audio_length": cfg.AudioLength(),
		"n_fft":        cfg.FFTSize,
		"hop_length":   cfg.HopLength,
		"scaler":       cfg.ScalerKind.String(),
		"data_range":   cfg.DataRange.String(),
		"use_delta":    cfg.UseDelta,
	})

	return fe, nil
}

// Config returns the extractor configuration
func (fe *FeatureExtractor) Config() config.FeatureConfig {
	return fe.config
}

// Scaler returns the owned scaler, e.g. for scaler.Save
func (fe *FeatureExtractor) Scaler() scaler.Scaler {
	fe.mu.RLock()
	defer fe.mu.RUnlock()
	return fe.scaler
}

// FitScaler fits the dataset scaler on raw (Bins x Time) feature matrices of
// a whole dataset. It does nothing when no scaler is configured.
func (fe *FeatureExtractor) FitScaler(matrices ...mat.Matrix) error {
	if fe.config.ScalerKind == config.ScalerNone {
		return nil
	}

	logger := fe.logger.WithFields(logging.Fields{
		"function": "FitScaler",
		"matrices": len(matrices),
		"scaler":   fe.config.ScalerKind.String(),
	})

	fe.mu.Lock()
	err := fe.scaler.Fit(matrices...)
	fe.mu.Unlock()
	if err != nil {
		logger.Error(err, "Failed to fit scaler")
		return fmt.Errorf("failed to fit scaler: %w", err)
	}

	logger.Debug("Scaler fitted")
	return nil
}

// SpectrogramDB returns the STFT magnitude in dB relative to its peak,
// laid out Bins x Time, before any normalization
func (fe *FeatureExtractor) SpectrogramDB(samples []float64) (*mat.Dense, error) {
	spectrogram, err := fe.spectral.STFT(samples, fe.config.FFTSize, fe.config.HopLength)
	if err != nil {
		return nil, fmt.Errorf("failed to compute spectrogram: %w", err)
	}
	db := analyzers.AmplitudeToDB(spectrogram.Magnitude, analyzers.DefaultAmplitudeDB())
	return binsByFrames(db), nil
}

// MelSpectrogramDB returns the mel power spectrogram in dB relative to its
// peak, laid out Mels x Time, before any normalization
func (fe *FeatureExtractor) MelSpectrogramDB(samples []float64) (*mat.Dense, error) {
	mel, err := fe.mel.MelSpectrogram(samples, fe.config.HopLength)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mel spectrogram: %w", err)
	}
	db := analyzers.PowerToDB(mel, analyzers.DefaultPowerDB())
	return binsByFrames(db), nil
}

// MFCCMatrix returns the cepstral coefficients laid out Coefficient x Time,
// before any normalization. With UseDelta the delta and delta-delta
// coefficients are stacked below, tripling the row count.
func (fe *FeatureExtractor) MFCCMatrix(samples []float64) (*mat.Dense, error) {
	mfcc, err := fe.mel.MFCC(samples, fe.config.HopLength, fe.config.NumMFCC)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mfcc: %w", err)
	}

	coeffs := binsByFrames(mfcc)
	if !fe.config.UseDelta {
		return coeffs, nil
	}

	delta := analyzers.Delta(mfcc, analyzers.DefaultDeltaWidth)
	delta2 := analyzers.DeltaOrder(mfcc, analyzers.DefaultDeltaWidth, 2)
	return stackRows(coeffs, binsByFrames(delta), binsByFrames(delta2)), nil
}

// ExtractSpectrogram returns the normalized spectrogram, Time x (n_fft/2+1)
func (fe *FeatureExtractor) ExtractSpectrogram(samples []float64) (*Feature, error) {
	return fe.extract("ExtractSpectrogram", samples, fe.SpectrogramDB)
}

// ExtractMelSpectrogram returns the normalized mel spectrogram, Time x n_mels
func (fe *FeatureExtractor) ExtractMelSpectrogram(samples []float64) (*Feature, error) {
	return fe.extract("ExtractMelSpectrogram", samples, fe.MelSpectrogramDB)
}

// ExtractMFCC returns the normalized MFCC matrix, Time x n_mfcc, or
// Time x 3*n_mfcc when deltas are enabled
func (fe *FeatureExtractor) ExtractMFCC(samples []float64) (*Feature, error) {
	return fe.extract("ExtractMFCC", samples, fe.MFCCMatrix)
}

func (fe *FeatureExtractor) extract(name string, samples []float64, raw func([]float64) (*mat.Dense, error)) (*Feature, error) {
	logger := fe.logger.WithFields(logging.Fields{
		"function":      name,
		"signal_length": len(samples),
	})

	m, err := raw(samples)
	if err != nil {
		logger.Error(err, "Failed to compute raw features")
		return nil, err
	}

	feature, err := fe.PostProcess(m)
	if err != nil {
		logger.Error(err, "Failed to post-process features")
		return nil, err
	}

	out := feature.transposed()
	rows, cols := out.Dims()
	logger.Debug("Features extracted", logging.Fields{
		"time_frames": rows,
		"bins":        cols,
	})
	return out, nil
}
