package analyzers

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// SpectralAnalyzer provides the STFT and the spectral transforms built on it
type SpectralAnalyzer struct {
	sampleRate int
	power      *spectral.PowerSpectrum
	logger     logging.Logger
}

// SpectrogramResult holds the result of STFT analysis
type SpectrogramResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		sampleRate: sampleRate,
		power:      spectral.NewPowerSpectrum(),
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// SampleRate returns the sample rate the analyzer was built for
func (sa *SpectralAnalyzer) SampleRate() int {
	return sa.sampleRate
}

// FFT computes the Fast Fourier Transform of a real frame
func (sa *SpectralAnalyzer) FFT(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// PeriodicHann returns a Hann window of the given size in its periodic
// (DFT-even) form, which is the symmetric window of size+1 without its last point.
func PeriodicHann(size int) []float64 {
	if size <= 0 {
		return nil
	}
	return window.Hann(size + 1)[:size]
}

// STFT computes the short-time Fourier transform magnitude of signal.
// Frames are not centered or padded: the frame count is
// 1 + (len(signal)-windowSize)/hopSize.
func (sa *SpectralAnalyzer) STFT(signal []float64, windowSize, hopSize int) (*SpectrogramResult, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}
	if len(signal) < windowSize {
		return nil, fmt.Errorf("%w: %d samples, window %d", ErrSignalTooShort, len(signal), windowSize)
	}

	logger := sa.logger.WithFields(logging.Fields{
		"function":      "STFT",
		"signal_length": len(signal),
		"window_size":   windowSize,
		"hop_size":      hopSize,
	})

	numFrames := (len(signal)-windowSize)/hopSize + 1
	freqBins := windowSize/2 + 1
	win := PeriodicHann(windowSize)

	magnitude := make([][]float64, numFrames)
	frame := make([]float64, windowSize)

	for t := range numFrames {
		start := t * hopSize
		for i := range windowSize {
			frame[i] = signal[start+i] * win[i]
		}

		spectrum := sa.FFT(frame)

		magnitude[t] = make([]float64, freqBins)
		for f := range freqBins {
			magnitude[t][f] = cmplx.Abs(spectrum[f])
		}
	}

	logger.Debug("STFT computed", logging.Fields{
		"time_frames": numFrames,
		"freq_bins":   freqBins,
	})

	return &SpectrogramResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sa.sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sa.sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sa.sampleRate),
	}, nil
}

// ComputePowerSpectrum squares every magnitude of the spectrogram
func (sa *SpectralAnalyzer) ComputePowerSpectrum(spectrogram *SpectrogramResult) [][]float64 {
	power := make([][]float64, spectrogram.TimeFrames)
	for t := range spectrogram.TimeFrames {
		power[t] = sa.power.Compute(spectrogram.Magnitude[t])
	}
	return power
}
