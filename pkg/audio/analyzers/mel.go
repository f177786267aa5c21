package analyzers

import (
	"fmt"
	"math"
	"sync"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
	"gonum.org/v1/gonum/dsp/fourier"
)

// MelAnalyzer maps linear power spectra onto a mel filterbank and derives
// cepstral coefficients from the result
type MelAnalyzer struct {
	analyzer   *SpectralAnalyzer
	scale      *spectral.MelScale
	numMels    int
	fftSize    int
	filterBank [][]float64
	// dct holds *fourier.QuarterWaveFFT of length numMels; their work
	// buffers are mutated per call so each goroutine takes its own.
	dct    *sync.Pool
	logger logging.Logger
}

// NewMelAnalyzer builds a filterbank of numMels triangular filters spanning
// 0 Hz to the Nyquist frequency for frames of fftSize samples
func NewMelAnalyzer(analyzer *SpectralAnalyzer, numMels, fftSize int) (*MelAnalyzer, error) {
	if numMels <= 0 {
		return nil, fmt.Errorf("number of mel bands must be positive")
	}
	if fftSize <= 0 {
		return nil, fmt.Errorf("fft size must be positive")
	}

	scale := spectral.NewMelScale()
	nyquist := float64(analyzer.SampleRate()) / 2
	filterBank := scale.CreateMelFilterBank(numMels, fftSize, analyzer.SampleRate(), 0, nyquist)
	if len(filterBank) != numMels {
		return nil, fmt.Errorf("mel filterbank has %d bands, want %d", len(filterBank), numMels)
	}

	return &MelAnalyzer{
		analyzer:   analyzer,
		scale:      scale,
		numMels:    numMels,
		fftSize:    fftSize,
		filterBank: filterBank,
		dct: &sync.Pool{New: func() any {
			return fourier.NewQuarterWaveFFT(numMels)
		}},
		logger: logging.WithFields(logging.Fields{
			"component": "mel_analyzer",
			"n_mels":    numMels,
			"n_fft":     fftSize,
		}),
	}, nil
}

// NumMels returns the number of mel bands
func (ma *MelAnalyzer) NumMels() int {
	return ma.numMels
}

// MelSpectrogram computes the mel-filtered power spectrogram of signal.
// The result is Time x Mel.
func (ma *MelAnalyzer) MelSpectrogram(signal []float64, hopSize int) ([][]float64, error) {
	spectrogram, err := ma.analyzer.STFT(signal, ma.fftSize, hopSize)
	if err != nil {
		return nil, err
	}

	power := ma.analyzer.ComputePowerSpectrum(spectrogram)

	mel := make([][]float64, len(power))
	for t, frame := range power {
		mel[t] = ma.scale.ApplyFilterBank(frame, ma.filterBank)
	}

	ma.logger.Debug("Mel spectrogram computed", logging.Fields{
		"time_frames": len(mel),
	})

	return mel, nil
}

// MFCC computes numCoeffs cepstral coefficients per frame from the log-mel
// power spectrogram using an orthonormal DCT-II. The result is Time x Coefficient.
func (ma *MelAnalyzer) MFCC(signal []float64, hopSize, numCoeffs int) ([][]float64, error) {
	if numCoeffs <= 0 || numCoeffs > ma.numMels {
		return nil, fmt.Errorf("number of coefficients must be between 1 and %d", ma.numMels)
	}

	mel, err := ma.MelSpectrogram(signal, hopSize)
	if err != nil {
		return nil, err
	}

	logMel := PowerToDB(mel, DecibelConfig{Reference: 1, Amin: 1e-10, TopDB: 80})

	dct := ma.dct.Get().(*fourier.QuarterWaveFFT)
	defer ma.dct.Put(dct)

	mfcc := make([][]float64, len(logMel))
	coeffs := make([]float64, ma.numMels)
	for t, frame := range logMel {
		orthoDCT(dct, coeffs, frame)
		mfcc[t] = append([]float64(nil), coeffs[:numCoeffs]...)
	}

	return mfcc, nil
}

// orthoDCT writes the orthonormal DCT-II of seq into dst. QuarterWaveFFT's
// CosSequence is the DCT-II scaled by 4.
func orthoDCT(t *fourier.QuarterWaveFFT, dst, seq []float64) {
	t.CosSequence(dst, seq)
	n := float64(len(seq))
	dst[0] *= math.Sqrt(1/n) / 4
	scale := math.Sqrt(2/n) / 4
	for k := 1; k < len(dst); k++ {
		dst[k] *= scale
	}
}
