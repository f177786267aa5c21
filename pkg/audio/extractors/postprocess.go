package extractors

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
	"github.com/RyanBlaney/audio-features/pkg/audio/scaler"
)

// ErrEmptyMatrix is returned when post-processing receives a matrix without elements.
var ErrEmptyMatrix = errors.New("empty feature matrix")

// PostProcess normalizes a raw (Bins x Time) feature matrix:
//  1. the fitted dataset scaler, when one is configured
//  2. a global min-max rescale of the whole matrix to [0,1]
//  3. the configured data range: [-1,1], 0..255 or left at [0,1]
//
// The input is not modified. A constant matrix maps to 0 in step 2.
func (fe *FeatureExtractor) PostProcess(m mat.Matrix) (*Feature, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptyMatrix
	}

	fe.mu.RLock()
	scaled, err := fe.applyScaler(m)
	fe.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	rescaleGlobal(scaled)
	applyDataRange(scaled, fe.config.DataRange)

	return &Feature{Matrix: scaled, Range: fe.config.DataRange}, nil
}

// applyScaler runs the dataset scaler over m. Callers hold fe.mu.
func (fe *FeatureExtractor) applyScaler(m mat.Matrix) (*mat.Dense, error) {
	if fe.config.ScalerKind == config.ScalerNone {
		return mat.DenseCopyOf(m), nil
	}

	if !fe.scaler.Fitted() {
		return nil, fmt.Errorf("%s scaler must be fitted before extraction: %w",
			fe.config.ScalerKind, scaler.ErrNotFitted)
	}

	scaled, err := fe.scaler.Transform(m)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s scaler: %w", fe.config.ScalerKind, err)
	}
	return scaled, nil
}

// rescaleGlobal maps m in place onto [0,1] using the minimum and maximum of
// the entire matrix. A constant matrix becomes all zeros.
func rescaleGlobal(m *mat.Dense) {
	lo, hi := mat.Min(m), mat.Max(m)
	span := hi - lo
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		m.Zero()
		return
	}
	m.Apply(func(_, _ int, v float64) float64 {
		return (v - lo) / span
	}, m)
}

// applyDataRange maps [0,1] values in place onto the configured output range
func applyDataRange(m *mat.Dense, r config.DataRange) {
	switch r {
	case config.RangeByte:
		m.Apply(func(_, _ int, v float64) float64 {
			return math.Trunc(v * 255.0)
		}, m)
	case config.RangeUnit:
		m.Apply(func(_, _ int, v float64) float64 {
			return v*2 - 1
		}, m)
	}
}
