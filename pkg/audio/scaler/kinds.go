package scaler

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

// Identity is the scaler used when no dataset normalization is configured.
// Fit does nothing and Transform returns a copy of its input.
type Identity struct{}

// NewIdentity returns the no-op scaler
func NewIdentity() *Identity {
	return &Identity{}
}

func (Identity) Kind() config.ScalerKind { return config.ScalerNone }

func (Identity) Fit(...mat.Matrix) error { return nil }

func (Identity) Fitted() bool { return true }

func (Identity) Transform(m mat.Matrix) (*mat.Dense, error) {
	return mat.DenseCopyOf(m), nil
}

func (Identity) State() (*State, error) {
	return &State{Kind: config.ScalerNone.String()}, nil
}

// StandardScaler removes the column mean and divides by the population
// standard deviation
type StandardScaler struct {
	affine
}

// NewStandardScaler creates an unfitted standard scaler
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{affine{kind: config.ScalerStandard}}
}

func (s *StandardScaler) Fit(matrices ...mat.Matrix) error {
	return s.fit("StandardScaler.Fit", matrices, func(col []float64) (float64, float64) {
		return stat.PopMeanStdDev(col, nil)
	})
}

// Mean returns the fitted column means
func (s *StandardScaler) Mean() []float64 { return s.center }

// StdDev returns the fitted column standard deviations (zeros replaced by 1)
func (s *StandardScaler) StdDev() []float64 { return s.scale }

// MinMaxScaler maps each fitted column onto [0,1]
type MinMaxScaler struct {
	affine
}

// NewMinMaxScaler creates an unfitted min-max scaler
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{affine{kind: config.ScalerMinMax}}
}

func (s *MinMaxScaler) Fit(matrices ...mat.Matrix) error {
	return s.fit("MinMaxScaler.Fit", matrices, func(col []float64) (float64, float64) {
		lo := floats.Min(col)
		return lo, floats.Max(col) - lo
	})
}

// MaxAbsScaler divides each column by its maximum absolute value, mapping
// fitted data onto [-1,1] and leaving zero at zero
type MaxAbsScaler struct {
	affine
}

// NewMaxAbsScaler creates an unfitted max-abs scaler
func NewMaxAbsScaler() *MaxAbsScaler {
	return &MaxAbsScaler{affine{kind: config.ScalerMaxAbs}}
}

func (s *MaxAbsScaler) Fit(matrices ...mat.Matrix) error {
	return s.fit("MaxAbsScaler.Fit", matrices, func(col []float64) (float64, float64) {
		return 0, math.Max(math.Abs(floats.Min(col)), math.Abs(floats.Max(col)))
	})
}

// RobustScaler centers each column on its median and divides by the
// interquartile range
type RobustScaler struct {
	affine
}

// NewRobustScaler creates an unfitted robust scaler
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{affine{kind: config.ScalerRobust}}
}

func (s *RobustScaler) Fit(matrices ...mat.Matrix) error {
	return s.fit("RobustScaler.Fit", matrices, func(col []float64) (float64, float64) {
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		return percentile(sorted, 50), percentile(sorted, 75) - percentile(sorted, 25)
	})
}

// percentile interpolates linearly between the closest ranks of sorted,
// placing percentile p at index p/100*(n-1).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, n-1)
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
