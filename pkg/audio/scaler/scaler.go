// Package scaler implements dataset-fitted, per-column normalization of
// feature matrices.
//
// Every fitted scaler reduces to x' = (x - center[j]) / scale[j] for column j;
// the kinds differ only in how center and scale are estimated:
//
//   - Standard: mean and population standard deviation
//   - MinMax: minimum and range, mapping the fitted data to [0,1]
//   - MaxAbs: zero and maximum absolute value, mapping to [-1,1]
//   - Robust: median and interquartile range
//
// A scale that is zero (a constant column) is replaced by 1 so the column is
// only shifted. Fit stacks all given matrices row-wise, so every column
// accumulates samples from every row of every matrix.
//
// Scalers are not safe for concurrent Fit and Transform; callers fit once and
// then share the scaler read-only.
package scaler

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

// Scaler is the common fit/transform contract of all normalization strategies.
type Scaler interface {
	// Kind reports which strategy the scaler implements.
	Kind() config.ScalerKind
	// Fit estimates per-column statistics from the row-stacked matrices,
	// replacing any previous statistics.
	Fit(matrices ...mat.Matrix) error
	// Transform returns a new matrix with every row normalized by the fitted statistics.
	Transform(m mat.Matrix) (*mat.Dense, error)
	// Fitted reports whether Transform can be used.
	Fitted() bool
	// State returns a snapshot of the fitted statistics for persistence.
	State() (*State, error)
}

// New returns an unfitted scaler of the given kind.
func New(kind config.ScalerKind) (Scaler, error) {
	switch kind {
	case config.ScalerNone:
		return NewIdentity(), nil
	case config.ScalerStandard:
		return NewStandardScaler(), nil
	case config.ScalerMinMax:
		return NewMinMaxScaler(), nil
	case config.ScalerMaxAbs:
		return NewMaxAbsScaler(), nil
	case config.ScalerRobust:
		return NewRobustScaler(), nil
	default:
		return nil, NewScalerError("scaler.New", ErrCodeUnknownKind,
			fmt.Sprintf("kind %d", int(kind)), ErrUnknownKind)
	}
}

// columnStats estimates the center and scale of one column.
type columnStats func(col []float64) (center, scale float64)

// affine holds the per-column center/scale pair shared by all fitted kinds.
type affine struct {
	kind   config.ScalerKind
	center []float64
	scale  []float64
}

func (a *affine) Kind() config.ScalerKind {
	return a.kind
}

func (a *affine) Fitted() bool {
	return a.center != nil
}

func (a *affine) fit(op string, matrices []mat.Matrix, stats columnStats) error {
	cols, err := stackColumns(op, matrices)
	if err != nil {
		return err
	}

	center := make([]float64, len(cols))
	scale := make([]float64, len(cols))
	for j, col := range cols {
		c, s := stats(col)
		center[j] = c
		scale[j] = nonZeroScale(s)
	}

	a.center = center
	a.scale = scale
	return nil
}

func (a *affine) Transform(m mat.Matrix) (*mat.Dense, error) {
	op := a.kind.String() + ".Transform"
	if !a.Fitted() {
		return nil, NewScalerError(op, ErrCodeNotFitted, "call Fit before Transform", ErrNotFitted)
	}

	r, c := m.Dims()
	if c != len(a.center) {
		return nil, NewScalerError(op, ErrCodeDimensionMismatch,
			fmt.Sprintf("matrix has %d columns, scaler was fitted on %d", c, len(a.center)),
			ErrDimensionMismatch)
	}

	out := mat.NewDense(r, c, nil)
	for i := range r {
		for j := range c {
			out.Set(i, j, (m.At(i, j)-a.center[j])/a.scale[j])
		}
	}
	return out, nil
}

func (a *affine) State() (*State, error) {
	if !a.Fitted() {
		return nil, NewScalerError(a.kind.String()+".State", ErrCodeNotFitted,
			"nothing to snapshot", ErrNotFitted)
	}
	return &State{
		Kind:   a.kind.String(),
		Center: append([]float64(nil), a.center...),
		Scale:  append([]float64(nil), a.scale...),
	}, nil
}

func (a *affine) restore(center, scale []float64) {
	a.center = append([]float64(nil), center...)
	a.scale = append([]float64(nil), scale...)
}

// stackColumns concatenates the rows of all matrices and returns the result
// column by column.
func stackColumns(op string, matrices []mat.Matrix) ([][]float64, error) {
	width := -1
	rows := 0
	for i, m := range matrices {
		if m == nil {
			continue
		}
		r, c := m.Dims()
		if width == -1 {
			width = c
		} else if c != width {
			return nil, NewScalerError(op, ErrCodeDimensionMismatch,
				fmt.Sprintf("matrix %d has %d columns, expected %d", i, c, width),
				ErrDimensionMismatch)
		}
		rows += r
	}
	if rows == 0 || width <= 0 {
		return nil, NewScalerError(op, ErrCodeEmptyDataset, "no rows to fit", ErrEmptyDataset)
	}

	cols := make([][]float64, width)
	for j := range cols {
		cols[j] = make([]float64, 0, rows)
	}
	for _, m := range matrices {
		if m == nil {
			continue
		}
		r, _ := m.Dims()
		for i := range r {
			for j := range width {
				cols[j] = append(cols[j], m.At(i, j))
			}
		}
	}
	return cols, nil
}

// nonZeroScale replaces scales too small to divide by with 1.
func nonZeroScale(s float64) float64 {
	if math.IsNaN(s) || math.Abs(s) < 10*epsilon {
		return 1
	}
	return s
}

// epsilon is the float64 machine epsilon.
const epsilon = 2.220446049250313e-16
