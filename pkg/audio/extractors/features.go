package extractors

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/audio-features/pkg/audio/config"
)

// Feature is a post-processed feature matrix together with the range its
// values were mapped to
type Feature struct {
	// Matrix holds the values. Extraction results are Time x Bins.
	Matrix *mat.Dense `json:"-"`
	// Range is the output range the values were mapped to.
	Range config.DataRange `json:"data_range"`
}

// Dims returns the matrix shape
func (f *Feature) Dims() (rows, cols int) {
	return f.Matrix.Dims()
}

// Rows returns the values as a slice of rows
func (f *Feature) Rows() [][]float64 {
	r, c := f.Matrix.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, f.Matrix)
	}
	return out
}

// Uint8 returns the quantized values of a feature post-processed to the
// byte range
func (f *Feature) Uint8() ([][]uint8, error) {
	if f.Range != config.RangeByte {
		return nil, fmt.Errorf("feature has %s range, quantized values need the byte range", f.Range)
	}

	r, c := f.Matrix.Dims()
	out := make([][]uint8, r)
	for i := range r {
		out[i] = make([]uint8, c)
		for j := range c {
			out[i][j] = uint8(f.Matrix.At(i, j))
		}
	}
	return out, nil
}

// transposed returns a feature holding the transpose of f's matrix
func (f *Feature) transposed() *Feature {
	return &Feature{
		Matrix: mat.DenseCopyOf(f.Matrix.T()),
		Range:  f.Range,
	}
}

// binsByFrames lays out a Time x Bins slice as a Bins x Time matrix
func binsByFrames(frames [][]float64) *mat.Dense {
	bins := len(frames[0])
	m := mat.NewDense(bins, len(frames), nil)
	for t, frame := range frames {
		m.SetCol(t, frame)
	}
	return m
}

// stackRows vertically concatenates matrices sharing a column count
func stackRows(parts ...*mat.Dense) *mat.Dense {
	rows, cols := 0, 0
	for _, p := range parts {
		r, c := p.Dims()
		rows += r
		cols = c
	}

	out := mat.NewDense(rows, cols, nil)
	offset := 0
	for _, p := range parts {
		r, c := p.Dims()
		out.Slice(offset, offset+r, 0, c).(*mat.Dense).Copy(p)
		offset += r
	}
	return out
}
