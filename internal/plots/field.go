package plots

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape is returned for empty, ragged or mismatched arrays.
var ErrShape = errors.New("invalid field shape")

// Field is a row-major 2-D array; Field[y][x].
type Field [][]float64

// Vector is a 2-D vector field sampled on a grid.
type Vector struct {
	X Field `json:"vx"`
	Y Field `json:"vy"`
}

// Shape validates f and returns its dimensions.
func (f Field) Shape() (rows, cols int, err error) {
	if len(f) == 0 || len(f[0]) == 0 {
		return 0, 0, fmt.Errorf("%w: empty", ErrShape)
	}
	cols = len(f[0])
	for i, row := range f {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), cols)
		}
	}
	return len(f), cols, nil
}

// Size returns rows*cols.
func (f Field) Size() int {
	if len(f) == 0 {
		return 0
	}
	return len(f) * len(f[0])
}

// Range returns the finite minimum and maximum of f. Both are 0 when f has no
// finite values.
func (f Field) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range f {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// Norm returns the Frobenius norm of f.
func (f Field) Norm() float64 {
	var sum float64
	for _, row := range f {
		for _, v := range row {
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

// Sum returns the sum of all entries.
func (f Field) Sum() float64 {
	var sum float64
	for _, row := range f {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// Shape validates that both components are well formed and equal in shape.
func (v Vector) Shape() (rows, cols int, err error) {
	rows, cols, err = v.X.Shape()
	if err != nil {
		return 0, 0, fmt.Errorf("vx: %w", err)
	}
	yr, yc, err := v.Y.Shape()
	if err != nil {
		return 0, 0, fmt.Errorf("vy: %w", err)
	}
	if yr != rows || yc != cols {
		return 0, 0, fmt.Errorf("%w: vx is %dx%d, vy is %dx%d", ErrShape, rows, cols, yr, yc)
	}
	return rows, cols, nil
}

// Magnitude returns sqrt(vx^2 + vy^2) per cell. v must be validated.
func (v Vector) Magnitude() Field {
	out := make(Field, len(v.X))
	for i := range v.X {
		out[i] = make([]float64, len(v.X[i]))
		for j := range v.X[i] {
			out[i][j] = math.Hypot(v.X[i][j], v.Y[i][j])
		}
	}
	return out
}

// Sub returns v - o. Both must be validated and equal in shape.
func (v Vector) Sub(o Vector) Vector {
	diff := func(a, b Field) Field {
		out := make(Field, len(a))
		for i := range a {
			out[i] = make([]float64, len(a[i]))
			for j := range a[i] {
				out[i][j] = a[i][j] - b[i][j]
			}
		}
		return out
	}
	return Vector{X: diff(v.X, o.X), Y: diff(v.Y, o.Y)}
}

// sampleStep is the down-sampling stride for point overlays.
func sampleStep(rows int) int {
	return max(1, rows/20)
}
