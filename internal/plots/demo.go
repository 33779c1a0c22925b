package plots

import (
	"math"
	"math/rand/v2"
)

// TaylorGreen samples the decaying Taylor-Green vortex on an nx-by-ny grid
// spanning [0, 2pi]^2 at time t for Reynolds number re.
func TaylorGreen(nx, ny int, re, t float64) Vector {
	decay := 1.0
	if re > 0 {
		decay = math.Exp(-2 * t / re)
	}
	v := Vector{X: make(Field, ny), Y: make(Field, ny)}
	for j := 0; j < ny; j++ {
		y := 2 * math.Pi * float64(j) / float64(max(1, ny-1))
		v.X[j] = make([]float64, nx)
		v.Y[j] = make([]float64, nx)
		for i := 0; i < nx; i++ {
			x := 2 * math.Pi * float64(i) / float64(max(1, nx-1))
			v.X[j][i] = math.Cos(x) * math.Sin(y) * decay
			v.Y[j][i] = -math.Sin(x) * math.Cos(y) * decay
		}
	}
	return v
}

// Perturb adds Gaussian noise with standard deviation sigma to both
// components, deterministically for a given seed.
func Perturb(v Vector, sigma float64, seed uint64) Vector {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	noisy := func(f Field) Field {
		out := make(Field, len(f))
		for i, row := range f {
			out[i] = make([]float64, len(row))
			for j, val := range row {
				out[i][j] = val + rng.NormFloat64()*sigma
			}
		}
		return out
	}
	return Vector{X: noisy(v.X), Y: noisy(v.Y)}
}

// Threshold returns 1 where f exceeds level and 0 elsewhere.
func Threshold(f Field, level float64) Field {
	out := make(Field, len(f))
	for i, row := range f {
		out[i] = make([]float64, len(row))
		for j, val := range row {
			if val > level {
				out[i][j] = 1
			}
		}
	}
	return out
}

// Normalize rescales f into [0, 1].
func Normalize(f Field) Field {
	lo, hi := f.Range()
	span := hi - lo
	out := make(Field, len(f))
	for i, row := range f {
		out[i] = make([]float64, len(row))
		for j, val := range row {
			if span > 0 {
				out[i][j] = (val - lo) / span
			}
		}
	}
	return out
}
