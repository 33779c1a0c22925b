package cuts

import (
	"fmt"
	"image"
	"math"
)

// MeanAbsDiff returns the mean per-pixel absolute difference of two
// same-sized grayscale frames.
func MeanAbsDiff(a, b *image.Gray) (float64, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("frame size changed from %dx%d to %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	w, h := ab.Dx(), ab.Dy()
	if w == 0 || h == 0 {
		return 0, nil
	}
	var sum uint64
	for y := 0; y < h; y++ {
		rowA := a.Pix[y*a.Stride : y*a.Stride+w]
		rowB := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := range rowA {
			pa, pb := rowA[x], rowB[x]
			if pa > pb {
				sum += uint64(pa - pb)
			} else {
				sum += uint64(pb - pa)
			}
		}
	}
	return float64(sum) / float64(w*h), nil
}

// roundMillis rounds seconds to three decimals.
func roundMillis(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}
