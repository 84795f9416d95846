// SPDX-License-Identifier: MIT
package spectrum

import (
	"image"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogMagnitude renders log(1+|S|*M) scaled so the brightest bin is 255. A
// nil mask passes every bin; an all-zero spectrum renders black.
func LogMagnitude(spectrum *mat.CDense, mask mat.Matrix) *image.Gray {
	r, c := spectrum.Dims()
	mag := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			w := 1.0
			if mask != nil {
				w = mask.At(i, j)
			}
			mag[i*c+j] = math.Log1p(cmplx.Abs(spectrum.At(i, j)) * w)
		}
	}

	img := image.NewGray(image.Rect(0, 0, c, r))
	peak := floats.Max(mag)
	if peak == 0 {
		return img
	}
	floats.Scale(255/peak, mag)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			img.Pix[i*img.Stride+j] = uint8(mag[i*c+j])
		}
	}
	return img
}

// View renders the snapshot's masked log-magnitude spectrum.
func (s Snapshot) View() *image.Gray {
	return LogMagnitude(s.Spectrum, s.Mask)
}
