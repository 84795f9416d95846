// SPDX-License-Identifier: MIT

/*
Package synth applies whole-spectrum effects to an image in one pass:
periodic noise (bright symmetric spikes that print a grid over the image)
and radial ripple (a sinusoidal gain over frequency radius that produces
concentric rings). Each effect returns the spatial result together with the
log-magnitude spectrum before and after.
*/
package synth

import (
	"fmt"
	"image"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"freqlab/internal/pipeline"
	"freqlab/internal/spectrum"
)

// DefaultOffsets are the spike offsets from the zero-frequency bin used when
// none are given.
var DefaultOffsets = []spectrum.Coord{{Row: 18, Col: 36}, {Row: 42, Col: 12}, {Row: 28, Col: 64}}

const (
	DefaultPeriodicStrength = 6.0
	DefaultRippleStrength   = 0.45
	DefaultRippleWavelength = 12.0
)

// Output is the product of one effect.
type Output struct {
	Result *pipeline.Result // Real part of the inverse transform.
	Before *image.Gray      // Log-magnitude spectrum of the input.
	After  *image.Gray      // Log-magnitude spectrum after the effect.
}

// Image returns the result min-max normalized to 8 bits.
func (o *Output) Image() *image.Gray {
	return o.Result.Gray(pipeline.Normalize)
}

// Periodic adds strength times the mean spectral magnitude at the four
// sign combinations of each offset around the zero-frequency bin. Offsets
// landing outside the matrix are skipped.
func Periodic(samples *mat.Dense, offsets []spectrum.Coord, strength float64) (*Output, error) {
	if len(offsets) == 0 {
		offsets = DefaultOffsets
	}
	return run(samples, func(s *mat.CDense) {
		rows, cols := s.Dims()
		mags := make([]float64, 0, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				mags = append(mags, cmplx.Abs(s.At(i, j)))
			}
		}
		amp := complex(stat.Mean(mags, nil)*strength, 0)

		ctr := spectrum.Center(rows, cols)
		for _, o := range offsets {
			for _, sr := range []int{1, -1} {
				for _, sc := range []int{1, -1} {
					r, c := ctr.Row+sr*o.Row, ctr.Col+sc*o.Col
					if r < 0 || r >= rows || c < 0 || c >= cols {
						continue
					}
					s.Set(r, c, s.At(r, c)+amp)
				}
			}
		}
	})
}

// Ripple multiplies every bin by 1 + strength*sin(2*pi*r/wavelength), where
// r is the bin's distance from the zero-frequency bin.
func Ripple(samples *mat.Dense, strength, wavelength float64) (*Output, error) {
	if wavelength <= 0 || math.IsNaN(wavelength) || math.IsInf(wavelength, 0) {
		return nil, fmt.Errorf("%w: ripple wavelength must be positive, got %v", spectrum.ErrInvalidInput, wavelength)
	}
	return run(samples, func(s *mat.CDense) {
		rows, cols := s.Dims()
		ctr := spectrum.Center(rows, cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				d := math.Hypot(float64(i-ctr.Row), float64(j-ctr.Col))
				g := 1 + strength*math.Sin(2*math.Pi*d/wavelength)
				s.Set(i, j, s.At(i, j)*complex(g, 0))
			}
		}
	})
}

func run(samples *mat.Dense, effect func(*mat.CDense)) (*Output, error) {
	if samples == nil || samples.IsEmpty() {
		return nil, fmt.Errorf("%w: empty sample matrix", spectrum.ErrInvalidInput)
	}
	rows, cols := samples.Dims()
	t := spectrum.NewTransform(rows, cols)

	s := t.Forward(samples)
	before := spectrum.LogMagnitude(s, nil)
	effect(s)
	after := spectrum.LogMagnitude(s, nil)

	buf := make([]complex128, rows*cols)
	t.Inverse(buf, s, nil)
	res := &pipeline.Result{Rows: rows, Cols: cols, Mode: pipeline.Real, Data: make([]float64, rows*cols)}
	for i, z := range buf {
		res.Data[i] = real(z)
		res.MaxImag = math.Max(res.MaxImag, math.Abs(imag(z)))
	}
	return &Output{Result: res, Before: before, After: after}, nil
}

// ParseOffsets reads offsets written as "r,c; r,c". Malformed pairs are
// skipped.
func ParseOffsets(text string) []spectrum.Coord {
	var out []spectrum.Coord
	for _, chunk := range strings.Split(text, ";") {
		parts := strings.Split(strings.TrimSpace(chunk), ",")
		if len(parts) != 2 {
			continue
		}
		r, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		c, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, spectrum.Coord{Row: r, Col: c})
	}
	return out
}
