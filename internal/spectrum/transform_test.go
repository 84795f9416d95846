// SPDX-License-Identifier: MIT
package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTransform_RoundTrip(t *testing.T) {
	t.Parallel()
	for _, dims := range [][2]int{{4, 4}, {5, 7}, {6, 3}, {1, 8}} {
		r, c := dims[0], dims[1]
		samples, err := NewSamples(gradient(r, c))
		require.NoError(t, err)

		tr := NewTransform(r, c)
		spec := tr.Forward(samples)
		out := make([]complex128, r*c)
		tr.Inverse(out, spec, nil)

		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v := out[i*c+j]
				assert.InDelta(t, samples.At(i, j), real(v), 1e-9, "dims %dx%d at (%d,%d)", r, c, i, j)
				assert.InDelta(t, 0, imag(v), 1e-9)
			}
		}
	}
}

func TestTransform_DCAtCenter(t *testing.T) {
	t.Parallel()
	samples := mat.NewDense(4, 6, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 6; j++ {
			samples.Set(i, j, 0.5)
		}
	}
	spec := NewTransform(4, 6).Forward(samples)
	ctr := Center(4, 6)

	assert.InDelta(t, 12, real(spec.At(ctr.Row, ctr.Col)), 1e-9)
	for i := 0; i < 4; i++ {
		for j := 0; j < 6; j++ {
			if i == ctr.Row && j == ctr.Col {
				continue
			}
			assert.InDelta(t, 0, cmplx.Abs(spec.At(i, j)), 1e-9)
		}
	}
}

// A real image's centered spectrum is conjugate-symmetric about Partner.
func TestPartner_MatchesConjugateBins(t *testing.T) {
	t.Parallel()
	for _, dims := range [][2]int{{4, 4}, {5, 5}, {4, 7}, {6, 9}} {
		r, c := dims[0], dims[1]
		samples, err := NewSamples(gradient(r, c))
		require.NoError(t, err)
		spec := NewTransform(r, c).Forward(samples)

		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				p := Partner(Coord{Row: i, Col: j}, r, c)
				want := cmplx.Conj(spec.At(i, j))
				got := spec.At(p.Row, p.Col)
				require.InDelta(t, real(want), real(got), 1e-9, "dims %dx%d bin (%d,%d)", r, c, i, j)
				require.InDelta(t, imag(want), imag(got), 1e-9, "dims %dx%d bin (%d,%d)", r, c, i, j)
			}
		}
	}
}

func TestPartner_Cases(t *testing.T) {
	t.Parallel()
	tests := []struct {
		desc       string
		rows, cols int
		in, want   Coord
	}{
		{"odd matches mirror formula", 5, 5, Coord{Row: 1, Col: 3}, Coord{Row: 3, Col: 1}},
		{"odd center is fixed", 5, 5, Coord{Row: 2, Col: 2}, Coord{Row: 2, Col: 2}},
		{"even center is fixed", 4, 4, Coord{Row: 2, Col: 2}, Coord{Row: 2, Col: 2}},
		{"even left of center", 4, 4, Coord{Row: 2, Col: 1}, Coord{Row: 2, Col: 3}},
		{"even nyquist is fixed", 4, 4, Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 0}},
		{"mixed", 4, 5, Coord{Row: 3, Col: 0}, Coord{Row: 1, Col: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, Partner(tt.in, tt.rows, tt.cols))
			assert.Equal(t, tt.in, Partner(tt.want, tt.rows, tt.cols))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Coord{Row: 3, Col: 0}, Wrap(Coord{Row: -1, Col: 5}, 4, 5))
	assert.Equal(t, Coord{Row: 0, Col: 4}, Wrap(Coord{Row: 8, Col: -6}, 4, 5))
}

func TestLogMagnitude(t *testing.T) {
	t.Parallel()
	spec := mat.NewCDense(2, 2, []complex128{0, math.E - 1, 0, 0})
	img := LogMagnitude(spec, nil)
	assert.Equal(t, uint8(255), img.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)

	masked := LogMagnitude(spec, mat.NewDense(2, 2, nil))
	for _, p := range masked.Pix {
		assert.Equal(t, uint8(0), p)
	}
}

func BenchmarkTransform(b *testing.B) {
	samples, _ := NewSamples(gradient(128, 128))
	tr := NewTransform(128, 128)
	out := make([]complex128, 128*128)

	b.ReportAllocs()
	for b.Loop() {
		spec := tr.Forward(samples)
		tr.Inverse(out, spec, nil)
	}
}
