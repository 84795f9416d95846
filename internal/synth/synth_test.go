// SPDX-License-Identifier: MIT
package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"freqlab/internal/spectrum"
)

func ramp(rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, float64(i*cols+j)/float64(rows*cols))
		}
	}
	return m
}

func TestPeriodic_AddsRealPattern(t *testing.T) {
	t.Parallel()
	in := ramp(16, 16)
	out, err := Periodic(in, []spectrum.Coord{{Row: 2, Col: 3}, {Row: 40, Col: 40}}, 6)
	require.NoError(t, err)

	assert.Less(t, out.Result.MaxImag, 1e-9)
	assert.Equal(t, 16, out.Before.Bounds().Dx())

	var changed bool
	for i := 0; i < 16 && !changed; i++ {
		for j := 0; j < 16; j++ {
			if math.Abs(out.Result.At(i, j)-in.At(i, j)) > 1e-6 {
				changed = true
				break
			}
		}
	}
	assert.True(t, changed, "periodic noise left the image unchanged")
	assert.NotEqual(t, out.Before.Pix, out.After.Pix)
}

func TestPeriodic_OutOfBoundsOffsetsOnly(t *testing.T) {
	t.Parallel()
	in := ramp(8, 8)
	out, err := Periodic(in, []spectrum.Coord{{Row: 30, Col: 30}}, 6)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			assert.InDelta(t, in.At(i, j), out.Result.At(i, j), 1e-9)
		}
	}
}

func TestRipple_ZeroStrengthIsIdentity(t *testing.T) {
	t.Parallel()
	in := ramp(6, 10)
	out, err := Ripple(in, 0, DefaultRippleWavelength)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		for j := 0; j < 10; j++ {
			assert.InDelta(t, in.At(i, j), out.Result.At(i, j), 1e-9)
		}
	}
	assert.Equal(t, out.Before.Pix, out.After.Pix)
}

func TestRipple_StaysReal(t *testing.T) {
	t.Parallel()
	out, err := Ripple(ramp(9, 12), DefaultRippleStrength, 4)
	require.NoError(t, err)
	assert.Less(t, out.Result.MaxImag, 1e-9)
	img := out.Image()
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 9, img.Bounds().Dy())
}

func TestEffects_InvalidInput(t *testing.T) {
	t.Parallel()
	_, err := Ripple(ramp(4, 4), 0.5, 0)
	assert.ErrorIs(t, err, spectrum.ErrInvalidInput)
	_, err = Periodic(nil, nil, 1)
	assert.ErrorIs(t, err, spectrum.ErrInvalidInput)
}

func TestParseOffsets(t *testing.T) {
	t.Parallel()
	got := ParseOffsets("18,36; 42 , 12;bad; 1,2,3; 28,64")
	assert.Equal(t, []spectrum.Coord{{Row: 18, Col: 36}, {Row: 42, Col: 12}, {Row: 28, Col: 64}}, got)
	assert.Empty(t, ParseOffsets("  "))
}
