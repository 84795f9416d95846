// SPDX-License-Identifier: MIT
package spectrum

import (
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Transform computes zero-frequency-centered 2-D DFTs of a fixed shape. It
// holds scratch buffers and is not safe for concurrent use; each goroutine
// that transforms keeps its own instance.
type Transform struct {
	rows, cols int
	rowFFT     *fourier.CmplxFFT // length cols
	colFFT     *fourier.CmplxFFT // length rows
	work       []complex128      // rows*cols, unshifted layout
	line       []complex128
	lineOut    []complex128
}

// NewTransform allocates plans and scratch space for rows x cols matrices.
func NewTransform(rows, cols int) *Transform {
	n := max(rows, cols)
	return &Transform{
		rows:    rows,
		cols:    cols,
		rowFFT:  fourier.NewCmplxFFT(cols),
		colFFT:  fourier.NewCmplxFFT(rows),
		work:    make([]complex128, rows*cols),
		line:    make([]complex128, n),
		lineOut: make([]complex128, n),
	}
}

// Dims returns the matrix shape the transform was built for.
func (t *Transform) Dims() (rows, cols int) {
	return t.rows, t.cols
}

// Forward returns the centered spectrum of samples. samples must match the
// transform shape.
func (t *Transform) Forward(samples mat.Matrix) *mat.CDense {
	for i := 0; i < t.rows; i++ {
		for j := 0; j < t.cols; j++ {
			t.work[i*t.cols+j] = complex(samples.At(i, j), 0)
		}
	}
	t.pass(false)

	out := make([]complex128, t.rows*t.cols)
	cy, cx := t.rows/2, t.cols/2
	for i := 0; i < t.rows; i++ {
		si := (i + cy) % t.rows
		for j := 0; j < t.cols; j++ {
			out[si*t.cols+(j+cx)%t.cols] = t.work[i*t.cols+j]
		}
	}
	return mat.NewCDense(t.rows, t.cols, out)
}

// Inverse undoes the centering of spectrum weighted by mask and writes the
// normalized inverse transform into dst (row-major, rows*cols). A nil mask
// passes every bin.
func (t *Transform) Inverse(dst []complex128, spectrum *mat.CDense, mask mat.Matrix) {
	cy, cx := t.rows/2, t.cols/2
	for si := 0; si < t.rows; si++ {
		i := (si - cy + t.rows) % t.rows
		for sj := 0; sj < t.cols; sj++ {
			v := spectrum.At(si, sj)
			if mask != nil {
				v *= complex(mask.At(si, sj), 0)
			}
			t.work[i*t.cols+(sj-cx+t.cols)%t.cols] = v
		}
	}
	t.pass(true)

	scale := complex(1/float64(t.rows*t.cols), 0)
	for k, v := range t.work {
		dst[k] = v * scale
	}
}

// pass runs the row then column 1-D transforms over t.work in place.
func (t *Transform) pass(inverse bool) {
	run := func(f *fourier.CmplxFFT, dst, src []complex128) {
		if inverse {
			f.Sequence(dst, src)
		} else {
			f.Coefficients(dst, src)
		}
	}

	line, out := t.line[:t.cols], t.lineOut[:t.cols]
	for i := 0; i < t.rows; i++ {
		copy(line, t.work[i*t.cols:(i+1)*t.cols])
		run(t.rowFFT, out, line)
		copy(t.work[i*t.cols:(i+1)*t.cols], out)
	}

	line, out = t.line[:t.rows], t.lineOut[:t.rows]
	for j := 0; j < t.cols; j++ {
		for i := 0; i < t.rows; i++ {
			line[i] = t.work[i*t.cols+j]
		}
		run(t.colFFT, out, line)
		for i := 0; i < t.rows; i++ {
			t.work[i*t.cols+j] = out[i]
		}
	}
}

// Center returns the zero-frequency bin of a centered rows x cols spectrum.
func Center(rows, cols int) Coord {
	return Coord{Row: rows / 2, Col: cols / 2}
}

// Partner returns the bin holding the conjugate frequency of p, i.e. p
// reflected through the zero-frequency bin with wraparound. On odd axes this
// is (n-1-i); on even axes index 0 (the Nyquist bin) maps to itself.
func Partner(p Coord, rows, cols int) Coord {
	c := Center(rows, cols)
	return Coord{
		Row: wrap(2*c.Row-p.Row, rows),
		Col: wrap(2*c.Col-p.Col, cols),
	}
}

// Wrap folds p onto the torus of a rows x cols matrix.
func Wrap(p Coord, rows, cols int) Coord {
	return Coord{Row: wrap(p.Row, rows), Col: wrap(p.Col, cols)}
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
