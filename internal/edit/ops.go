// SPDX-License-Identifier: MIT
package edit

import (
	"math"
	"math/cmplx"

	"freqlab/internal/spectrum"
)

// disc writes value into the mask for every bin within radius of target.
func disc(st *spectrum.State, target spectrum.Coord, radius, value float64) error {
	rows, cols := st.Dims()
	reach := int(math.Ceil(radius))
	r2 := radius * radius

	for r := max(0, target.Row-reach); r <= min(rows-1, target.Row+reach); r++ {
		dr := float64(r - target.Row)
		for c := max(0, target.Col-reach); c <= min(cols-1, target.Col+reach); c++ {
			dc := float64(c - target.Col)
			if dr*dr+dc*dc > r2 {
				continue
			}
			if err := st.SetMask(spectrum.Coord{Row: r, Col: c}, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// point adds m*e^(i*phase) at target and its conjugate at the partner bin.
// A self-reflected target (the DC bin, or a Nyquist bin on an even axis)
// receives the single addition only.
func point(st *spectrum.State, target spectrum.Coord, magnitude, phase float64) error {
	rows, cols := st.Dims()
	v := cmplx.Rect(magnitude, phase)
	if err := st.AddSpectrum(target, v); err != nil {
		return err
	}
	p := spectrum.Partner(target, rows, cols)
	if p == target {
		return nil
	}
	return st.AddSpectrum(p, cmplx.Conj(v))
}

// line adds a real constant across row y and across its partner row. A row
// that is its own partner receives both additions.
func line(st *spectrum.State, y int, amplitude float64) error {
	rows, cols := st.Dims()
	py := spectrum.Partner(spectrum.Coord{Row: y}, rows, cols).Row
	for _, r := range []int{y, py} {
		for c := 0; c < cols; c++ {
			if err := st.AddSpectrum(spectrum.Coord{Row: r, Col: c}, complex(amplitude, 0)); err != nil {
				return err
			}
		}
	}
	return nil
}

// annulus returns the bins whose distance from the center lies within tol of
// radius.
func annulus(rows, cols int, radius, tol float64) []spectrum.Coord {
	ctr := spectrum.Center(rows, cols)
	var out []spectrum.Coord
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			d := math.Hypot(float64(r-ctr.Row), float64(c-ctr.Col))
			if math.Abs(d-radius) < tol {
				out = append(out, spectrum.Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// ring adds amplitude over the annulus through target and over the
// point-reflected annulus. The reflected set is built bin by bin rather than
// assumed equal to the annulus.
func ring(st *spectrum.State, target spectrum.Coord, amplitude, tol float64) error {
	rows, cols := st.Dims()
	ctr := spectrum.Center(rows, cols)
	radius := math.Hypot(float64(target.Row-ctr.Row), float64(target.Col-ctr.Col))

	band := annulus(rows, cols, radius, tol)
	v := complex(amplitude, 0)
	for _, p := range band {
		if err := st.AddSpectrum(p, v); err != nil {
			return err
		}
	}
	for _, p := range band {
		if err := st.AddSpectrum(spectrum.Partner(p, rows, cols), v); err != nil {
			return err
		}
	}
	return nil
}

// gridPoints returns the four toroidally wrapped offsets of target by
// (±v rows, ±u cols). The zero offset is skipped.
func gridPoints(target spectrum.Coord, u, v, rows, cols int) []spectrum.Coord {
	out := make([]spectrum.Coord, 0, 4)
	for _, dy := range []int{-v, v} {
		for _, dx := range []int{-u, u} {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, spectrum.Wrap(spectrum.Coord{Row: target.Row + dy, Col: target.Col + dx}, rows, cols))
		}
	}
	return out
}

// grid adds amplitude at the four grid points around target and at each
// point's partner, producing a periodic spatial pattern.
func grid(st *spectrum.State, target spectrum.Coord, u, v int, amplitude float64) error {
	rows, cols := st.Dims()
	val := complex(amplitude, 0)
	for _, p := range gridPoints(target, u, v, rows, cols) {
		if err := st.AddSpectrum(p, val); err != nil {
			return err
		}
		if err := st.AddSpectrum(spectrum.Partner(p, rows, cols), val); err != nil {
			return err
		}
	}
	return nil
}

// ripple scales every bin by 1 + strength*sin(2*pi*r/wavelength), with r the
// bin's distance from DC. Partner bins share r, so symmetry is kept.
func ripple(st *spectrum.State, strength, wavelength float64) error {
	rows, cols := st.Dims()
	ctr := spectrum.Center(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			d := math.Hypot(float64(r-ctr.Row), float64(c-ctr.Col))
			f := 1 + strength*math.Sin(2*math.Pi*d/wavelength)
			if err := st.ScaleSpectrum(spectrum.Coord{Row: r, Col: c}, f); err != nil {
				return err
			}
		}
	}
	return nil
}
