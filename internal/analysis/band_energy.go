// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FrequencyBand is a ring of spatial frequencies. Low and High are radii
// normalized so that the edge midpoints of the spectrum sit at 1.
type FrequencyBand struct {
	Name   string  `json:"name"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Energy float64 `json:"energy"` // Mean |S*M|^2 over the band's bins.
	Share  float64 `json:"share"`  // Fraction of total masked energy.
	Bins   int     `json:"bins"`
}

// DefaultBands splits the spectrum into DC, coarse structure, texture and
// fine detail.
func DefaultBands() []FrequencyBand {
	return []FrequencyBand{
		{Name: "dc", Low: 0, High: 1e-9},
		{Name: "low", Low: 1e-9, High: 0.15},
		{Name: "mid", Low: 0.15, High: 0.5},
		{Name: "high", Low: 0.5, High: math.Inf(1)},
	}
}

// Radius returns the normalized distance of bin (i,j) from the center of a
// rows x cols spectrum.
func Radius(i, j, rows, cols int) float64 {
	cy, cx := rows/2, cols/2
	dy := float64(i-cy) / math.Max(float64(cy), 1)
	dx := float64(j-cx) / math.Max(float64(cx), 1)
	return math.Hypot(dy, dx)
}

// BandEnergy measures the masked spectral energy falling in each band. A nil
// mask passes every bin. Bands are matched in order; the first that holds a
// bin's radius takes it.
func BandEnergy(spectrum *mat.CDense, mask mat.Matrix, bands []FrequencyBand) ([]FrequencyBand, error) {
	if spectrum == nil {
		return nil, fmt.Errorf("Analysis: spectrum cannot be nil")
	}
	rows, cols := spectrum.Dims()
	if mask != nil {
		if mr, mc := mask.Dims(); mr != rows || mc != cols {
			return nil, fmt.Errorf("Analysis: mask %dx%d does not match spectrum %dx%d", mr, mc, rows, cols)
		}
	}

	out := make([]FrequencyBand, len(bands))
	copy(out, bands)
	energies := make([][]float64, len(out))
	var total float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w := 1.0
			if mask != nil {
				w = mask.At(i, j)
			}
			a := cmplx.Abs(spectrum.At(i, j)) * w
			e := a * a
			total += e
			r := Radius(i, j, rows, cols)
			for k := range out {
				if r >= out[k].Low && r < out[k].High {
					energies[k] = append(energies[k], e)
					break
				}
			}
		}
	}

	for k := range out {
		out[k].Bins = len(energies[k])
		out[k].Energy, out[k].Share = 0, 0
		if out[k].Bins == 0 {
			continue
		}
		out[k].Energy = stat.Mean(energies[k], nil)
		if total > 0 {
			out[k].Share = floats.Sum(energies[k]) / total
		}
	}
	return out, nil
}

// Summary flattens bands into a message suitable for a transport.
func Summary(bands []FrequencyBand) map[string]any {
	msg := map[string]any{"type": "band_energy"}
	for _, b := range bands {
		msg[b.Name] = b.Share
	}
	return msg
}
