// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Coord addresses a bin of the centered spectrum in matrix space.
type Coord struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// NewSamples validates a row-major grid of normalized gray levels and packs
// it into a dense matrix. Empty or ragged input and values outside [0,1]
// (NaN included) are rejected.
func NewSamples(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty sample matrix", ErrInvalidInput)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInput, i, len(row), cols)
		}
		for j, v := range row {
			if math.IsNaN(v) || v < 0 || v > 1 {
				return nil, fmt.Errorf("%w: sample %v at (%d,%d) outside [0,1]", ErrInvalidInput, v, i, j)
			}
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// ones returns a rows x cols pass-through mask.
func ones(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = 1
	}
	return mat.NewDense(rows, cols, data)
}

// cloneC returns an independent copy of a complex matrix. Matrices built in
// this package are never sliced, so the backing data is contiguous.
func cloneC(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	raw := m.RawCMatrix()
	data := make([]complex128, r*c)
	if raw.Stride == c {
		copy(data, raw.Data[:r*c])
	} else {
		for i := 0; i < r; i++ {
			copy(data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
		}
	}
	return mat.NewCDense(r, c, data)
}
