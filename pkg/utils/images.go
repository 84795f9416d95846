// SPDX-License-Identifier: MIT

// Package utils holds synthetic images and fakes shared by tests and demos.
package utils

import (
	"math"
	"sync"
)

// Constant returns a rows x cols image filled with v.
func Constant(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = v
		}
	}
	return out
}

// Gradient returns a diagonal ramp from 0 at the top left to 1 at the
// bottom right.
func Gradient(rows, cols int) [][]float64 {
	out := Constant(rows, cols, 0)
	span := float64(rows + cols - 2)
	if span == 0 {
		return out
	}
	for i := range out {
		for j := range out[i] {
			out[i][j] = float64(i+j) / span
		}
	}
	return out
}

// Checkerboard returns alternating 0/1 squares of the given cell size.
func Checkerboard(rows, cols, cell int) [][]float64 {
	if cell < 1 {
		cell = 1
	}
	out := Constant(rows, cols, 0)
	for i := range out {
		for j := range out[i] {
			if (i/cell+j/cell)%2 == 1 {
				out[i][j] = 1
			}
		}
	}
	return out
}

// Sinusoid returns 0.5 + 0.5*cos(2*pi*(u*x/cols + v*y/rows)), a single
// spatial frequency whose spectrum peaks at (v,u) bins from the center.
func Sinusoid(rows, cols, u, v int) [][]float64 {
	out := Constant(rows, cols, 0)
	for y := range out {
		for x := range out[y] {
			phase := 2 * math.Pi * (float64(u*x)/float64(cols) + float64(v*y)/float64(rows))
			out[y][x] = 0.5 + 0.5*math.Cos(phase)
		}
	}
	return out
}

// FindPeak returns the position of the largest value in a row-major grid,
// skipping the cell at skip (use (-1,-1) to skip nothing).
func FindPeak(values [][]float64, skipRow, skipCol int) (row, col int) {
	best := math.Inf(-1)
	for i := range values {
		for j, v := range values[i] {
			if i == skipRow && j == skipCol {
				continue
			}
			if v > best {
				best, row, col = v, i, j
			}
		}
	}
	return row, col
}

// MockTransport records everything sent to it.
type MockTransport struct {
	mu     sync.Mutex
	sent   []any
	closed bool
}

// Send stores data for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Sent returns a copy of everything sent so far.
func (m *MockTransport) Sent() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.sent...)
}

// Closed reports whether Close was called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
