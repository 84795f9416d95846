// SPDX-License-Identifier: MIT

/*
Package edit implements the paint-like tools that modify a spectrum store.

Each Edit is validated against the image shape before it touches the store,
then applied inside a single Store.Apply call. Mask tools (Paint, Erase) only
write the mask. Spectral tools add energy to a bin set and the same energy,
conjugated, to the set reflected through the zero-frequency bin, so the
inverse transform stays real-valued.
*/
package edit

import (
	"fmt"
	"math"

	"freqlab/internal/spectrum"
)

// DefaultRingTolerance is the half-width of a ring tool annulus in bins.
const DefaultRingTolerance = 6.0

// Params carries the tool-specific arguments. Only the fields used by the
// chosen tool are read.
type Params struct {
	Radius     float64 // Paint/Erase disc radius in bins.
	Magnitude  float64 // Point injection magnitude.
	Phase      float64 // Point injection phase in radians.
	Amplitude  float64 // Real constant for Line, Ring and Grid.
	Tolerance  float64 // Ring annulus half-width.
	U, V       int     // Grid column and row offsets.
	Strength   float64 // Ripple modulation depth.
	Wavelength float64 // Ripple wavelength in bins.
}

// Edit is one tool application at a target bin.
type Edit struct {
	Tool   Tool
	Target spectrum.Coord
	Params Params
}

func (e Edit) String() string {
	return fmt.Sprintf("%s at %v", e.Tool, e.Target)
}

// Validate checks the target and parameters against a rows x cols image. It
// never touches a store, so rejected edits leave no trace.
func (e Edit) Validate(rows, cols int) error {
	if e.Tool != Ripple {
		t := e.Target
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			return fmt.Errorf("%w: %s target %v outside %dx%d", spectrum.ErrOutOfRange, e.Tool, t, rows, cols)
		}
	}

	p := e.Params
	switch e.Tool {
	case Paint, Erase:
		if !finite(p.Radius) || p.Radius < 0 {
			return fmt.Errorf("%w: radius must be a non-negative number, got %v", spectrum.ErrInvalidInput, p.Radius)
		}
	case Point:
		if !finite(p.Magnitude) || !finite(p.Phase) {
			return fmt.Errorf("%w: point magnitude and phase must be finite", spectrum.ErrInvalidInput)
		}
	case Line, Grid:
		if !finite(p.Amplitude) {
			return fmt.Errorf("%w: amplitude must be finite", spectrum.ErrInvalidInput)
		}
	case Ring:
		if !finite(p.Amplitude) {
			return fmt.Errorf("%w: amplitude must be finite", spectrum.ErrInvalidInput)
		}
		if p.Tolerance < 0 || !finite(p.Tolerance) {
			return fmt.Errorf("%w: ring tolerance must be non-negative, got %v", spectrum.ErrInvalidInput, p.Tolerance)
		}
	case Ripple:
		if !finite(p.Strength) || !finite(p.Wavelength) || p.Wavelength <= 0 {
			return fmt.Errorf("%w: ripple needs a finite strength and a positive wavelength", spectrum.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown tool %d", spectrum.ErrInvalidInput, int(e.Tool))
	}
	return nil
}

// Apply performs the edit against a store state. Callers go through
// Submit; Apply is exported for Store.Apply callbacks that batch edits.
func (e Edit) Apply(st *spectrum.State) error {
	switch e.Tool {
	case Paint:
		return disc(st, e.Target, e.Params.Radius, 1)
	case Erase:
		return disc(st, e.Target, e.Params.Radius, 0)
	case Point:
		return point(st, e.Target, e.Params.Magnitude, e.Params.Phase)
	case Line:
		return line(st, e.Target.Row, e.Params.Amplitude)
	case Ring:
		tol := e.Params.Tolerance
		if tol == 0 {
			tol = DefaultRingTolerance
		}
		return ring(st, e.Target, e.Params.Amplitude, tol)
	case Grid:
		return grid(st, e.Target, e.Params.U, e.Params.V, e.Params.Amplitude)
	case Ripple:
		return ripple(st, e.Params.Strength, e.Params.Wavelength)
	default:
		return fmt.Errorf("%w: unknown tool %d", spectrum.ErrInvalidInput, int(e.Tool))
	}
}

// Submit validates e against the store's image and applies it in one
// guarded call.
func Submit(s *spectrum.Store, e Edit) error {
	return s.Apply(e.validateAndApply)
}

// SubmitSnapshot is Submit that also returns the snapshot taken under the
// same lock, for handing to the recompute pipeline.
func SubmitSnapshot(s *spectrum.Store, e Edit) (spectrum.Snapshot, error) {
	return s.ApplySnapshot(e.validateAndApply)
}

// validateAndApply checks e against the live shape before any write.
func (e Edit) validateAndApply(st *spectrum.State) error {
	rows, cols := st.Dims()
	if err := e.Validate(rows, cols); err != nil {
		return err
	}
	return e.Apply(st)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
