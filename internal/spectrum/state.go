// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type undoKind uint8

const (
	undoSpectrum undoKind = iota
	undoMask
)

type undo struct {
	kind undoKind
	at   Coord
	c    complex128
	m    float64
}

// State is the mutable view handed to Apply callbacks. Writes are
// bounds-checked and journaled so the store can roll a failed edit back.
// A State is only valid for the duration of the callback.
type State struct {
	spectrum   *mat.CDense
	mask       *mat.Dense
	rows, cols int
	journal    []undo
}

func newState(spectrum *mat.CDense, mask *mat.Dense) *State {
	r, c := spectrum.Dims()
	return &State{spectrum: spectrum, mask: mask, rows: r, cols: c}
}

// Dims returns the matrix shape.
func (s *State) Dims() (rows, cols int) {
	return s.rows, s.cols
}

// Contains reports whether p lies inside the matrix.
func (s *State) Contains(p Coord) bool {
	return p.Row >= 0 && p.Row < s.rows && p.Col >= 0 && p.Col < s.cols
}

func (s *State) check(p Coord) error {
	if !s.Contains(p) {
		return fmt.Errorf("%w: %v outside %dx%d", ErrOutOfRange, p, s.rows, s.cols)
	}
	return nil
}

// AddSpectrum adds v to the bin at p.
func (s *State) AddSpectrum(p Coord, v complex128) error {
	if err := s.check(p); err != nil {
		return err
	}
	old := s.spectrum.At(p.Row, p.Col)
	s.journal = append(s.journal, undo{kind: undoSpectrum, at: p, c: old})
	s.spectrum.Set(p.Row, p.Col, old+v)
	return nil
}

// ScaleSpectrum multiplies the bin at p by f.
func (s *State) ScaleSpectrum(p Coord, f float64) error {
	if err := s.check(p); err != nil {
		return err
	}
	old := s.spectrum.At(p.Row, p.Col)
	s.journal = append(s.journal, undo{kind: undoSpectrum, at: p, c: old})
	s.spectrum.Set(p.Row, p.Col, old*complex(f, 0))
	return nil
}

// SetMask writes the mask weight at p.
func (s *State) SetMask(p Coord, v float64) error {
	if err := s.check(p); err != nil {
		return err
	}
	s.journal = append(s.journal, undo{kind: undoMask, at: p, m: s.mask.At(p.Row, p.Col)})
	s.mask.Set(p.Row, p.Col, v)
	return nil
}

// rollback restores every journaled write, newest first.
func (s *State) rollback() {
	for i := len(s.journal) - 1; i >= 0; i-- {
		u := s.journal[i]
		switch u.kind {
		case undoSpectrum:
			s.spectrum.Set(u.at.Row, u.at.Col, u.c)
		case undoMask:
			s.mask.Set(u.at.Row, u.at.Col, u.m)
		}
	}
	s.journal = s.journal[:0]
}
