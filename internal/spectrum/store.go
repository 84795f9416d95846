// SPDX-License-Identifier: MIT

/*
Package spectrum owns the editable frequency-domain state of one image.

The Store is the single source of truth for the sample matrix, the centered
spectrum and the multiplicative mask. Every mutation runs through Apply and
every read leaves as a deep copy through Snapshot, both under one mutex, so
no caller ever sees a half-applied edit. Forward transforms for Load and
Reset are computed outside the lock; only the pointer swap is guarded.
*/
package spectrum

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Snapshot is an independent copy of spectrum and mask taken in a single
// lock acquisition. Version identifies the store state it was taken from.
type Snapshot struct {
	Version  uint64
	Spectrum *mat.CDense
	Mask     *mat.Dense
}

// Dims returns the spectrum shape. Use Validate to check the mask agrees.
func (s Snapshot) Dims() (rows, cols int) {
	return s.Spectrum.Dims()
}

// Validate reports ErrInvariantViolation when spectrum and mask shapes differ.
func (s Snapshot) Validate() error {
	if s.Spectrum == nil || s.Mask == nil {
		return fmt.Errorf("%w: snapshot is missing spectrum or mask", ErrInvariantViolation)
	}
	sr, sc := s.Spectrum.Dims()
	mr, mc := s.Mask.Dims()
	if sr != mr || sc != mc {
		return fmt.Errorf("%w: spectrum %dx%d, mask %dx%d", ErrInvariantViolation, sr, sc, mr, mc)
	}
	return nil
}

// Store guards the live sample matrix, spectrum and mask.
type Store struct {
	mu       sync.Mutex
	samples  *mat.Dense
	spectrum *mat.CDense
	mask     *mat.Dense
	version  uint64
}

// NewStore returns an empty store. Operations other than Load fail with
// ErrNotLoaded until an image is loaded.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the sample matrix, recomputes the spectrum and resets the
// mask to all ones.
func (s *Store) Load(rows [][]float64) error {
	samples, err := NewSamples(rows)
	if err != nil {
		return err
	}
	return s.install(samples)
}

// LoadDense is Load for a matrix the caller already built. The store keeps
// its own copy.
func (s *Store) LoadDense(m *mat.Dense) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("%w: empty sample matrix", ErrInvalidInput)
	}
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || v < 0 || v > 1 {
				return fmt.Errorf("%w: sample %v at (%d,%d) outside [0,1]", ErrInvalidInput, v, i, j)
			}
		}
	}
	return s.install(mat.DenseCopyOf(m))
}

func (s *Store) install(samples *mat.Dense) error {
	r, c := samples.Dims()
	spec := NewTransform(r, c).Forward(samples)

	s.mu.Lock()
	s.samples = samples
	s.spectrum = spec
	s.mask = ones(r, c)
	s.version++
	s.mu.Unlock()
	return nil
}

// Reset recomputes the spectrum from the current samples and clears the
// mask. Calling it repeatedly yields the same state.
func (s *Store) Reset() error {
	s.mu.Lock()
	samples := s.samples
	s.mu.Unlock()
	if samples == nil {
		return ErrNotLoaded
	}

	// samples is never mutated in place, only replaced.
	r, c := samples.Dims()
	spec := NewTransform(r, c).Forward(samples)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samples != samples {
		// A concurrent Load replaced the image; its fresh state already is
		// what a reset would produce.
		return nil
	}
	s.spectrum = spec
	s.mask = ones(r, c)
	s.version++
	return nil
}

// Clear sets the mask back to all ones and leaves the spectrum untouched.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samples == nil {
		return ErrNotLoaded
	}
	r, c := s.mask.Dims()
	s.mask = ones(r, c)
	s.version++
	return nil
}

// Apply runs fn against the live spectrum and mask under the store lock. If
// fn returns an error every write it made through the State is undone, so a
// failed edit leaves no trace. fn must not call back into the Store.
func (s *Store) Apply(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(fn)
}

// ApplySnapshot is Apply followed by Snapshot in the same critical section,
// so the snapshot holds exactly this edit and no later one. A failed edit
// returns no snapshot.
func (s *Store) ApplySnapshot(fn func(*State) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.apply(fn); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// apply requires s.mu.
func (s *Store) apply(fn func(*State) error) error {
	if s.samples == nil {
		return ErrNotLoaded
	}
	st := newState(s.spectrum, s.mask)
	if err := fn(st); err != nil {
		st.rollback()
		return err
	}
	if len(st.journal) > 0 {
		s.version++
	}
	return nil
}

// Snapshot deep-copies spectrum and mask in one critical section.
func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samples == nil {
		return Snapshot{}, ErrNotLoaded
	}
	return s.snapshot(), nil
}

// snapshot requires s.mu and a loaded image.
func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Version:  s.version,
		Spectrum: cloneC(s.spectrum),
		Mask:     mat.DenseCopyOf(s.mask),
	}
}

// Samples returns a copy of the loaded sample matrix.
func (s *Store) Samples() (*mat.Dense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samples == nil {
		return nil, ErrNotLoaded
	}
	return mat.DenseCopyOf(s.samples), nil
}

// Dims returns the loaded image shape.
func (s *Store) Dims() (rows, cols int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samples == nil {
		return 0, 0, ErrNotLoaded
	}
	rows, cols = s.samples.Dims()
	return rows, cols, nil
}

// Loaded reports whether an image is present.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples != nil
}
