// SPDX-License-Identifier: MIT
package spectrum

import "errors"

// Error taxonomy shared by the store, the edit tools and the pipeline. Callers
// match with errors.Is; the wrapped message carries the offending values.
var (
	// ErrInvalidInput reports an empty or non-rectangular sample matrix.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotLoaded reports an operation issued before any image was loaded.
	ErrNotLoaded = errors.New("no image loaded")

	// ErrOutOfRange reports an edit coordinate outside the matrix bounds.
	ErrOutOfRange = errors.New("coordinate out of range")

	// ErrInvariantViolation reports a spectrum/mask shape mismatch inside a
	// snapshot. It is unreachable while Snapshot stays atomic.
	ErrInvariantViolation = errors.New("internal invariant violation")
)
