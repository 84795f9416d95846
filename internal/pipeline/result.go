// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"
	"image"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"freqlab/internal/spectrum"
)

// Mode selects how the complex inverse transform becomes a real image.
type Mode int

const (
	// Magnitude takes |z| per pixel.
	Magnitude Mode = iota
	// Real takes the real part per pixel.
	Real
)

func (m Mode) String() string {
	switch m {
	case Magnitude:
		return "magnitude"
	case Real:
		return "real"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts "magnitude" or "real" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "magnitude", "abs", "":
		return Magnitude, nil
	case "real":
		return Real, nil
	default:
		return Magnitude, fmt.Errorf("unknown result mode: '%s'", s)
	}
}

// Scaling selects how result values are mapped to 8-bit gray levels.
type Scaling int

const (
	// Clip clamps to [0,1] and scales by 255.
	Clip Scaling = iota
	// Normalize maps [min,max] onto [0,255]. A constant image maps to zero.
	Normalize
)

func (s Scaling) String() string {
	switch s {
	case Clip:
		return "clip"
	case Normalize:
		return "normalize"
	default:
		return fmt.Sprintf("scaling(%d)", int(s))
	}
}

// ParseScaling converts "clip" or "normalize" to a Scaling.
func ParseScaling(s string) (Scaling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clip", "":
		return Clip, nil
	case "normalize":
		return Normalize, nil
	default:
		return Clip, fmt.Errorf("unknown export scaling: '%s'", s)
	}
}

// Result is the spatial image recovered from one snapshot. Data is
// row-major and owned by the Result; consumers must not modify it or
// the source Snapshot.
type Result struct {
	ID       string
	Seq      uint64
	Version  uint64 // Store version of the source snapshot.
	Rows     int
	Cols     int
	Mode     Mode
	Data     []float64
	MaxImag  float64 // Largest |imag| of the inverse transform.
	Computed time.Time
	Snapshot spectrum.Snapshot
}

// At returns the pixel at row i, column j.
func (r *Result) At(i, j int) float64 {
	return r.Data[i*r.Cols+j]
}

// Uint8 scales the result to 8-bit levels, row-major.
func (r *Result) Uint8(s Scaling) []uint8 {
	out := make([]uint8, len(r.Data))
	if len(r.Data) == 0 {
		return out
	}
	switch s {
	case Normalize:
		lo, hi := floats.Min(r.Data), floats.Max(r.Data)
		if hi-lo <= 0 {
			return out
		}
		k := 255 / (hi - lo)
		for i, v := range r.Data {
			out[i] = uint8((v - lo) * k)
		}
	default:
		for i, v := range r.Data {
			out[i] = uint8(min(max(v, 0), 1) * 255)
		}
	}
	return out
}

// Gray renders the result as an 8-bit image.
func (r *Result) Gray(s Scaling) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.Cols, r.Rows))
	px := r.Uint8(s)
	for i := 0; i < r.Rows; i++ {
		copy(img.Pix[i*img.Stride:i*img.Stride+r.Cols], px[i*r.Cols:(i+1)*r.Cols])
	}
	return img
}
