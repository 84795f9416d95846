// SPDX-License-Identifier: MIT
package edit

import (
	"fmt"
	"strings"
)

// Tool selects an edit operation.
type Tool int

// Enum for available tools.
const (
	Paint Tool = iota
	Erase
	Point
	Line
	Ring
	Grid
	Ripple
)

// Tools lists every tool in display order.
var Tools = []Tool{Paint, Erase, Point, Line, Ring, Grid, Ripple}

// String returns the canonical tool name.
func (t Tool) String() string {
	switch t {
	case Paint:
		return "paint"
	case Erase:
		return "erase"
	case Point:
		return "point"
	case Line:
		return "line"
	case Ring:
		return "ring"
	case Grid:
		return "grid"
	case Ripple:
		return "ripple"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// Spectral reports whether the tool writes the spectrum (as opposed to the
// mask).
func (t Tool) Spectral() bool {
	return t != Paint && t != Erase
}

// ParseTool converts a name (case-insensitive) to a Tool. "brush", "eraser"
// and "sine" are accepted as aliases.
func ParseTool(name string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "paint", "brush":
		return Paint, nil
	case "erase", "eraser":
		return Erase, nil
	case "point", "sine":
		return Point, nil
	case "line":
		return Line, nil
	case "ring":
		return Ring, nil
	case "grid":
		return Grid, nil
	case "ripple":
		return Ripple, nil
	default:
		return Paint, fmt.Errorf("unknown tool name: '%s'", name)
	}
}

// UnmarshalText lets tools appear by name in YAML and flags.
func (t *Tool) UnmarshalText(text []byte) error {
	v, err := ParseTool(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText writes the canonical name.
func (t Tool) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
