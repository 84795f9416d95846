// SPDX-License-Identifier: MIT
package edit

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"freqlab/internal/spectrum"
)

// Step is one scripted edit. Zero-valued parameters fall back to the
// defaults passed to Edit. Phase is given in degrees.
type Step struct {
	Tool       Tool     `yaml:"tool"`
	Row        int      `yaml:"row"`
	Col        int      `yaml:"col"`
	Radius     *float64 `yaml:"radius,omitempty"`
	Magnitude  *float64 `yaml:"magnitude,omitempty"`
	Phase      *float64 `yaml:"phase,omitempty"`
	Amplitude  *float64 `yaml:"amplitude,omitempty"`
	Tolerance  *float64 `yaml:"tolerance,omitempty"`
	U          *int     `yaml:"u,omitempty"`
	V          *int     `yaml:"v,omitempty"`
	Strength   *float64 `yaml:"strength,omitempty"`
	Wavelength *float64 `yaml:"wavelength,omitempty"`
}

// Script is an ordered list of edits, replayed by the apply command.
type Script struct {
	Reset bool   `yaml:"reset"` // Reset the store before replaying.
	Steps []Step `yaml:"edits"`
}

// ParseScript decodes a YAML edit script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse edit script: %w", err)
	}
	return &s, nil
}

// LoadScript reads and decodes a YAML edit script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edit script: %w", err)
	}
	return ParseScript(data)
}

// Edit resolves the step against defaults. The phase default is taken as
// radians; a scripted phase is converted from degrees.
func (s Step) Edit(defaults Params) Edit {
	p := defaults
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setF(&p.Radius, s.Radius)
	setF(&p.Magnitude, s.Magnitude)
	setF(&p.Amplitude, s.Amplitude)
	setF(&p.Tolerance, s.Tolerance)
	setF(&p.Strength, s.Strength)
	setF(&p.Wavelength, s.Wavelength)
	if s.Phase != nil {
		p.Phase = *s.Phase * math.Pi / 180
	}
	if s.U != nil {
		p.U = *s.U
	}
	if s.V != nil {
		p.V = *s.V
	}
	return Edit{
		Tool:   s.Tool,
		Target: spectrum.Coord{Row: s.Row, Col: s.Col},
		Params: p,
	}
}

// Edits resolves every step in order.
func (s *Script) Edits(defaults Params) []Edit {
	out := make([]Edit, len(s.Steps))
	for i, st := range s.Steps {
		out[i] = st.Edit(defaults)
	}
	return out
}
