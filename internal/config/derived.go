// SPDX-License-Identifier: MIT
package config

import (
	"math"

	"freqlab/internal/edit"
	applog "freqlab/internal/log"
	"freqlab/internal/pipeline"
)

// Level returns the effective log level. Debug wins over LogLevel.
func (c *Config) Level() applog.LogLevel {
	if c.Debug {
		return applog.LevelDebug
	}
	level, _ := applog.ParseLevel(c.LogLevel)
	return level
}

// Tool returns the tool selected at startup.
func (c *Config) Tool() edit.Tool {
	t, err := edit.ParseTool(c.Editor.Tool)
	if err != nil {
		return edit.Paint
	}
	return t
}

// EditParams converts the editor section to tool parameters. Phase is
// converted from degrees to radians.
func (c *Config) EditParams() edit.Params {
	e := c.Editor
	return edit.Params{
		Radius:     e.Radius,
		Magnitude:  e.Magnitude,
		Phase:      e.Phase * math.Pi / 180,
		Amplitude:  e.Amplitude,
		Tolerance:  e.RingTolerance,
		U:          e.GridU,
		V:          e.GridV,
		Strength:   e.RippleStrength,
		Wavelength: e.RippleWavelength,
	}
}

// PipelineConfig returns the worker settings. Values were checked by
// Validate, so parse failures fall back to the defaults.
func (c *Config) PipelineConfig() pipeline.Config {
	policy, _ := pipeline.ParsePolicy(c.Pipeline.Policy)
	mode, _ := pipeline.ParseMode(c.Pipeline.Mode)
	return pipeline.Config{Policy: policy, Mode: mode}
}

// Scaling returns the export scaling.
func (c *Config) Scaling() pipeline.Scaling {
	s, _ := pipeline.ParseScaling(c.Pipeline.Scaling)
	return s
}
