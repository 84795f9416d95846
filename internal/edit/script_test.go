// SPDX-License-Identifier: MIT
package edit

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freqlab/internal/spectrum"
)

const sampleScript = `
reset: true
edits:
  - tool: sine
    row: 2
    col: 1
    magnitude: 10
    phase: 90
  - tool: erase
    row: 0
    col: 0
  - tool: grid
    row: 2
    col: 2
    u: 1
`

func TestParseScript(t *testing.T) {
	t.Parallel()
	s, err := ParseScript([]byte(sampleScript))
	require.NoError(t, err)
	require.Len(t, s.Steps, 3)
	assert.True(t, s.Reset)

	defaults := Params{Radius: 3, Magnitude: 1, Amplitude: 2, U: 4, V: 5}
	edits := s.Edits(defaults)

	assert.Equal(t, Point, edits[0].Tool)
	assert.Equal(t, spectrum.Coord{Row: 2, Col: 1}, edits[0].Target)
	assert.Equal(t, 10.0, edits[0].Params.Magnitude)
	assert.InDelta(t, math.Pi/2, edits[0].Params.Phase, 1e-12)

	assert.Equal(t, Erase, edits[1].Tool)
	assert.Equal(t, 3.0, edits[1].Params.Radius)

	assert.Equal(t, Grid, edits[2].Tool)
	assert.Equal(t, 1, edits[2].Params.U)
	assert.Equal(t, 5, edits[2].Params.V)
	assert.Equal(t, 2.0, edits[2].Params.Amplitude)
}

func TestParseScript_UnknownTool(t *testing.T) {
	t.Parallel()
	_, err := ParseScript([]byte("edits:\n  - tool: lasso\n"))
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "edits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0o644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 3)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
