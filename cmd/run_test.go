// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freqlab/internal/config"
	"freqlab/internal/imageio"
	"freqlab/pkg/utils"
)

func writeImage(t *testing.T, dir string, rows [][]float64) string {
	t.Helper()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, imageio.SavePNG(path, imageio.Gray(rows)))
	return path
}

func TestRunApply(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, utils.Gradient(16, 16))
	script := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(script, []byte(`
reset: true
edits:
  - tool: sine
    row: 8
    col: 10
    magnitude: 20
  - tool: erase
    row: 8
    col: 8
    radius: 0
`), 0o644))

	cfg := config.Default()
	cfg.Export.OutputDir = filepath.Join(dir, "out")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	paths, err := RunApply(ctx, &cfg, &Options{Image: img, Script: script})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "out", "photo_result.png"),
		filepath.Join(dir, "out", "photo_spectrum.png"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestRunApply_BadEdit(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, utils.Gradient(8, 8))
	script := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(script, []byte("edits:\n  - tool: point\n    row: 20\n    col: 1\n"), 0o644))

	cfg := config.Default()
	cfg.Export.OutputDir = dir
	_, err := RunApply(context.Background(), &cfg, &Options{Image: img, Script: script})
	assert.ErrorContains(t, err, "edit 1")
}

func TestRunNoise(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, utils.Checkerboard(32, 32, 4))

	cfg := config.Default()
	cfg.Export.OutputDir = dir
	paths, err := RunNoise(&cfg, &Options{
		Image:            img,
		Offsets:          "2,3; 5,1",
		Strength:         4,
		RippleStrength:   0.3,
		RippleWavelength: 6,
	})
	require.NoError(t, err)
	require.Len(t, paths, 6)
	assert.Equal(t, filepath.Join(dir, "part1_periodic_image.png"), paths[0])
	assert.Equal(t, filepath.Join(dir, "part2_ripple_spectrum_after.png"), paths[5])
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestRunNoise_MissingImage(t *testing.T) {
	cfg := config.Default()
	cfg.Export.OutputDir = t.TempDir()
	_, err := RunNoise(&cfg, &Options{Image: filepath.Join(cfg.Export.OutputDir, "missing.png"), RippleWavelength: 6})
	assert.Error(t, err)
}
