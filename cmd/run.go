// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"freqlab/internal/config"
	"freqlab/internal/edit"
	"freqlab/internal/imageio"
	"freqlab/internal/lab"
	applog "freqlab/internal/log"
	"freqlab/internal/spectrum"
	"freqlab/internal/synth"
)

// stem returns the image file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RunApply loads the image, replays the edit script and writes
// <stem>_result.png and <stem>_spectrum.png to the output directory. It
// returns the written paths.
func RunApply(ctx context.Context, cfg *config.Config, opts *Options) ([]string, error) {
	script, err := edit.LoadScript(opts.Script)
	if err != nil {
		return nil, err
	}

	engine, err := lab.NewEngine(lab.Options{Pipeline: cfg.PipelineConfig(), Scaling: cfg.Scaling()})
	if err != nil {
		return nil, err
	}
	engine.Start()
	defer engine.Close()

	if err := engine.LoadImage(opts.Image); err != nil {
		return nil, err
	}
	if script.Reset {
		if err := engine.Reset(); err != nil {
			return nil, err
		}
	}
	for i, e := range script.Edits(cfg.EditParams()) {
		if err := engine.Submit(e); err != nil {
			return nil, fmt.Errorf("edit %d (%s): %w", i+1, e, err)
		}
	}

	result, err := engine.Wait(ctx)
	if err != nil {
		return nil, err
	}
	applog.Infof("Apply: %d edits applied, result %d (max imaginary residue %.3g)", len(script.Steps), result.Seq, result.MaxImag)

	name := stem(opts.Image)
	resultPath := filepath.Join(cfg.Export.OutputDir, name+"_result.png")
	spectrumPath := filepath.Join(cfg.Export.OutputDir, name+"_spectrum.png")

	if err := engine.ExportPNG(resultPath); err != nil {
		return nil, err
	}
	view, err := engine.SpectrumView()
	if err != nil {
		return nil, err
	}
	if err := imageio.SavePNG(spectrumPath, view); err != nil {
		return nil, err
	}

	if bands, err := engine.Bands(); err == nil {
		for _, b := range bands {
			applog.Debugf("Apply: Band %-4s share %.3f (%d bins)", b.Name, b.Share, b.Bins)
		}
	}
	return []string{resultPath, spectrumPath}, nil
}

// RunNoise writes the periodic noise set (part1_periodic_*) and the ripple
// set (part2_ripple_*) for the image. It returns the written paths.
func RunNoise(cfg *config.Config, opts *Options) ([]string, error) {
	rows, err := imageio.Load(opts.Image)
	if err != nil {
		return nil, err
	}
	samples, err := spectrum.NewSamples(rows)
	if err != nil {
		return nil, err
	}

	offsets := synth.ParseOffsets(opts.Offsets)
	if opts.Offsets != "" && len(offsets) == 0 {
		applog.Warnf("Noise: No valid offsets in %q, using defaults", opts.Offsets)
	}

	periodic, err := synth.Periodic(samples, offsets, opts.Strength)
	if err != nil {
		return nil, err
	}
	ripple, err := synth.Ripple(samples, opts.RippleStrength, opts.RippleWavelength)
	if err != nil {
		return nil, err
	}

	dir := cfg.Export.OutputDir
	var written []string
	for _, set := range []struct {
		prefix string
		out    *synth.Output
	}{
		{"part1_periodic", periodic},
		{"part2_ripple", ripple},
	} {
		for _, img := range []struct {
			suffix string
			img    *image.Gray
		}{
			{"image", set.out.Image()},
			{"spectrum_before", set.out.Before},
			{"spectrum_after", set.out.After},
		} {
			path := filepath.Join(dir, set.prefix+"_"+img.suffix+".png")
			if err := imageio.SavePNG(path, img.img); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	applog.Infof("Noise: Wrote %d images to %s", len(written), dir)
	return written, nil
}
