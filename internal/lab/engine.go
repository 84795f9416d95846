// SPDX-License-Identifier: MIT

/*
Package lab runs one interactive editing session over a single image.

The Engine ties a spectrum.Store to the recompute pipeline. Every accepted
edit, Load, Reset and Clear takes a snapshot and enqueues it; the caller
returns immediately and the worker publishes results in the background.
Renderers poll TryLatest (or wait on Notify) and only ever see the newest
result.
*/
package lab

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gonum.org/v1/gonum/mat"

	"freqlab/internal/analysis"
	"freqlab/internal/edit"
	"freqlab/internal/imageio"
	applog "freqlab/internal/log"
	"freqlab/internal/pipeline"
	"freqlab/internal/spectrum"
)

// ErrNoResult is returned by Export before the first result is published.
var ErrNoResult = errors.New("no result available")

// Options configures an Engine.
type Options struct {
	Pipeline   pipeline.Config
	Scaling    pipeline.Scaling      // Export scaling.
	Publishers []pipeline.Publisher // Receive every result after the result channel.
}

// Engine is an editing session. All methods are safe for concurrent use.
type Engine struct {
	store   *spectrum.Store
	worker  *pipeline.Worker
	results *pipeline.Results
	scaling pipeline.Scaling

	mu      sync.Mutex // Serializes mutate+snapshot+enqueue.
	lastSeq uint64     // Seq of the most recent enqueued request.
}

// NewEngine creates a session with no image loaded. Call Start before
// expecting results.
func NewEngine(opts Options) (*Engine, error) {
	results := pipeline.NewResults()
	out := pipeline.Fanout{results}
	for _, p := range opts.Publishers {
		if p != nil {
			out = append(out, p)
		}
	}

	worker, err := pipeline.NewWorker(opts.Pipeline, out)
	if err != nil {
		return nil, fmt.Errorf("Lab: %w", err)
	}
	applog.Debugf("Lab: Engine created with %d extra publishers", len(out)-1)
	return &Engine{
		store:   spectrum.NewStore(),
		worker:  worker,
		results: results,
		scaling: opts.Scaling,
	}, nil
}

// Start launches the recompute worker.
func (e *Engine) Start() {
	e.worker.Start()
}

// Close stops the recompute worker.
func (e *Engine) Close() error {
	return e.worker.Close()
}

// Load installs a new image given as rows of [0,1] samples.
func (e *Engine) Load(rows [][]float64) error {
	err := e.recompute(func() (spectrum.Snapshot, error) {
		if err := e.store.Load(rows); err != nil {
			return spectrum.Snapshot{}, err
		}
		return e.store.Snapshot()
	})
	if err != nil {
		return err
	}
	r, c, _ := e.store.Dims()
	applog.Infof("Lab: Loaded %dx%d image", r, c)
	return nil
}

// LoadDense installs a new image from a matrix.
func (e *Engine) LoadDense(m *mat.Dense) error {
	return e.recompute(func() (spectrum.Snapshot, error) {
		if err := e.store.LoadDense(m); err != nil {
			return spectrum.Snapshot{}, err
		}
		return e.store.Snapshot()
	})
}

// LoadImage decodes the image at path as grayscale and installs it.
func (e *Engine) LoadImage(path string) error {
	rows, err := imageio.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %v", spectrum.ErrInvalidInput, err)
	}
	return e.Load(rows)
}

// Submit validates and applies one edit, then schedules a recompute. A
// rejected edit leaves the session untouched and enqueues nothing.
func (e *Engine) Submit(ed edit.Edit) error {
	err := e.recompute(func() (spectrum.Snapshot, error) {
		return edit.SubmitSnapshot(e.store, ed)
	})
	if err != nil {
		return err
	}
	applog.Debugf("Lab: Applied %s", ed)
	return nil
}

// Reset restores the spectrum from the loaded image and clears the mask.
func (e *Engine) Reset() error {
	return e.recompute(func() (spectrum.Snapshot, error) {
		if err := e.store.Reset(); err != nil {
			return spectrum.Snapshot{}, err
		}
		return e.store.Snapshot()
	})
}

// Clear sets the mask back to pass-through, keeping spectral edits.
func (e *Engine) Clear() error {
	return e.recompute(func() (spectrum.Snapshot, error) {
		if err := e.store.Clear(); err != nil {
			return spectrum.Snapshot{}, err
		}
		return e.store.Snapshot()
	})
}

// recompute runs mutate and enqueues the snapshot it returns. Every engine
// mutation goes through here under e.mu, so each request carries exactly one
// change and queue order follows store versions.
func (e *Engine) recompute(mutate func() (spectrum.Snapshot, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, err := mutate()
	if err != nil {
		return err
	}
	e.lastSeq = e.worker.Enqueue(snap).Seq
	return nil
}

// TryLatest returns the newest result not yet taken, without blocking.
func (e *Engine) TryLatest() (*pipeline.Result, bool) {
	return e.results.TryLatest()
}

// Notify wakes after each published result.
func (e *Engine) Notify() <-chan struct{} {
	return e.results.Notify()
}

// Latest returns the most recent result, taken or not, or nil.
func (e *Engine) Latest() *pipeline.Result {
	return e.results.Last()
}

// Wait blocks until the result for the most recent request is published
// and returns it.
func (e *Engine) Wait(ctx context.Context) (*pipeline.Result, error) {
	e.mu.Lock()
	want := e.lastSeq
	e.mu.Unlock()
	if want == 0 {
		return nil, ErrNoResult
	}
	for {
		if r := e.results.Last(); r != nil && r.Seq >= want {
			return r, nil
		}
		select {
		case <-e.results.Notify():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Export returns the latest result scaled to 8 bits.
func (e *Engine) Export() (*image.Gray, error) {
	if !e.store.Loaded() {
		return nil, spectrum.ErrNotLoaded
	}
	r := e.results.Last()
	if r == nil {
		return nil, ErrNoResult
	}
	return r.Gray(e.scaling), nil
}

// ExportPNG writes Export's image to path.
func (e *Engine) ExportPNG(path string) error {
	img, err := e.Export()
	if err != nil {
		return err
	}
	if err := imageio.SavePNG(path, img); err != nil {
		return err
	}
	applog.Infof("Lab: Exported result to %s", path)
	return nil
}

// SpectrumView renders the current masked log-magnitude spectrum.
func (e *Engine) SpectrumView() (*image.Gray, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.View(), nil
}

// Bands measures the masked spectral energy per radial band.
func (e *Engine) Bands() ([]analysis.FrequencyBand, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return analysis.BandEnergy(snap.Spectrum, snap.Mask, analysis.DefaultBands())
}

// Dims returns the loaded image shape.
func (e *Engine) Dims() (rows, cols int, err error) {
	return e.store.Dims()
}

// Pending returns the number of queued recomputes.
func (e *Engine) Pending() int {
	return e.worker.Pending()
}
