// SPDX-License-Identifier: MIT

/*
Package pipeline recomputes spatial results from spectrum snapshots.

Editors enqueue a Snapshot after each accepted edit and return at once. A
single worker goroutine pops requests in order, multiplies spectrum by mask,
undoes the centering, runs the inverse transform outside any store lock and
publishes a Result. A request whose snapshot fails validation is logged,
counted and skipped; the worker keeps draining.
*/
package pipeline

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "freqlab/internal/log"
	"freqlab/internal/spectrum"
)

// Config selects the queue policy and result mode.
type Config struct {
	Policy Policy
	Mode   Mode
}

// Worker owns the request queue and the goroutine that drains it.
type Worker struct {
	cfg   Config
	queue *queue
	out   Publisher

	transform *spectrum.Transform // touched only by the worker goroutine
	buf       []complex128

	running  bool
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects running and doneChan during Start/Stop.
}

// NewWorker creates a stopped worker publishing to out.
func NewWorker(cfg Config, out Publisher) (*Worker, error) {
	if out == nil {
		return nil, fmt.Errorf("Pipeline: publisher cannot be nil")
	}
	applog.Infof("Pipeline: Initializing (policy: %s, mode: %s)", cfg.Policy, cfg.Mode)
	return &Worker{
		cfg:   cfg,
		queue: newQueue(cfg.Policy),
		out:   out,
	}, nil
}

// Enqueue hands snap to the worker and returns the request describing it.
// It never blocks on the worker.
func (w *Worker) Enqueue(snap spectrum.Snapshot) Request {
	req, n := w.queue.push(Request{
		ID:       uuid.NewString(),
		Snapshot: snap,
		Enqueued: time.Now(),
	})
	requestsTotal.Inc()
	if n > 0 {
		supersededTotal.Add(float64(n))
		applog.Debugf("Pipeline: Request %d superseded %d pending", req.Seq, n)
	}
	return req
}

// Pending returns the number of requests not yet started.
func (w *Worker) Pending() int {
	return w.queue.len()
}

// Start launches the worker goroutine. Calling Start on a running worker
// is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		applog.Warnf("Pipeline: Start called but already running.")
		return
	}
	w.running = true
	w.doneChan = make(chan struct{})
	w.stopOnce = sync.Once{}
	done := w.doneChan
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		applog.Infof("Pipeline: Worker started")
		for {
			select {
			case <-done:
				applog.Infof("Pipeline: Worker received stop signal.")
				return
			default:
			}
			req, ok := w.queue.pop(done)
			if !ok {
				applog.Infof("Pipeline: Worker received stop signal.")
				return
			}
			w.handle(req)
		}
	}()
}

// Stop signals the worker and waits for the request in flight to finish.
// Requests still queued are left in place for a later Start.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		applog.Debugf("Pipeline: Stop called but not running.")
		return nil
	}
	w.stopOnce.Do(func() {
		close(w.doneChan)
		w.running = false
	})
	w.mu.Unlock()

	w.wg.Wait()
	applog.Infof("Pipeline: Worker finished.")
	return nil
}

// Close stops the worker.
func (w *Worker) Close() error {
	return w.Stop()
}

func (w *Worker) handle(req Request) {
	start := time.Now()
	res, err := w.Compute(req)
	if err != nil {
		violationsTotal.Inc()
		applog.Errorf("Pipeline: Dropping request %d (%s): %v", req.Seq, req.ID, err)
		return
	}
	computeSeconds.Observe(time.Since(start).Seconds())

	w.out.Publish(res)
	publishedTotal.Inc()
	applog.Debugf("Pipeline: Published result %d (version %d, max imag %.3g)", res.Seq, res.Version, res.MaxImag)
}

// Compute turns one request into a Result. It is called by the worker
// goroutine and must not be called concurrently with a running worker.
func (w *Worker) Compute(req Request) (*Result, error) {
	snap := req.Snapshot
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	rows, cols := snap.Dims()

	if w.transform == nil {
		w.transform = spectrum.NewTransform(rows, cols)
	} else if r, c := w.transform.Dims(); r != rows || c != cols {
		w.transform = spectrum.NewTransform(rows, cols)
	}
	if cap(w.buf) < rows*cols {
		w.buf = make([]complex128, rows*cols)
	}
	buf := w.buf[:rows*cols]
	w.transform.Inverse(buf, snap.Spectrum, snap.Mask)

	res := &Result{
		ID:       req.ID,
		Seq:      req.Seq,
		Version:  snap.Version,
		Rows:     rows,
		Cols:     cols,
		Mode:     w.cfg.Mode,
		Data:     make([]float64, rows*cols),
		Computed: time.Now(),
		Snapshot: snap,
	}
	for i, z := range buf {
		res.MaxImag = math.Max(res.MaxImag, math.Abs(imag(z)))
		if w.cfg.Mode == Real {
			res.Data[i] = real(z)
		} else {
			res.Data[i] = cmplx.Abs(z)
		}
	}
	return res, nil
}
