// SPDX-License-Identifier: MIT
package transport

import (
	"time"

	applog "freqlab/internal/log"
	"freqlab/internal/pipeline"
)

// Transport defines a generic interface for sending results or events to
// viewers. Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// Frame is one result rendered to 8-bit gray levels. Pixels are row-major
// and encode as base64 in JSON.
type Frame struct {
	Type     string    `json:"type"`
	Seq      uint64    `json:"seq"`
	Version  uint64    `json:"version"`
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Mode     string    `json:"mode"`
	MaxImag  float64   `json:"max_imag"`
	Pixels   []byte    `json:"pixels"`
	Computed time.Time `json:"computed"`
}

// NewFrame renders r with the given scaling.
func NewFrame(r *pipeline.Result, s pipeline.Scaling) Frame {
	return Frame{
		Type:     "result",
		Seq:      r.Seq,
		Version:  r.Version,
		Rows:     r.Rows,
		Cols:     r.Cols,
		Mode:     r.Mode.String(),
		MaxImag:  r.MaxImag,
		Pixels:   r.Uint8(s),
		Computed: r.Computed,
	}
}

// ResultPublisher forwards pipeline results to a Transport as Frames.
type ResultPublisher struct {
	t       Transport
	scaling pipeline.Scaling
}

// NewResultPublisher wraps t so it can be attached to the pipeline.
func NewResultPublisher(t Transport, s pipeline.Scaling) *ResultPublisher {
	return &ResultPublisher{t: t, scaling: s}
}

// Publish renders and sends r. Send errors are logged, not returned, so a
// slow viewer never stalls the worker.
func (p *ResultPublisher) Publish(r *pipeline.Result) {
	if err := p.t.Send(NewFrame(r, p.scaling)); err != nil {
		applog.Warnf("Transport: Error sending result %d: %v", r.Seq, err)
	}
}

// Ensure ResultPublisher satisfies the pipeline interface at compile time.
var _ pipeline.Publisher = (*ResultPublisher)(nil)
