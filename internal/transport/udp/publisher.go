// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "freqlab/internal/log"
	"freqlab/internal/pipeline"
)

// HeaderSize is the fixed length of a frame packet header in bytes.
const HeaderSize = 24

// Source provides the most recent result, or nil before the first one.
type Source interface {
	Latest() *pipeline.Result
}

// UDPPublisher periodically fetches the latest result, renders it to 8-bit
// rows and sends it as a burst of UDP packets. A result is sent once; ticks
// with nothing new are skipped. It runs in a separate goroutine managed by
// Start and Stop.
type UDPPublisher struct {
	sender     *UDPSender
	source     Source
	interval   time.Duration
	scaling    pipeline.Scaling
	maxPayload int

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	sequenceNum  uint32        // Packet counter, increases across frames.
	lastSent     uint64        // Result Seq of the last frame sent.
	packetBuffer *bytes.Buffer // Reused for every packet.
}

// NewUDPPublisher creates a publisher. An interval <= 0 defaults to 33ms
// (~30Hz). maxPayload caps the datagram size including the header.
func NewUDPPublisher(interval time.Duration, maxPayload int, scaling pipeline.Scaling, sender *UDPSender, source Source) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("UDPPublisher: result source cannot be nil")
	}
	if maxPayload <= HeaderSize {
		return nil, fmt.Errorf("UDPPublisher: max payload %d leaves no room after the %d byte header", maxPayload, HeaderSize)
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("UDPPublisher: Initializing (Interval: %s, Max payload: %d bytes)", interval, maxPayload)
	return &UDPPublisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		scaling:      scaling,
		maxPayload:   maxPayload,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins the periodic publishing process. Subsequent calls are no-ops
// while running.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Local copies so the goroutine never reads p.ticker/p.doneChan.
	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publishLatest()
			case <-doneChan:
				applog.Infof("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to
// exit. It is safe to call Stop multiple times.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("UDPPublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

/*
UDP Frame Packet Structure (BigEndian)

A result of H rows is split into consecutive row bands; each band travels in
its own packet so that every packet stays under the payload cap.

+------------------------------------------------------------------------------+
| Field             | Data Type | Size (Bytes) | Description                     |
|-------------------|-----------|--------------|---------------------------------|
| Packet Sequence   | uint32    | 4            | Monotonically increasing        |
| Timestamp         | int64     | 8            | Nanoseconds since epoch         |
| Frame Sequence    | uint32    | 4            | Result Seq the rows belong to   |
| Width             | uint16    | 2            | Columns per row                 |
| Height            | uint16    | 2            | Rows in the whole frame         |
| Row Start         | uint16    | 2            | First row carried               |
| Row Count         | uint16    | 2            | Rows carried (R)                |
| Pixels            | []uint8   | R * Width    | Gray levels, row-major          |
+------------------------------------------------------------------------------+
*/

// Packet is a decoded frame packet.
type Packet struct {
	Sequence      uint32
	Timestamp     int64
	FrameSequence uint32
	Width         uint16
	Height        uint16
	RowStart      uint16
	RowCount      uint16
	Pixels        []byte
}

// DecodePacket parses one datagram produced by UDPPublisher.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("packet too short: %d bytes", len(b))
	}
	p := Packet{
		Sequence:      binary.BigEndian.Uint32(b[0:4]),
		Timestamp:     int64(binary.BigEndian.Uint64(b[4:12])),
		FrameSequence: binary.BigEndian.Uint32(b[12:16]),
		Width:         binary.BigEndian.Uint16(b[16:18]),
		Height:        binary.BigEndian.Uint16(b[18:20]),
		RowStart:      binary.BigEndian.Uint16(b[20:22]),
		RowCount:      binary.BigEndian.Uint16(b[22:24]),
	}
	want := int(p.RowCount) * int(p.Width)
	if len(b)-HeaderSize != want {
		return Packet{}, fmt.Errorf("packet carries %d pixel bytes, header says %d", len(b)-HeaderSize, want)
	}
	p.Pixels = b[HeaderSize:]
	return p, nil
}

// publishLatest runs on each tick. It sends the newest result if it has not
// been sent yet.
func (p *UDPPublisher) publishLatest() {
	r := p.source.Latest()
	if r == nil || r.Seq == p.lastSent {
		return
	}
	if r.Cols > 0xffff || r.Rows > 0xffff {
		applog.Errorf("UDPPublisher: Result %dx%d exceeds the packet format", r.Rows, r.Cols)
		p.lastSent = r.Seq
		return
	}
	rowsPer := (p.maxPayload - HeaderSize) / max(r.Cols, 1)
	if rowsPer < 1 {
		applog.Errorf("UDPPublisher: A %d pixel row does not fit in %d bytes", r.Cols, p.maxPayload)
		p.lastSent = r.Seq
		return
	}

	pixels := r.Uint8(p.scaling)
	timestamp := time.Now().UnixNano()
	for start := 0; start < r.Rows; start += rowsPer {
		count := min(rowsPer, r.Rows-start)
		p.sequenceNum++

		p.packetBuffer.Reset()
		var hdr [HeaderSize]byte
		binary.BigEndian.PutUint32(hdr[0:4], p.sequenceNum)
		binary.BigEndian.PutUint64(hdr[4:12], uint64(timestamp))
		binary.BigEndian.PutUint32(hdr[12:16], uint32(r.Seq))
		binary.BigEndian.PutUint16(hdr[16:18], uint16(r.Cols))
		binary.BigEndian.PutUint16(hdr[18:20], uint16(r.Rows))
		binary.BigEndian.PutUint16(hdr[20:22], uint16(start))
		binary.BigEndian.PutUint16(hdr[22:24], uint16(count))
		p.packetBuffer.Write(hdr[:])
		p.packetBuffer.Write(pixels[start*r.Cols : (start+count)*r.Cols])

		if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
			// The sender already logged it; drop the rest of this frame.
			return
		}
	}
	p.lastSent = r.Seq
	applog.Debugf("UDPPublisher: Sent frame %d (%dx%d)", r.Seq, r.Rows, r.Cols)
}

// Close implements the io.Closer interface. It gracefully stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

// Ensure UDPPublisher satisfies the io.Closer interface at compile time.
var _ interface{ Close() error } = (*UDPPublisher)(nil)
