// SPDX-License-Identifier: MIT
package udp

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freqlab/internal/pipeline"
)

type fixedSource struct {
	mu sync.Mutex
	r  *pipeline.Result
}

func (s *fixedSource) Latest() *pipeline.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r
}

func listen(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readPacket(t *testing.T, conn *net.UDPConn) Packet {
	t.Helper()
	buf := make([]byte, 2048)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)
	p, err := DecodePacket(buf[:n])
	require.NoError(t, err)
	return p
}

func TestPublisher_SendsFrameInRowBands(t *testing.T) {
	conn := listen(t)
	sender, err := NewUDPSender(conn.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	const rows, cols = 5, 10
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i) / float64(len(data)-1)
	}
	src := &fixedSource{r: &pipeline.Result{Seq: 7, Rows: rows, Cols: cols, Data: data}}

	// 24 byte header + 2 rows of 10 pixels per packet.
	pub, err := NewUDPPublisher(time.Millisecond, HeaderSize+25, pipeline.Clip, sender, src)
	require.NoError(t, err)
	pub.publishLatest()
	pub.publishLatest() // Same result again: nothing new is sent.

	want := src.r.Uint8(pipeline.Clip)
	got := make([]byte, 0, rows*cols)
	starts := []uint16{0, 2, 4}
	for i, start := range starts {
		p := readPacket(t, conn)
		assert.Equal(t, uint32(i+1), p.Sequence)
		assert.Equal(t, uint32(7), p.FrameSequence)
		assert.Equal(t, uint16(cols), p.Width)
		assert.Equal(t, uint16(rows), p.Height)
		assert.Equal(t, start, p.RowStart)
		got = append(got, p.Pixels...)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, uint64(3), sender.Sent())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err = conn.ReadFromUDP(make([]byte, 64))
	assert.Error(t, err, "duplicate frame was sent")
}

func TestPublisher_StartStop(t *testing.T) {
	conn := listen(t)
	sender, err := NewUDPSender(conn.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	src := &fixedSource{}
	pub, err := NewUDPPublisher(2*time.Millisecond, 1200, pipeline.Normalize, sender, src)
	require.NoError(t, err)
	pub.Start()
	pub.Start()

	src.mu.Lock()
	src.r = &pipeline.Result{Seq: 1, Rows: 2, Cols: 2, Data: []float64{0, 1, 2, 3}}
	src.mu.Unlock()

	p := readPacket(t, conn)
	assert.Equal(t, []byte{0, 85, 170, 255}, p.Pixels)
	assert.Equal(t, uint16(2), p.RowCount)

	require.NoError(t, pub.Stop())
	require.NoError(t, pub.Stop())
	require.NoError(t, pub.Close())
}

func TestNewUDPPublisher_Errors(t *testing.T) {
	src := &fixedSource{}
	_, err := NewUDPPublisher(time.Second, 1200, pipeline.Clip, nil, src)
	assert.Error(t, err)

	conn := listen(t)
	sender, err := NewUDPSender(conn.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	_, err = NewUDPPublisher(time.Second, 1200, pipeline.Clip, sender, nil)
	assert.Error(t, err)
	_, err = NewUDPPublisher(time.Second, HeaderSize, pipeline.Clip, sender, src)
	assert.Error(t, err)
}

func TestDecodePacket_Errors(t *testing.T) {
	_, err := DecodePacket(make([]byte, 10))
	assert.Error(t, err)

	b := make([]byte, HeaderSize+3)
	b[17] = 2 // width 2
	b[23] = 1 // one row, but 3 pixel bytes follow
	_, err = DecodePacket(b)
	assert.Error(t, err)
}

func TestSender_Closed(t *testing.T) {
	conn := listen(t)
	sender, err := NewUDPSender(conn.LocalAddr().String())
	require.NoError(t, err)
	require.NoError(t, sender.Close())
	require.NoError(t, sender.Close())
	assert.ErrorIs(t, sender.Send([]byte{1}), ErrSenderClosed)

	_, err = NewUDPSender("not an address")
	assert.Error(t, err)
}
