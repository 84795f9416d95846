// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	applog "freqlab/internal/log"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("UDP sender is closed")

var (
	udpPackets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "udp",
		Name:      "packets_sent_total",
		Help:      "Frame packets written to the UDP target",
	})

	udpBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "udp",
		Name:      "bytes_sent_total",
		Help:      "Bytes written to the UDP target, headers included",
	})

	udpErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "udp",
		Name:      "send_errors_total",
		Help:      "Failed UDP writes",
	})
)

// UDPSender writes datagrams to one connected target.
type UDPSender struct {
	mu     sync.Mutex // Serializes writes against Close.
	conn   *net.UDPConn
	target string
	sent   uint64
}

// NewUDPSender dials targetAddress ("host:port"). UDP dialing only fixes the
// peer; nothing is sent until Send.
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("UDPSender: Sending frames to %s", conn.RemoteAddr())
	return &UDPSender{conn: conn, target: addr.String()}, nil
}

// Send writes packet as a single datagram.
func (s *UDPSender) Send(packet []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrSenderClosed
	}

	n, err := s.conn.Write(packet)
	if err != nil {
		udpErrors.Inc()
		applog.Warnf("UDPSender: Write to %s failed: %v", s.target, err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	s.sent++
	udpPackets.Inc()
	udpBytes.Add(float64(n))
	return nil
}

// Sent returns the number of packets written so far.
func (s *UDPSender) Sent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Close releases the socket. Later calls are no-ops.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}

	conn := s.conn
	s.conn = nil
	applog.Infof("UDPSender: Closing connection to %s after %d packets", s.target, s.sent)
	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}
