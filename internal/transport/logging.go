// SPDX-License-Identifier: MIT
package transport

import (
	applog "freqlab/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each message.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data at debug level.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case Frame:
		applog.Debugf("Transport: Result %d (version %d, %dx%d, %s, max imag %.3g)",
			v.Seq, v.Version, v.Rows, v.Cols, v.Mode, v.MaxImag)
	default:
		applog.Debugf("Transport: Received (%T): %+v", data, data)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("Transport: LoggingTransport closed.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
