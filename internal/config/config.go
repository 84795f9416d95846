// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults applied before the config file and environment are read.
const (
	DefaultConfigFile = "freqlab.yaml"
	DefaultLogLevel   = "info"

	// Editor
	DefaultTool             = "paint"
	DefaultRadius           = 4.0  // Paint/Erase disc radius in bins.
	DefaultMagnitude        = 50.0 // Point injection magnitude.
	DefaultPhaseDegrees     = 0.0
	DefaultAmplitude        = 20.0 // Line/Ring/Grid constant.
	DefaultGridU            = 8
	DefaultGridV            = 8
	DefaultRingTolerance    = 6.0
	DefaultRippleStrength   = 0.45
	DefaultRippleWavelength = 12.0
	DefaultCursorStep       = 1

	// Pipeline
	DefaultQueuePolicy   = "fifo"
	DefaultResultMode    = "magnitude"
	DefaultExportScaling = "clip"

	// Transport
	DefaultWebSocketAddress   = ":8080"
	DefaultWebSocketRate      = 20.0 // Frames per second per viewer broadcast.
	DefaultUDPTargetAddress   = "127.0.0.1:9090"
	DefaultUDPSendInterval    = 33 * time.Millisecond // ~30Hz
	DefaultUDPMaxPayloadBytes = 1200

	// Export
	DefaultOutputDir = "./results"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		Editor: EditorConfig{
			Tool:             DefaultTool,
			Radius:           DefaultRadius,
			Magnitude:        DefaultMagnitude,
			Phase:            DefaultPhaseDegrees,
			Amplitude:        DefaultAmplitude,
			GridU:            DefaultGridU,
			GridV:            DefaultGridV,
			RingTolerance:    DefaultRingTolerance,
			RippleStrength:   DefaultRippleStrength,
			RippleWavelength: DefaultRippleWavelength,
			CursorStep:       DefaultCursorStep,
		},
		Pipeline: PipelineConfig{
			Policy:  DefaultQueuePolicy,
			Mode:    DefaultResultMode,
			Scaling: DefaultExportScaling,
		},
		Transport: TransportConfig{
			WebSocketAddress:   DefaultWebSocketAddress,
			WebSocketRate:      DefaultWebSocketRate,
			UDPTargetAddress:   DefaultUDPTargetAddress,
			UDPSendInterval:    DefaultUDPSendInterval,
			UDPMaxPayloadBytes: DefaultUDPMaxPayloadBytes,
		},
		Export: ExportConfig{
			OutputDir: DefaultOutputDir,
		},
	}
}
