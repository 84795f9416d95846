// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	applog "freqlab/internal/log"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`                                                          // Enable debug logging.
	LogLevel  string          `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"` // Logging level.
	Editor    EditorConfig    `yaml:"editor"`                                                         // Tool defaults for the interactive session.
	Pipeline  PipelineConfig  `yaml:"pipeline"`                                                       // Recompute settings.
	Transport TransportConfig `yaml:"transport"`                                                      // Result fan-out settings.
	Export    ExportConfig    `yaml:"export"`                                                         // Export settings.
}

// EditorConfig holds the parameters the editing tools start with.
type EditorConfig struct {
	Tool             string  `yaml:"tool" validate:"oneof=paint brush erase eraser point sine line ring grid ripple"`
	Radius           float64 `yaml:"radius" validate:"gte=0,lte=4096"`  // Paint/Erase radius in bins.
	Magnitude        float64 `yaml:"magnitude"`                         // Point injection magnitude.
	Phase            float64 `yaml:"phase"`                             // Point injection phase in degrees.
	Amplitude        float64 `yaml:"amplitude"`                         // Line/Ring/Grid constant.
	GridU            int     `yaml:"grid_u" validate:"gte=0"`           // Grid column offset.
	GridV            int     `yaml:"grid_v" validate:"gte=0"`           // Grid row offset.
	RingTolerance    float64 `yaml:"ring_tolerance" validate:"gt=0"`    // Ring annulus half-width.
	RippleStrength   float64 `yaml:"ripple_strength"`                   // Ripple modulation depth.
	RippleWavelength float64 `yaml:"ripple_wavelength" validate:"gt=0"` // Ripple wavelength in bins.
	CursorStep       int     `yaml:"cursor_step" validate:"gte=1"`      // Bins moved per arrow key.
}

// PipelineConfig selects queue policy, result mode and export scaling.
type PipelineConfig struct {
	Policy  string `yaml:"policy" validate:"oneof=fifo latest"`
	Mode    string `yaml:"mode" validate:"oneof=magnitude real"`
	Scaling string `yaml:"scaling" validate:"oneof=clip normalize"`
}

// TransportConfig holds settings related to sending results over the network.
type TransportConfig struct {
	WebSocketEnabled   bool          `yaml:"websocket_enabled"`                                            // Serve results to browser viewers.
	WebSocketAddress   string        `yaml:"websocket_address" validate:"required_if=WebSocketEnabled true"` // Listen address, e.g. ":8080".
	WebSocketRate      float64       `yaml:"websocket_rate" validate:"gte=0"`                              // Max frames per second, 0 for unlimited.
	UDPEnabled         bool          `yaml:"udp_enabled"`                                                  // Send frames over UDP.
	UDPTargetAddress   string        `yaml:"udp_target_address" validate:"required_if=UDPEnabled true"`    // e.g. "127.0.0.1:9090".
	UDPSendInterval    time.Duration `yaml:"udp_send_interval" validate:"gte=0"`                           // Interval between frames.
	UDPMaxPayloadBytes int           `yaml:"udp_max_payload_bytes" validate:"gte=64,lte=65000"`            // Datagram size cap.
}

// ExportConfig holds settings for saved images.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" validate:"required"`
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it looks for DefaultConfigFile in the working directory and falls back to built-in
// defaults. Environment overrides are applied last, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints and reports every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// applyEnvOverrides reads ENV_* variables over the loaded values. Malformed
// values are ignored.
func (cfg *Config) applyEnvOverrides() {
	boolVar := func(name string, dst *bool) {
		if val, ok := os.LookupEnv(name); ok {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
				applog.Debugf("Config: Overriding %s from env: %v", name, b)
			}
		}
	}
	stringVar := func(name string, dst *string) {
		if val, ok := os.LookupEnv(name); ok {
			*dst = val
			applog.Debugf("Config: Overriding %s from env: %s", name, val)
		}
	}

	boolVar("ENV_DEBUG", &cfg.Debug)
	stringVar("ENV_LOG_LEVEL", &cfg.LogLevel)
	stringVar("ENV_QUEUE_POLICY", &cfg.Pipeline.Policy)
	stringVar("ENV_RESULT_MODE", &cfg.Pipeline.Mode)
	stringVar("ENV_EXPORT_DIR", &cfg.Export.OutputDir)

	boolVar("ENV_WS_ENABLED", &cfg.Transport.WebSocketEnabled)
	stringVar("ENV_WS_ADDRESS", &cfg.Transport.WebSocketAddress)

	boolVar("ENV_UDP_ENABLED", &cfg.Transport.UDPEnabled)
	stringVar("ENV_UDP_TARGET_ADDRESS", &cfg.Transport.UDPTargetAddress)
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
			applog.Debugf("Config: Overriding ENV_UDP_SEND_INTERVAL from env: %s", dur)
		}
	}
}
