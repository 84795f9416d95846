// SPDX-License-Identifier: MIT
package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"freqlab/internal/edit"
	applog "freqlab/internal/log"
	"freqlab/internal/pipeline"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "freqlab.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Editor.RingTolerance != DefaultRingTolerance {
		t.Errorf("ring tolerance = %v, want %v", cfg.Editor.RingTolerance, DefaultRingTolerance)
	}
	if cfg.Pipeline.Policy != "fifo" || cfg.Pipeline.Mode != "magnitude" {
		t.Errorf("unexpected pipeline defaults: %+v", cfg.Pipeline)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: warn
editor:
  tool: ring
  radius: 2.5
  phase: 90
  grid_u: 3
pipeline:
  policy: latest
  mode: real
  scaling: normalize
transport:
  udp_enabled: true
  udp_send_interval: 50ms
export:
  output_dir: /tmp/out
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Editor.Radius != 2.5 || cfg.Editor.GridU != 3 || cfg.Editor.GridV != DefaultGridV {
		t.Errorf("unexpected editor section: %+v", cfg.Editor)
	}
	if cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("udp interval = %v, want 50ms", cfg.Transport.UDPSendInterval)
	}
	if cfg.Transport.UDPTargetAddress != DefaultUDPTargetAddress {
		t.Errorf("udp target = %q, want default", cfg.Transport.UDPTargetAddress)
	}

	if got := cfg.Tool(); got != edit.Ring {
		t.Errorf("Tool() = %v, want ring", got)
	}
	if got := cfg.EditParams().Phase; math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("phase = %v rad, want pi/2", got)
	}
	pc := cfg.PipelineConfig()
	if pc.Policy != pipeline.Latest || pc.Mode != pipeline.Real {
		t.Errorf("PipelineConfig() = %+v", pc)
	}
	if cfg.Scaling() != pipeline.Normalize {
		t.Errorf("Scaling() = %v, want normalize", cfg.Scaling())
	}
	if cfg.Level() != applog.LevelWarn {
		t.Errorf("Level() = %v, want WARN", cfg.Level())
	}
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad policy", "pipeline:\n  policy: lifo\n", "Policy"},
		{"bad mode", "pipeline:\n  mode: phase\n", "Mode"},
		{"negative radius", "editor:\n  radius: -1\n", "Radius"},
		{"zero tolerance", "editor:\n  ring_tolerance: 0\n", "RingTolerance"},
		{"unknown tool", "editor:\n  tool: lasso\n", "Tool"},
		{"udp without target", "transport:\n  udp_enabled: true\n  udp_target_address: \"\"\n", "UDPTargetAddress"},
		{"empty output dir", "export:\n  output_dir: \"\"\n", "OutputDir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeTempConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("ENV_QUEUE_POLICY", "latest")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "10ms")
	t.Setenv("ENV_WS_ENABLED", "not-a-bool")

	cfg, err := LoadConfig(writeTempConfig(t, "debug: false\n"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.Debug || cfg.Level() != applog.LevelDebug {
		t.Errorf("ENV_DEBUG not applied: %+v", cfg)
	}
	if cfg.Pipeline.Policy != "latest" {
		t.Errorf("policy = %q, want latest", cfg.Pipeline.Policy)
	}
	if cfg.Transport.UDPSendInterval != 10*time.Millisecond {
		t.Errorf("udp interval = %v, want 10ms", cfg.Transport.UDPSendInterval)
	}
	if cfg.Transport.WebSocketEnabled {
		t.Error("malformed ENV_WS_ENABLED should be ignored")
	}
}
