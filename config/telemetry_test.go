package config

import (
	"testing"
	"time"
)

func TestTelemetryConfigDefaults(t *testing.T) {
	var cfg TelemetryConfig
	if got := cfg.Interval(); got != 10*time.Second {
		t.Fatalf("default interval = %v", got)
	}
	if got := cfg.Timeout(); got != 3*time.Second {
		t.Fatalf("default timeout = %v", got)
	}
	// Negative values fall back to the defaults too.
	cfg = TelemetryConfig{IntervalSeconds: -1, TimeoutSeconds: -5}
	if cfg.Interval() != 10*time.Second || cfg.Timeout() != 3*time.Second {
		t.Fatalf("negative values not defaulted: %v %v", cfg.Interval(), cfg.Timeout())
	}
}

func TestTelemetryConfigValues(t *testing.T) {
	cfg := TelemetryConfig{IntervalSeconds: 30, TimeoutSeconds: 2}
	if got := cfg.Interval(); got != 30*time.Second {
		t.Fatalf("interval = %v", got)
	}
	if got := cfg.Timeout(); got != 2*time.Second {
		t.Fatalf("timeout = %v", got)
	}
}
