package config

import "time"

// SentryConfig wires the crash reporter. Leaving the DSN empty disables
// reporting and the service falls back to the no-op monitor.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
	SampleRate       float64 `json:"sample_rate"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	// FlushSeconds bounds the event drain when a panic is reported and on
	// shutdown. Zero means 2 seconds.
	FlushSeconds int `json:"flush_seconds"`
}

// Enabled reports whether a DSN is configured.
func (c SentryConfig) Enabled() bool { return c.DSN != "" }

// FlushTimeout returns FlushSeconds as a duration.
func (c SentryConfig) FlushTimeout() time.Duration {
	if c.FlushSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.FlushSeconds) * time.Second
}
