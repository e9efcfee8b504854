package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/opentransit/crewd/config"
	coremon "github.com/opentransit/crewd/core/monitoring"
)

// NewSentryMonitor builds a Monitor backed by Sentry. Without a DSN it
// returns the no-op monitor so callers never branch on reporting being on.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if !cfg.Enabled() {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		SampleRate:       cfg.SampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return &sentryMonitor{flush: cfg.FlushTimeout()}, nil
}

type sentryMonitor struct {
	flush time.Duration
}

// CaptureException forwards err on an isolated scope so concurrent captures
// never leak tags into each other.
func (m *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// CapturePanic records the panic value and drains the event before the
// caller re-raises, otherwise the report is lost when the process dies.
func (m *sentryMonitor) CapturePanic(v any) {
	sentry.CurrentHub().Recover(v)
	sentry.Flush(m.flush)
}

func (m *sentryMonitor) Flush(timeout time.Duration) {
	if timeout <= 0 {
		timeout = m.flush
	}
	sentry.Flush(timeout)
}
