package monitoring

import (
	"sync/atomic"
	"time"
)

// Monitor receives errors and panics worth reporting to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// CapturePanic records a recovered panic value. The caller re-raises it
	// afterwards, so implementations should flush before returning.
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

// NopMonitor discards everything. It is the default until Init is called.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var current atomic.Pointer[Monitor]

func init() { Init(NopMonitor{}) }

// Init swaps in the monitor used by the package-level helpers. A nil monitor
// leaves the previous one in place.
func Init(m Monitor) {
	if m != nil {
		current.Store(&m)
	}
}

func active() Monitor { return *current.Load() }

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	active().CaptureException(err, tags)
}

// Recover reports a panic unwinding the calling goroutine, then re-raises it.
// recover only observes the panic from the deferred frame itself, so this
// helper must be deferred directly: defer monitoring.Recover().
func Recover() {
	if v := recover(); v != nil {
		active().CapturePanic(v)
		panic(v)
	}
}

// Flush blocks until buffered events are delivered or the timeout elapses.
func Flush(timeout time.Duration) {
	active().Flush(timeout)
}
