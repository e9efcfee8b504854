package logger

import corelogger "github.com/opentransit/crewd/core/logger"

// Logger mirrors the core logger interface so callers can depend on the
// infra package alone.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns the zerolog-backed Logger for the given component. Output
// format follows APP_ENV, the level follows CREW_LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
