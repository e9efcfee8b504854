package logger

// Logger exposes leveled logging used across the scheduling core.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a debug message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger is the subset of Logger used by components that only emit
// structured debug records, such as the solver trace hooks.
type StructuredLogger interface {
	Debugw(msg string, fields map[string]any)
}
