// Package metrics defines interfaces and helpers for collecting scheduling
// metrics. Sinks like PromSink and InfluxSink record events such as solved
// rosters or driver acknowledgments and can be combined with NewMultiSink.
// The factory helpers return a MultiSink automatically when multiple sinks
// are configured.
package metrics
