// Package infra holds the adapters that touch the outside world: the MQTT
// fleet link, metrics exporters, SQLite stores and the Sentry monitor.
// Everything here depends on core interfaces, never the other way around.
package infra
