package config

import "fmt"

// Log store backends.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// LoggingConfig selects where solve runs are journaled and when the journal
// rotates. Rotation only applies to the jsonl backend.
type LoggingConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
	// MaxSizeMB triggers rotation once the file grows past this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups caps how many rotated files are kept.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays drops rotated files older than this.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults fills the backend and path when left empty.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendJSONL
	}
	if c.Path == "" {
		c.Path = "solve.log"
	}
}

// Validate rejects unknown backends and empty paths.
func (c LoggingConfig) Validate() error {
	switch c.Backend {
	case BackendJSONL, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
