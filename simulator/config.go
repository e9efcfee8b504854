package main

import (
	"fmt"
	"time"
)

// Config holds parameters for the terminal simulator.
type Config struct {
	Broker         string
	Count          int
	FleetSize      int
	AckLatency     time.Duration
	DropRate       float64
	SparePct       float64
	Depots         string
	StatusInterval time.Duration
	TemplateFile   string
	Verbose        bool
	InfluxURL      string
	InfluxToken    string
	InfluxOrg      string
	InfluxBucket   string
}

// Validate checks flag combinations.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker required")
	}
	if c.Count <= 0 && c.FleetSize <= 0 {
		return fmt.Errorf("count or fleet-size must be positive")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop-rate must be within [0,1]")
	}
	if c.SparePct < 0 || c.SparePct > 1 {
		return fmt.Errorf("spare-pct must be within [0,1]")
	}
	return nil
}
