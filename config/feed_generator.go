package config

import (
	"fmt"
	"time"
)

// FeedGeneratorConfig configures the internal timetable generator.
type FeedGeneratorConfig struct {
	Enabled            bool    `json:"enabled"`
	Scenario           string  `json:"scenario"`
	MinIntervalSeconds int     `json:"min_interval_seconds"`
	MaxIntervalSeconds int     `json:"max_interval_seconds"`
	MinShifts          int     `json:"min_shifts"`
	MaxShifts          int     `json:"max_shifts"`
	MinShiftMinutes    int     `json:"min_shift_minutes"`
	MaxShiftMinutes    int     `json:"max_shift_minutes"`
	DayStartMin        int     `json:"day_start_min"`
	DayEndMin          int     `json:"day_end_min"`
	JitterPct          float64 `json:"jitter_pct"`
	Seed               int64   `json:"seed"`
	TimeZone           string  `json:"time_zone"`
}

// SetDefaults applies fallback values for optional fields.
func (c *FeedGeneratorConfig) SetDefaults() {
	if c.MinIntervalSeconds <= 0 {
		c.MinIntervalSeconds = 120
	}
	if c.MaxIntervalSeconds <= 0 {
		c.MaxIntervalSeconds = 300
	}
	if c.MinShifts <= 0 {
		c.MinShifts = 20
	}
	if c.MaxShifts <= 0 {
		c.MaxShifts = 60
	}
	if c.MinShiftMinutes <= 0 {
		c.MinShiftMinutes = 60
	}
	if c.MaxShiftMinutes <= 0 {
		c.MaxShiftMinutes = 180
	}
	if c.DayStartMin <= 0 {
		c.DayStartMin = 300
	}
	if c.DayEndMin <= 0 {
		c.DayEndMin = 1380
	}
	if c.JitterPct == 0 {
		c.JitterPct = 0.15
	}
	if c.Scenario == "" {
		c.Scenario = "steady"
	}
	if c.TimeZone == "" {
		c.TimeZone = time.Local.String()
	}
}

// Validate checks the configuration ranges.
func (c FeedGeneratorConfig) Validate() error {
	if c.MinIntervalSeconds < 0 || c.MaxIntervalSeconds < 0 {
		return fmt.Errorf("interval seconds must be positive")
	}
	if c.MinIntervalSeconds > c.MaxIntervalSeconds {
		return fmt.Errorf("min_interval_seconds > max_interval_seconds")
	}
	if c.MinShifts > c.MaxShifts {
		return fmt.Errorf("min_shifts > max_shifts")
	}
	if c.MinShiftMinutes <= 0 || c.MaxShiftMinutes <= 0 {
		return fmt.Errorf("shift minutes must be >0")
	}
	if c.MinShiftMinutes > c.MaxShiftMinutes {
		return fmt.Errorf("min_shift_minutes > max_shift_minutes")
	}
	if c.DayStartMin >= c.DayEndMin {
		return fmt.Errorf("day_start_min >= day_end_min")
	}
	if c.Scenario != "steady" && c.Scenario != "peaks" && c.Scenario != "" {
		return fmt.Errorf("unknown scenario %s", c.Scenario)
	}
	return nil
}
