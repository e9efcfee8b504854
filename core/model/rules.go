package model

import "fmt"

// Rules bundles the labor rules a duty must respect. All values are minutes.
type Rules struct {
	// MaxDriving caps the total driving time of a duty.
	MaxDriving int `json:"max_driving_min"`
	// MaxNoBreakDriving caps the driving time accumulated since the last
	// break.
	MaxNoBreakDriving int `json:"max_no_break_driving_min"`
	// MinBreak is the gap length from which a pause counts as a break and
	// resets the accumulated driving time.
	MinBreak int `json:"min_break_min"`
	// MinGap is the minimum delay between two consecutive shifts, covering
	// passenger boarding and alighting.
	MinGap int `json:"min_gap_min"`
	// MaxWorking caps the working time (span) of a duty.
	MaxWorking int `json:"max_working_min"`
	// MinWorking is the minimum working time of a non-empty duty.
	MinWorking int `json:"min_working_min"`
	// Setup is the preparation time before the first shift of a duty.
	Setup int `json:"setup_min"`
	// Cleanup is the time after the last shift of a duty.
	Cleanup int `json:"cleanup_min"`
}

// DefaultRules returns the standard contract values: 9h driving, 4h driving
// between 30min breaks, 2min between shifts, 12h max span, 6.5h min span,
// 10min setup and 15min cleanup.
func DefaultRules() Rules {
	return Rules{
		MaxDriving:        540,
		MaxNoBreakDriving: 240,
		MinBreak:          30,
		MinGap:            2,
		MaxWorking:        720,
		MinWorking:        390,
		Setup:             10,
		Cleanup:           15,
	}
}

// Validate checks that the rule values are coherent.
func (r Rules) Validate() error {
	if r.MaxDriving <= 0 {
		return fmt.Errorf("max_driving_min must be positive")
	}
	if r.MaxNoBreakDriving <= 0 || r.MaxNoBreakDriving > r.MaxDriving {
		return fmt.Errorf("max_no_break_driving_min must be in (0, max_driving_min]")
	}
	if r.MinBreak <= r.MinGap {
		return fmt.Errorf("min_break_min must exceed min_gap_min")
	}
	if r.MinGap < 0 {
		return fmt.Errorf("min_gap_min must not be negative")
	}
	if r.MaxWorking <= 0 {
		return fmt.Errorf("max_working_min must be positive")
	}
	if r.MinWorking < 0 || r.MinWorking > r.MaxWorking {
		return fmt.Errorf("min_working_min must be in [0, max_working_min]")
	}
	if r.Setup < 0 || r.Cleanup < 0 {
		return fmt.Errorf("setup_min and cleanup_min must not be negative")
	}
	return nil
}
