package instances

import (
	"math/rand"
	"sort"

	"github.com/opentransit/crewd/core/model"
)

// GenConfig holds parameters for synthetic shift table generation.
type GenConfig struct {
	Name   string
	Tracks int
	Seed   int64
	Rules  model.Rules
}

// Generate builds a shift table from Tracks per-driver tracks. Each track is
// a chain of shifts a single driver could legally work, so the resulting
// instance always admits a full cover. Shifts are renumbered by start time.
func Generate(cfg GenConfig) model.Instance {
	rng := rand.New(rand.NewSource(cfg.Seed))
	r := cfg.Rules
	if r.MaxDriving == 0 {
		r = model.DefaultRules()
	}

	var shifts []model.Shift
	for t := 0; t < cfg.Tracks; t++ {
		shifts = append(shifts, genTrack(rng, r)...)
	}
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].Start != shifts[j].Start {
			return shifts[i].Start < shifts[j].Start
		}
		return shifts[i].End < shifts[j].End
	})
	for i := range shifts {
		shifts[i].ID = i
	}
	return model.Instance{Name: cfg.Name, Shifts: shifts}
}

// genTrack emits one driver's day: shifts with short hops, a break once the
// no-break budget runs low, stopping before any driving or span cap.
func genTrack(rng *rand.Rand, r model.Rules) []model.Shift {
	// Service day starts between 05:00 and 15:00.
	start := 300 + rng.Intn(600)
	first := start
	driving := 0
	noBreak := 0
	var track []model.Shift
	for {
		dur := 45 + rng.Intn(90) // 45..134 minutes
		if driving+dur > r.MaxDriving {
			break
		}
		end := start + dur
		span := end + r.Cleanup - (first - r.Setup)
		if span > r.MaxWorking {
			break
		}
		track = append(track, model.Shift{Start: start, End: end})
		driving += dur
		noBreak += dur
		// Leave at least the minimum working span before stopping.
		if len(track) >= 3 && span >= r.MinWorking && rng.Intn(3) == 0 {
			break
		}
		gap := r.MinGap + rng.Intn(12)
		if noBreak+135 > r.MaxNoBreakDriving {
			gap = r.MinBreak + rng.Intn(25)
		}
		if gap >= r.MinBreak {
			noBreak = 0
		}
		start = end + gap
	}
	return track
}

// Medium returns a deterministic 12 track weekday table.
func Medium() model.Instance {
	return Generate(GenConfig{Name: "medium", Tracks: 12, Seed: 7})
}

// Large returns a deterministic 30 track weekday table.
func Large() model.Instance {
	return Generate(GenConfig{Name: "large", Tracks: 30, Seed: 23})
}
