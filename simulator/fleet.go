package main

import (
	"fmt"
	"math/rand"
	"time"
)

var fleetRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// FleetConfig holds parameters for bulk fleet generation.
type FleetConfig struct {
	Size     int
	SparePct float64
	Depots   []string
}

// TerminalTemplate allows overriding generated terminals.
type TerminalTemplate struct {
	Depot string `json:"depot"`
	Line  string `json:"line"`
	Spare *bool  `json:"spare"`
}

// GenerateFleet creates Size terminals with IDs drv0001..drvNNNN. Terminals
// are marked spare according to SparePct and spread over the depots round
// robin.
func GenerateFleet(cfg FleetConfig, tmpl map[string]TerminalTemplate) []SimulatedTerminal {
	if cfg.Size <= 0 {
		return nil
	}
	ts := make([]SimulatedTerminal, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		id := fmt.Sprintf("drv%04d", i+1)
		spare := cfg.SparePct > 0 && fleetRng.Float64() < cfg.SparePct
		depot := ""
		if len(cfg.Depots) > 0 {
			depot = cfg.Depots[i%len(cfg.Depots)]
		}
		line := ""
		if t, ok := tmpl[id]; ok {
			if t.Depot != "" {
				depot = t.Depot
			}
			if t.Line != "" {
				line = t.Line
			}
			if t.Spare != nil {
				spare = *t.Spare
			}
		}
		ts[i] = SimulatedTerminal{
			ID:    id,
			Depot: depot,
			Line:  line,
			Spare: spare,
			ackCh: make(chan pendingAck, 50),
		}
	}
	return ts
}
