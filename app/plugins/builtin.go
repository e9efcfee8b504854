package plugins

import (
	"github.com/opentransit/crewd/config"
	"github.com/opentransit/crewd/core/factory"
	"github.com/opentransit/crewd/core/metrics/kpi"
	"github.com/opentransit/crewd/core/prediction"
	solverlog "github.com/opentransit/crewd/core/solver/logging"
	infrakpi "github.com/opentransit/crewd/infra/kpi"
)

func init() {
	RegisterLogStore("jsonl", func(cfg config.LoggingConfig) (solverlog.LogStore, error) {
		if cfg.MaxSizeMB > 0 {
			return solverlog.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return solverlog.NewJSONLStore(cfg.Path)
	})
	RegisterLogStore("sqlite", func(cfg config.LoggingConfig) (solverlog.LogStore, error) {
		return solverlog.NewSQLiteStore(cfg.Path)
	})

	RegisterKPIStore("memory", func(_ map[string]any) (kpi.Store, error) {
		return kpi.NewMemoryStore(), nil
	})
	RegisterKPIStore("sqlite", func(conf map[string]any) (kpi.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "kpi.db"
		}
		return infrakpi.NewSQLiteStore(c.Path)
	})

	RegisterPrediction("mock", func(conf map[string]any) (prediction.AvailabilityEngine, error) {
		var c struct {
			Availability map[string]float64 `json:"availability"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return prediction.MockAvailabilityEngine{Availability: c.Availability}, nil
	})
}
