package plugins

import (
	"github.com/opentransit/crewd/config"
	"github.com/opentransit/crewd/core/metrics/kpi"
	"github.com/opentransit/crewd/core/prediction"
	solverlog "github.com/opentransit/crewd/core/solver/logging"
)

// LogStoreFactory builds a solve log store from the logging configuration.
type LogStoreFactory func(cfg config.LoggingConfig) (solverlog.LogStore, error)

// KPIStoreFactory builds a daily KPI store from raw config.
type KPIStoreFactory func(conf map[string]any) (kpi.Store, error)

// PredictionFactory builds a driver availability engine from raw config.
type PredictionFactory func(conf map[string]any) (prediction.AvailabilityEngine, error)

var (
	LogStores   = map[string]LogStoreFactory{}
	KPIStores   = map[string]KPIStoreFactory{}
	Predictions = map[string]PredictionFactory{}
)

func RegisterLogStore(name string, f LogStoreFactory)     { LogStores[name] = f }
func RegisterKPIStore(name string, f KPIStoreFactory)     { KPIStores[name] = f }
func RegisterPrediction(name string, f PredictionFactory) { Predictions[name] = f }
