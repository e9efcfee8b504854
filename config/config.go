package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/core/solver"
	"github.com/opentransit/crewd/infra/mqtt"
)

type Config struct {
	MQTT          mqtt.Config         `json:"mqtt"`
	Rules         model.Rules         `json:"rules"`
	Solver        solver.Config       `json:"solver"`
	Metrics       metrics.Config      `json:"metrics"`
	Logging       LoggingConfig       `json:"logging"`
	Feed          FeedConfig          `json:"feed"`
	FeedGenerator FeedGeneratorConfig `json:"feedGenerator"`
	Sentry        SentryConfig        `json:"sentry"`
	Telemetry     TelemetryConfig     `json:"telemetry"`
	API           APIConfig           `json:"api"`
	Components    ComponentsConfig    `json:"components"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CREW_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "crew_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if cfg.Rules == (model.Rules{}) {
		cfg.Rules = model.DefaultRules()
	}
	cfg.Logging.SetDefaults()
	cfg.FeedGenerator.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Feed.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.FeedGenerator.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
