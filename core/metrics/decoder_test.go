package metrics_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	metrics "github.com/opentransit/crewd/core/metrics"
	_ "github.com/opentransit/crewd/infra/metrics"
)

// Sink configs arrive embedded in the service YAML; the raw conf map is
// handed to the sink factory untouched.
func TestConfigDecodeYAML(t *testing.T) {
	data := `sinks:
  - type: nop
  - type: prometheus
    conf:
      prometheus_port: 9090
`
	var cfg metrics.Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(cfg.Sinks) != 2 {
		t.Fatalf("sinks = %d", len(cfg.Sinks))
	}
	if cfg.Sinks[1].Type != "prometheus" {
		t.Fatalf("second sink = %q", cfg.Sinks[1].Type)
	}
	if port, ok := cfg.Sinks[1].Conf["prometheus_port"]; !ok || port != 9090 {
		t.Fatalf("conf passthrough = %v", cfg.Sinks[1].Conf)
	}
}

func TestConfigDecodeJSONUnknownSink(t *testing.T) {
	var cfg metrics.Config
	if err := json.Unmarshal([]byte(`{"sinks":[{"type":"statsd"}]}`), &cfg); err != nil {
		t.Fatalf("json: %v", err)
	}
	if _, err := metrics.NewMetricsSink(cfg.Sinks); err == nil {
		t.Fatalf("expected unknown sink error")
	}
}
