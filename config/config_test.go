package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "crewd"
  username: "user"
  password: "pass"
  ack_topic: "crew/assignments/ack"
  use_tls: false
rules:
  max_driving_min: 540
  max_no_break_driving_min: 240
  min_break_min: 30
  min_gap_min: 2
  max_working_min: 720
  min_working_min: 390
  setup_min: 10
  cleanup_min: 15
solver:
  ack_timeout_seconds: 3
  set_cover_first: true
metrics:
  sinks:
    - type: "nop"
feed:
  mode: "mock"
  mock:
    address: ":9090"
  client:
    poll_interval_seconds: 60
api:
  enabled: true
  token: "tok"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "crewd"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"ack_topic", cfg.MQTT.AckTopic, "crew/assignments/ack"},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"max_driving_min", cfg.Rules.MaxDriving, 540},
		{"min_working_min", cfg.Rules.MinWorking, 390},
		{"ack_timeout_seconds", cfg.Solver.AckTimeoutSeconds, 3},
		{"set_cover_first", cfg.Solver.SetCoverFirst, true},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"feed.mode", cfg.Feed.Mode, "mock"},
		{"feed.mock.address", cfg.Feed.Mock.Address, ":9090"},
		{"feed.client.poll_interval_seconds", cfg.Feed.Client.PollIntervalSeconds, 60},
		{"logging.backend", cfg.Logging.Backend, "jsonl"},
		{"logging.path", cfg.Logging.Path, "solve.log"},
		{"api.addr", cfg.API.Addr, ":8080"},
		{"api.token", cfg.API.Token, "tok"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaultRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Rules.MaxDriving != 540 || cfg.Rules.MinBreak != 30 {
		t.Fatalf("default rules not applied: %+v", cfg.Rules)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
