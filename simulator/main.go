package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/infra/metrics"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strat := RandomAck{Delay: cfg.AckLatency, DropRate: cfg.DropRate}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if cfg.InfluxURL != "" {
		sink = metrics.NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	}

	var tmpl map[string]TerminalTemplate
	var err error
	if cfg.TemplateFile != "" {
		tmpl, err = readTemplateFile(cfg.TemplateFile)
		if err != nil {
			log.Fatalf("template file: %v", err)
		}
	}

	size := cfg.FleetSize
	if size <= 0 {
		size = cfg.Count
	}
	fleetCfg := FleetConfig{
		Size:     size,
		SparePct: cfg.SparePct,
		Depots:   splitDepots(cfg.Depots),
	}
	terminals := GenerateFleet(fleetCfg, tmpl)
	runTerminals(ctx, terminals, cfg, strat, sink)
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.IntVar(&cfg.Count, "count", 1, "number of terminals")
	flag.IntVar(&cfg.FleetSize, "fleet-size", 0, "auto generated fleet size")
	flag.DurationVar(&cfg.AckLatency, "ack-latency", 0, "ack latency")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "ack drop rate")
	flag.Float64Var(&cfg.SparePct, "spare-pct", 0, "ratio of spare drivers")
	flag.StringVar(&cfg.Depots, "depots", "", "comma separated depot names")
	flag.DurationVar(&cfg.StatusInterval, "status-interval", time.Second*30, "status publish interval")
	flag.StringVar(&cfg.TemplateFile, "template-file", "", "terminal template overrides")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.StringVar(&cfg.InfluxURL, "influx-url", "", "InfluxDB URL")
	flag.StringVar(&cfg.InfluxToken, "influx-token", "", "InfluxDB token")
	flag.StringVar(&cfg.InfluxOrg, "influx-org", "", "InfluxDB organization")
	flag.StringVar(&cfg.InfluxBucket, "influx-bucket", "", "InfluxDB bucket")
	flag.Parse()
	return cfg
}

func splitDepots(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readTemplateFile(path string) (map[string]TerminalTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]TerminalTemplate
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func runTerminals(ctx context.Context, terminals []SimulatedTerminal, cfg Config, strat AckStrategy, sink coremetrics.MetricsSink) {
	var wg sync.WaitGroup
	for i := range terminals {
		t := &terminals[i]
		t.Broker = cfg.Broker
		t.Strategy = strat
		t.StatusInterval = cfg.StatusInterval
		t.Metrics = sink
		wg.Add(1)
		go func(t *SimulatedTerminal) {
			defer wg.Done()
			if err := t.Run(ctx); err != nil {
				log.Printf("%s: %v", t.ID, err)
			}
		}(t)
	}
	wg.Wait()
}
