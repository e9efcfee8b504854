package metrics_test

import (
	"testing"

	"github.com/opentransit/crewd/core/factory"
	metrics "github.com/opentransit/crewd/core/metrics"
	_ "github.com/opentransit/crewd/infra/metrics"
)

func TestNewMetricsSink(t *testing.T) {
	// No sinks configured: metrics go nowhere but the calls stay valid.
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("empty config sink = %T", s)
	}

	// A single entry comes back bare.
	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("single: %v", err)
	}
	if _, ok := s.(*metrics.MultiSink); ok {
		t.Fatalf("single sink wrapped in MultiSink")
	}

	// Several entries fan out.
	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	if err != nil {
		t.Fatalf("multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("multi sink = %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("fanout = %d", len(m.Sinks))
	}
}

func TestNewMetricsSinkUnknownType(t *testing.T) {
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "graphite"}}); err == nil {
		t.Fatal("expected unknown type error")
	}
}
