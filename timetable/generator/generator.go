package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opentransit/crewd/config"
	coreevents "github.com/opentransit/crewd/core/events"
	coremetrics "github.com/opentransit/crewd/core/metrics"
	coremodel "github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/infra/logger"
	"github.com/opentransit/crewd/internal/eventbus"
	"github.com/opentransit/crewd/timetable"
)

// Generator periodically emits synthetic timetables.
type Generator struct {
	cfg  config.FeedGeneratorConfig
	bus  eventbus.EventBus
	sink coremetrics.TimetableRecorder
	mgr  timetable.Manager
	log  logger.Logger
	rand *rand.Rand
	loc  *time.Location
	seq  int
}

var (
	timetablesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_generator_timetables_total",
		Help: "Total timetables emitted",
	}, []string{"scenario"})
	shiftsSum = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_generator_shifts_sum",
		Help: "Sum of emitted shifts",
	})
	lastEmit = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_generator_last_emit_timestamp_seconds",
		Help: "Last emission time",
	})
	emitErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_generator_emit_errors_total",
		Help: "Errors while emitting timetables",
	})
	intervalHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_generator_interval_seconds",
		Help:    "Interval between timetables",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(timetablesTotal, shiftsSum, lastEmit, emitErrors, intervalHist)
}

// New creates a new Generator.
func New(cfg config.FeedGeneratorConfig, mgr timetable.Manager, bus eventbus.EventBus, sink coremetrics.TimetableRecorder) *Generator {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.Local
	}
	return &Generator{
		cfg:  cfg,
		bus:  bus,
		sink: sink,
		mgr:  mgr,
		log:  logger.New("feed-generator"),
		rand: rand.New(rand.NewSource(cfg.Seed)),
		loc:  loc,
	}
}

// Start begins emitting timetables until context cancellation.
func (g *Generator) Start(ctx context.Context) {
	for {
		interval := g.randomInterval()
		intervalHist.Observe(interval.Seconds())
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		in := g.Generate(time.Now())
		if err := g.emit(ctx, in); err != nil {
			emitErrors.Inc()
			g.log.Errorf("emit: %v", err)
		}
	}
}

// Generate produces a new synthetic timetable at the given time.
func (g *Generator) Generate(now time.Time) coremodel.Instance {
	g.seq++
	n := g.randomInt(g.cfg.MinShifts, g.cfg.MaxShifts)
	name := fmt.Sprintf("gen-%s-%04d", now.In(g.loc).Format("20060102"), g.seq)
	shifts := make([]coremodel.Shift, 0, n)
	for i := 0; i < n; i++ {
		start := g.randomStart()
		end := start + g.randomInt(g.cfg.MinShiftMinutes, g.cfg.MaxShiftMinutes)
		if end > g.cfg.DayEndMin {
			end = g.cfg.DayEndMin
		}
		shifts = append(shifts, coremodel.Shift{ID: i + 1, Start: start, End: end})
	}
	return coremodel.Instance{Name: name, Shifts: shifts}.Sorted()
}

func (g *Generator) emit(ctx context.Context, in coremodel.Instance) error {
	g.log.Infof("timetable %s shifts=%d", in.Name, len(in.Shifts))
	if g.bus != nil {
		g.bus.Publish(coreevents.TimetableEvent{Instance: in, Source: "generator"})
	}
	if g.sink != nil {
		if err := g.sink.RecordTimetable(coremetrics.TimetableEvent{Instance: in, Time: time.Now()}); err != nil {
			return err
		}
	}
	timetablesTotal.WithLabelValues(g.cfg.Scenario).Inc()
	shiftsSum.Add(float64(len(in.Shifts)))
	lastEmit.Set(float64(time.Now().Unix()))
	if g.mgr != nil {
		if _, err := g.mgr.Schedule(ctx, in); err != nil {
			return fmt.Errorf("schedule %s: %w", in.Name, err)
		}
	}
	return nil
}

// randomStart draws a shift start minute. The peaks scenario concentrates
// starts around the morning and evening quarter points of the service day.
func (g *Generator) randomStart() int {
	latest := g.cfg.DayEndMin - g.cfg.MinShiftMinutes
	if latest < g.cfg.DayStartMin {
		latest = g.cfg.DayStartMin
	}
	if g.cfg.Scenario == "peaks" {
		span := g.cfg.DayEndMin - g.cfg.DayStartMin
		peak := g.cfg.DayStartMin + span/4
		if g.rand.Float64() < 0.5 {
			peak = g.cfg.DayStartMin + 3*span/4
		}
		start := peak + int((g.rand.Float64()*2-1)*float64(span)/8)
		if start < g.cfg.DayStartMin {
			start = g.cfg.DayStartMin
		}
		if start > latest {
			start = latest
		}
		return start
	}
	return g.randomInt(g.cfg.DayStartMin, latest)
}

func (g *Generator) randomInt(min, max int) int {
	if max <= min {
		return min
	}
	v := float64(min) + g.rand.Float64()*float64(max-min)
	j := 1 + (g.rand.Float64()*2-1)*g.cfg.JitterPct
	v *= j
	if v < float64(min) {
		v = float64(min)
	}
	if v > float64(max) {
		v = float64(max)
	}
	return int(v)
}

func (g *Generator) randomInterval() time.Duration {
	return time.Duration(g.randomInt(g.cfg.MinIntervalSeconds, g.cfg.MaxIntervalSeconds)) * time.Second
}
