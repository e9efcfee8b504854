package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentransit/crewd/api/drivers"
	"github.com/opentransit/crewd/api/rosters"
	"github.com/opentransit/crewd/app/plugins"
	"github.com/opentransit/crewd/config"
	"github.com/opentransit/crewd/core/driverstatus"
	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/metrics/kpi"
	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/core/monitoring"
	"github.com/opentransit/crewd/core/prediction"
	"github.com/opentransit/crewd/core/solver"
	solverlog "github.com/opentransit/crewd/core/solver/logging"
	"github.com/opentransit/crewd/infra/logger"
	"github.com/opentransit/crewd/infra/metrics"
	inframon "github.com/opentransit/crewd/infra/monitoring"
	"github.com/opentransit/crewd/infra/mqtt"
	"github.com/opentransit/crewd/infra/telemetry"
	"github.com/opentransit/crewd/internal/eventbus"
	"github.com/opentransit/crewd/timetable"
	"github.com/opentransit/crewd/timetable/generator"
)

// Service orchestrates the solve manager, the timetable feed and the APIs.
type Service struct {
	Manager   *solver.SolveManager
	Connector timetable.Connector

	generator  *generator.Generator
	telemetry  *telemetry.Manager
	status     driverstatus.Store
	logStore   solverlog.LogStore
	kpiStore   kpi.Store
	forecast   prediction.AvailabilityEngine
	sink       coremetrics.MetricsSink
	bus        eventbus.EventBus
	log        logger.Logger
	apiCfg     config.APIConfig
	promAddr   string
	timetables chan model.Instance
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	if cfg.Sentry.DSN != "" {
		mon, err := inframon.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		monitoring.Init(mon)
	}

	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	var kpiStore kpi.Store
	if cfg.Components.KPIStore.Type != "" {
		f, ok := plugins.KPIStores[cfg.Components.KPIStore.Type]
		if !ok {
			return nil, fmt.Errorf("unknown kpi store %s", cfg.Components.KPIStore.Type)
		}
		kpiStore, err = f(cfg.Components.KPIStore.Conf)
		if err != nil {
			return nil, fmt.Errorf("kpi store: %w", err)
		}
		sink = coremetrics.NewMultiSink(sink, metrics.NewKpiSink(kpiStore, nil))
	}

	bus := eventbus.New()
	disc, err := mqtt.NewPahoFleetDiscovery(cfg.MQTT, "crew/fleet/discovery", "crew/fleet/response/+")
	if err != nil {
		return nil, fmt.Errorf("fleet discovery: %w", err)
	}

	lim := solver.DefaultColumnLimits()
	if cfg.Solver.MaxColumns > 0 {
		lim.MaxColumns = cfg.Solver.MaxColumns
	}
	if cfg.Solver.MaxSuccessors > 0 {
		lim.MaxSuccessors = cfg.Solver.MaxSuccessors
	}
	ackTimeout := time.Duration(cfg.Solver.AckTimeoutSeconds) * time.Second
	manager, err := solver.NewSolveManager(
		cfg.Rules,
		solver.NewSetCoverSolver(lim),
		solver.NewGreedySolver(),
		client,
		ackTimeout,
		sink,
		bus,
		disc,
		logg,
	)
	if err != nil {
		return nil, fmt.Errorf("solve manager: %w", err)
	}
	manager.SetSetCoverFirst(cfg.Solver.SetCoverFirst)
	manager.SetSearchPasses(cfg.Solver.SearchPasses)

	lsf, ok := plugins.LogStores[cfg.Logging.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown log store %s", cfg.Logging.Backend)
	}
	logStore, err := lsf(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("log store: %w", err)
	}
	manager.SetLogStore(logStore)

	status := driverstatus.NewMemoryStore()
	manager.SetStatusStore(status)

	svc := &Service{
		Manager:    manager,
		status:     status,
		logStore:   logStore,
		kpiStore:   kpiStore,
		sink:       sink,
		bus:        bus,
		log:        logg,
		apiCfg:     cfg.API,
		promAddr:   promAddr(cfg.Metrics),
		timetables: make(chan model.Instance, 1),
	}

	var trec coremetrics.TimetableRecorder
	if tr, ok := sink.(coremetrics.TimetableRecorder); ok {
		trec = tr
	}
	svc.Connector = timetable.NewConnector(cfg.Feed, manager, trec)
	if cfg.FeedGenerator.Enabled {
		svc.generator = generator.New(cfg.FeedGenerator, manager, bus, trec)
	}
	if cfg.Telemetry.Enabled {
		tel, err := telemetry.NewManager(cfg.MQTT, cfg.Telemetry, status, disc)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		svc.telemetry = tel
	}
	if cfg.Components.Prediction.Type != "" {
		pf, ok := plugins.Predictions[cfg.Components.Prediction.Type]
		if !ok {
			return nil, fmt.Errorf("unknown prediction engine %s", cfg.Components.Prediction.Type)
		}
		svc.forecast, err = pf(cfg.Components.Prediction.Conf)
		if err != nil {
			return nil, fmt.Errorf("prediction engine: %w", err)
		}
	}
	return svc, nil
}

// promAddr returns the listen address of the Prometheus endpoint, or empty
// when no prometheus sink is configured.
func promAddr(cfg coremetrics.Config) string {
	for _, mc := range cfg.Sinks {
		if mc.Type != "prometheus" {
			continue
		}
		if p, ok := mc.Conf["prometheus_port"].(string); ok && p != "" {
			return p
		}
		return ":9090"
	}
	return ""
}

// Submit queues a timetable for scheduling by the Run loop.
func (s *Service) Submit(in model.Instance) {
	s.timetables <- in
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.Manager.Run(ctx, s.timetables)
	go func() {
		defer monitoring.Recover()
		if err := s.Connector.Start(ctx); err != nil {
			s.log.Errorf("feed connector: %v", err)
		}
	}()
	if s.generator != nil {
		go func() {
			defer monitoring.Recover()
			s.generator.Start(ctx)
		}()
	}
	if s.telemetry != nil {
		go s.telemetry.Start(ctx)
	}
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.apiCfg.Enabled {
		go func() {
			if err := s.serveAPI(ctx); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

func (s *Service) serveAPI(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/api/rosters/logs", rosters.NewLogHandler(s.logStore, s.apiCfg.Token))
	mux.Handle("/api/rosters/latest", rosters.NewLatestHandler(s.logStore, s.apiCfg.Token))
	if s.kpiStore != nil {
		mux.Handle("/api/rosters/", rosters.NewKPIHandler(s.kpiStore))
	}
	mux.Handle("/api/drivers/status", drivers.NewStatusHandler(s.status, s.forecast))
	srv := &http.Server{Addr: s.apiCfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	err := s.Manager.Close()
	if c, ok := s.kpiStore.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	monitoring.Flush(2 * time.Second)
	return err
}
