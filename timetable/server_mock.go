package timetable

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opentransit/crewd/config"
	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/infra/logger"
)

// ServerMock exposes HTTP endpoints for injecting timetables locally.
type ServerMock struct {
	addr   string
	mgr    Manager
	sink   coremetrics.TimetableRecorder
	log    logger.Logger
	srv    *http.Server
	total  *prometheus.CounterVec
	failed prometheus.Counter
}

// NewServerMock creates a new mock server using the default Prometheus
// registerer.
func NewServerMock(cfg config.FeedMockConfig, m Manager, sink coremetrics.TimetableRecorder) *ServerMock {
	return NewServerMockWithRegistry(cfg, m, sink, prometheus.DefaultRegisterer)
}

// NewServerMockWithRegistry creates a new mock server and registers metrics on
// the provided registerer. If reg is nil the default registerer is used.
func NewServerMockWithRegistry(cfg config.FeedMockConfig, m Manager, sink coremetrics.TimetableRecorder, reg prometheus.Registerer) *ServerMock {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	logger := logger.New("feed-server-mock")

	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_timetables_total",
		Help: "Total received timetables",
	}, []string{"instance"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_timetables_failed",
		Help: "Rejected timetable payloads",
	})

	if err := reg.Register(total); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				total = exist
			} else {
				logger.Errorf("existing collector for feed_timetables_total has wrong type %T", are.ExistingCollector)
			}
		}
	}
	if err := reg.Register(failed); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if exist, ok := are.ExistingCollector.(prometheus.Counter); ok {
				failed = exist
			} else {
				logger.Errorf("existing collector for feed_timetables_failed has wrong type %T", are.ExistingCollector)
			}
		}
	}

	return &ServerMock{
		addr:   cfg.Address,
		mgr:    m,
		sink:   sink,
		log:    logger,
		total:  total,
		failed: failed,
	}
}

func (s *ServerMock) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("pong")); err != nil {
			s.log.Errorf("write pong: %v", err)
		}
	})
	mux.HandleFunc("/feed/timetable", s.handleTimetable)
	return mux
}

func (s *ServerMock) handleTimetable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var tt Timetable
	if err := json.NewDecoder(r.Body).Decode(&tt); err != nil {
		s.failed.Inc()
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	in, err := tt.ToInstance()
	if err != nil {
		s.failed.Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.total.WithLabelValues(in.Name).Inc()
	if s.sink != nil {
		if err := s.sink.RecordTimetable(coremetrics.TimetableEvent{Instance: in, Time: time.Now()}); err != nil {
			s.log.Errorf("record timetable: %v", err)
		}
	}
	s.log.Infof("scheduling timetable %s", in.Name)
	res, err := s.mgr.Schedule(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.log.Errorf("write result: %v", err)
	}
}

// Addr returns the listening address once Start has been called.
func (s *ServerMock) Addr() string { return s.addr }

// Start runs the HTTP server until the context is canceled.
func (s *ServerMock) Start(ctx context.Context) error {
	mux := s.routes()
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
		cancel()
	}()
	s.log.Infof("feed mock server listening on %s", s.addr)
	err = s.srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
