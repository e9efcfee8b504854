package telemetry

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opentransit/crewd/config"
	"github.com/opentransit/crewd/core/driverstatus"
	"github.com/opentransit/crewd/core/solver"
	"github.com/opentransit/crewd/infra/logger"
	infmqtt "github.com/opentransit/crewd/infra/mqtt"
)

// Manager collects driver terminal status either via push or polling.
type Manager struct {
	cfg   config.TelemetryConfig
	cli   paho.Client
	store driverstatus.Store
	log   logger.Logger
	disc  solver.FleetDiscovery

	respCh chan statusMessage

	pollReq     prometheus.Counter
	pollResp    prometheus.Counter
	pollTimeout prometheus.Counter
	lastCollect prometheus.Gauge
	latency     prometheus.Histogram
}

type statusMessage struct {
	DriverID string
	Payload  []byte
	Arrived  time.Time
}

// NewManager connects to MQTT and prepares status collection.
func NewManager(mqttCfg infmqtt.Config, cfg config.TelemetryConfig, store driverstatus.Store, disc solver.FleetDiscovery) (*Manager, error) {
	opts, err := infmqtt.NewClientOptions(mqttCfg)
	if err != nil {
		return nil, err
	}
	id := mqttCfg.ClientID
	if id != "" {
		id += "-telemetry"
	} else {
		id = "telemetry-" + uuid.NewString()
	}
	opts.SetClientID(id)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	m := &Manager{
		cfg:         cfg,
		cli:         cli,
		store:       store,
		log:         logger.New("telemetry"),
		disc:        disc,
		respCh:      make(chan statusMessage, 100),
		pollReq:     prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_poll_requests_total", Help: "Number of driver status poll requests"}),
		pollResp:    prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_poll_responses_total", Help: "Number of driver status poll responses"}),
		pollTimeout: prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_poll_timeout_total", Help: "Number of driver status poll timeouts"}),
		lastCollect: prometheus.NewGauge(prometheus.GaugeOpts{Name: "telemetry_last_collect_timestamp_seconds", Help: "Unix timestamp of last status collection"}),
		latency:     prometheus.NewHistogram(prometheus.HistogramOpts{Name: "telemetry_collect_latency_seconds", Help: "Latency of status collection", Buckets: prometheus.DefBuckets}),
	}
	// Register metrics
	prometheus.MustRegister(m.pollReq, m.pollResp, m.pollTimeout, m.lastCollect, m.latency)
	return m, nil
}

// Start runs status collection until context is done.
func (m *Manager) Start(ctx context.Context) {
	mode := strings.ToLower(m.cfg.Mode)
	if mode == "" {
		mode = "push"
	}
	if mode == "push" || mode == "hybrid" {
		topic := strings.TrimSuffix(m.cfg.StatePrefix, "/") + "/+"
		if token := m.cli.Subscribe(topic, 0, m.onPush); token.Wait() && token.Error() != nil {
			m.log.Errorf("subscribe state: %v", token.Error())
		}
	}
	if mode == "pull" || mode == "hybrid" {
		topic := strings.TrimSuffix(m.cfg.ResponsePrefix, "/") + "/+"
		if token := m.cli.Subscribe(topic, 0, m.onResponse); token.Wait() && token.Error() != nil {
			m.log.Errorf("subscribe response: %v", token.Error())
		}
		go m.pollLoop(ctx)
	}
	<-ctx.Done()
	if m.cli.IsConnected() {
		m.cli.Disconnect(250)
	}
}

func (m *Manager) onPush(_ paho.Client, msg paho.Message) {
	if err := m.process(msg.Payload(), msg.Topic(), "push"); err != nil {
		m.log.Errorf("push decode: %v", err)
	}
}

func (m *Manager) onResponse(_ paho.Client, msg paho.Message) {
	m.respCh <- statusMessage{DriverID: extractID(msg.Topic()), Payload: msg.Payload(), Arrived: time.Now()}
}

func extractID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}

func (m *Manager) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.doPoll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) doPoll(ctx context.Context) {
	start := time.Now()
	var expected map[string]struct{}
	if m.disc != nil {
		exp := make(map[string]struct{})
		drivers, err := m.disc.Discover(ctx, m.cfg.Timeout())
		if err == nil {
			for _, id := range drivers {
				exp[id] = struct{}{}
			}
		}
		expected = exp
	} else {
		expected = map[string]struct{}{}
	}
	m.pollReq.Inc()
	token := m.cli.Publish(m.cfg.RequestTopic, 0, false, []byte("poll"))
	token.Wait()
	timeout := time.NewTimer(m.cfg.Timeout())
	for {
		select {
		case resp := <-m.respCh:
			if err := m.process(resp.Payload, "", "poll"); err != nil {
				m.log.Errorf("poll decode: %v", err)
			} else {
				m.pollResp.Inc()
				m.latency.Observe(time.Since(start).Seconds())
				m.lastCollect.SetToCurrentTime()
				delete(expected, resp.DriverID)
			}
		case <-timeout.C:
			for range expected {
				m.pollTimeout.Inc()
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) process(payload []byte, topic, origin string) error {
	var msg struct {
		DriverID string `json:"driver_id"`
		Depot    string `json:"depot"`
		Line     string `json:"line"`
		Status   string `json:"status"`
		Spare    bool   `json:"spare"`
		TS       *int64 `json:"ts"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	if msg.DriverID == "" {
		msg.DriverID = extractID(topic)
	}
	ts := time.Now()
	if msg.TS != nil {
		ts = time.Unix(*msg.TS, 0)
	}
	status := strings.ToLower(strings.TrimSpace(msg.Status))
	switch status {
	case "":
		status = "available"
	case "available", "assigned", "on_duty", "on_break", "off_duty":
	default:
		status = "unknown"
	}
	if m.store != nil {
		m.store.Set(driverstatus.Status{
			DriverID:      msg.DriverID,
			Depot:         msg.Depot,
			Line:          msg.Line,
			CurrentStatus: status,
			Spare:         msg.Spare,
			LastSeen:      ts,
		})
		m.log.Debugf("status %s=%s via %s", msg.DriverID, status, origin)
	}
	return nil
}
