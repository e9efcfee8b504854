package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/opentransit/crewd/infra/logger"
)

// Default topics for terminal discovery.
const (
	DefaultDiscoveryTopic = "crew/fleet/discovery"
	DefaultResponseTopic  = "crew/fleet/response/+"
)

// PahoFleetDiscovery implements solver.FleetDiscovery over MQTT broadcast.
// It publishes a ping on the discovery topic and collects driver terminal
// responses for a short period.
type PahoFleetDiscovery struct {
	cli            pahoClient
	discoveryTopic string
	responseTopic  string
	log            logger.Logger
}

type discoveryResponse struct {
	DriverID string `json:"driver_id"`
	Depot    string `json:"depot,omitempty"`
	Status   string `json:"status,omitempty"`
}

// NewPahoFleetDiscovery connects to the broker and returns a discovery instance.
// Empty topics fall back to the crew defaults.
func NewPahoFleetDiscovery(cfg Config, discoveryTopic, responseTopic string) (*PahoFleetDiscovery, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	if discoveryTopic == "" {
		discoveryTopic = DefaultDiscoveryTopic
	}
	if responseTopic == "" {
		responseTopic = DefaultResponseTopic
	}

	d := &PahoFleetDiscovery{
		discoveryTopic: discoveryTopic,
		responseTopic:  responseTopic,
		log:            logger.New("fleet_discovery"),
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		d.log.Errorf("connection lost: %v", err)
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	d.cli = cli
	return d, nil
}

// Discover broadcasts a ping and collects driver IDs until the timeout. A
// terminal that responds more than once is reported once.
func (d *PahoFleetDiscovery) Discover(ctx context.Context, timeout time.Duration) ([]string, error) {
	responses := make(chan discoveryResponse, 64)
	if token := d.cli.Subscribe(d.responseTopic, 0, func(_ paho.Client, m paho.Message) {
		var r discoveryResponse
		if err := json.Unmarshal(m.Payload(), &r); err != nil {
			d.log.Errorf("invalid discovery payload: %v", err)
			return
		}
		select {
		case responses <- r:
		default:
		}
	}); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	ping := struct {
		Timestamp int64 `json:"timestamp"`
	}{Timestamp: time.Now().UnixMilli()}
	payload, _ := json.Marshal(ping)
	if token := d.cli.Publish(d.discoveryTopic, 0, false, payload); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	seen := make(map[string]bool)
	var drivers []string
	timer := time.NewTimer(timeout)
	defer timer.Stop()
loop:
	for {
		select {
		case r := <-responses:
			if r.DriverID == "" || seen[r.DriverID] {
				continue
			}
			seen[r.DriverID] = true
			drivers = append(drivers, r.DriverID)
		case <-ctx.Done():
			break loop
		case <-timer.C:
			break loop
		}
	}
	return drivers, nil
}

// Close disconnects the underlying MQTT client.
func (d *PahoFleetDiscovery) Close() error {
	if d.cli != nil && d.cli.IsConnected() {
		d.cli.Disconnect(250)
	}
	return nil
}

// MockDiscovery is a FleetDiscovery stub used in tests.
type MockDiscovery struct {
	Drivers []string
	Err     error
}

func (m MockDiscovery) Discover(ctx context.Context, timeout time.Duration) ([]string, error) {
	_ = ctx
	_ = timeout
	return m.Drivers, m.Err
}

func (m MockDiscovery) Close() error { return nil }
