package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/opentransit/crewd/core/metrics"
)

// Topics shared with the scheduling service.
const (
	ackTopic          = "crew/assignments/ack"
	discoveryTopic    = "crew/fleet/discovery"
	responsePrefix    = "crew/fleet/response"
	statusTopicPrefix = "crew/driver/status"
)

var mqttClientFactory = realMQTTClient

func realMQTTClient(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return cli, nil
}

type pendingAck struct {
	id       string
	received time.Time
}

// SimulatedTerminal connects to MQTT, answers discovery pings, pushes status
// heartbeats and acknowledges duty assignments.
type SimulatedTerminal struct {
	ID             string
	Depot          string
	Line           string
	Spare          bool
	Broker         string
	Strategy       AckStrategy
	StatusInterval time.Duration
	Metrics        coremetrics.MetricsSink

	client paho.Client
	ackCh  chan pendingAck
}

// NewSimulatedTerminal creates a new terminal.
func NewSimulatedTerminal(id, broker string, strat AckStrategy) *SimulatedTerminal {
	return &SimulatedTerminal{
		ID:       id,
		Broker:   broker,
		Strategy: strat,
		ackCh:    make(chan pendingAck, 50),
	}
}

// Run connects to the broker and listens for assignments until ctx is done.
func (t *SimulatedTerminal) Run(ctx context.Context) error {
	cli, err := mqttClientFactory(t.Broker, "sim-"+t.ID)
	if err != nil {
		return err
	}
	t.client = cli
	if t.ackCh == nil {
		t.ackCh = make(chan pendingAck, 50)
	}
	for i := 0; i < 5; i++ {
		go t.worker(ctx)
	}
	topic := fmt.Sprintf("crew/driver/%s/assignment", t.ID)
	if token := cli.Subscribe(topic, 0, t.onAssignment); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}
	if token := cli.Subscribe(discoveryTopic, 0, t.onDiscovery); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}
	if t.StatusInterval > 0 {
		go t.statusLoop(ctx)
	}
	t.publishStatus()
	<-ctx.Done()
	close(t.ackCh)
	cli.Disconnect(250)
	return nil
}

func (t *SimulatedTerminal) onAssignment(_ paho.Client, msg paho.Message) {
	var m struct {
		AssignmentID string `json:"assignment_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("%s: decode assignment: %v", t.ID, err)
		return
	}
	select {
	case t.ackCh <- pendingAck{id: m.AssignmentID, received: time.Now()}:
	default:
		log.Printf("%s: ack queue full, dropping assignment %s", t.ID, m.AssignmentID)
	}
}

func (t *SimulatedTerminal) onDiscovery(_ paho.Client, _ paho.Message) {
	payload, err := json.Marshal(struct {
		DriverID string `json:"driver_id"`
		Depot    string `json:"depot,omitempty"`
		Status   string `json:"status,omitempty"`
	}{DriverID: t.ID, Depot: t.Depot, Status: "available"})
	if err != nil {
		log.Printf("%s: marshal discovery response: %v", t.ID, err)
		return
	}
	topic := fmt.Sprintf("%s/%s", responsePrefix, t.ID)
	if token := t.client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("%s: discovery response: %v", t.ID, token.Error())
	}
}

func (t *SimulatedTerminal) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(t.StatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.publishStatus()
		}
	}
}

func (t *SimulatedTerminal) publishStatus() {
	payload, err := json.Marshal(struct {
		DriverID string `json:"driver_id"`
		Depot    string `json:"depot,omitempty"`
		Line     string `json:"line,omitempty"`
		Status   string `json:"status"`
		Spare    bool   `json:"spare,omitempty"`
		TS       int64  `json:"ts"`
	}{DriverID: t.ID, Depot: t.Depot, Line: t.Line, Status: "available", Spare: t.Spare, TS: time.Now().Unix()})
	if err != nil {
		log.Printf("%s: marshal status: %v", t.ID, err)
		return
	}
	topic := fmt.Sprintf("%s/%s", statusTopicPrefix, t.ID)
	if token := t.client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("%s: status publish: %v", t.ID, token.Error())
	}
}

func (t *SimulatedTerminal) worker(ctx context.Context) {
	for {
		select {
		case pending, ok := <-t.ackCh:
			if !ok {
				return
			}
			sent := t.Strategy.Ack(ctx, t.client, t.ID, pending.id)
			if rec, ok := t.Metrics.(coremetrics.AssignmentAckRecorder); ok && rec != nil {
				_ = rec.RecordAssignmentAck(coremetrics.AssignmentAckEvent{
					OrderID:      pending.id,
					DriverID:     t.ID,
					Acknowledged: sent,
					Latency:      time.Since(pending.received),
					Time:         time.Now(),
				})
			}
		case <-ctx.Done():
			return
		}
	}
}
