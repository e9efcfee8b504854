package mqtt

import (
	"crypto/tls"
	"errors"
	"fmt"
	"testing"
	"time"

	coremqtt "github.com/opentransit/crewd/core/mqtt"
)

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("client cert not loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("ca bundle not loaded")
	}
	if tlsCfg.MinVersion != tls.VersionTLS12 {
		t.Fatalf("min version = %x", tlsCfg.MinVersion)
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	if _, err := (Config{UseTLS: true}).LoadTLSConfig(); err == nil {
		t.Fatal("expected error without cert paths")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "crewd", Username: "dispatch", Password: "s3cret"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "dispatch" || opts.Password != "s3cret" {
		t.Fatalf("credentials not applied")
	}
}

func TestAssignmentTopicAndQoS(t *testing.T) {
	mc := &mockClient{}
	swapClientFactory(t, mc)
	cli, err := NewPahoClient(Config{
		Broker:   "tcp://localhost:1883",
		ClientID: "crewd",
		AckTopic: "crew/assignments/ack",
		QoS:      map[string]byte{"assignment": 2, "ack": 1},
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if len(mc.subscribed) == 0 || mc.subscribed[0].qos != 1 {
		t.Fatalf("ack subscription = %+v", mc.subscribed)
	}

	asnID, err := cli.SendAssignment("drv1", sampleDuty())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(mc.published) == 0 {
		t.Fatal("nothing published")
	}
	if got := mc.published[0]; got.topic != "crew/driver/drv1/assignment" || got.qos != 2 {
		t.Fatalf("publish = %+v", got)
	}

	// The driver terminal answers on the ack topic.
	cli.onAck(nil, mockMessage{[]byte(fmt.Sprintf(`{"assignment_id":%q}`, asnID))})
	ok, err := cli.WaitForAck(asnID, 50*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("ack wait: ok=%v err=%v", ok, err)
	}
}

func TestLastWillConfigured(t *testing.T) {
	mc := &mockClient{}
	swapClientFactory(t, mc)
	cli, err := NewPahoClient(Config{
		Broker:     "tcp://localhost:1883",
		ClientID:   "crewd",
		LWTTopic:   "crew/service/offline",
		LWTPayload: "gone",
		LWTQoS:     1,
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "crew/service/offline" || string(mc.opts.WillPayload) != "gone" {
		t.Fatalf("will = %s %q", mc.opts.WillTopic, mc.opts.WillPayload)
	}
	cli.Disconnect()
	if len(mc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestPublishRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("flap"), nil}}
	swapClientFactory(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "crewd", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err := cli.SendAssignment("drv1", sampleDuty()); err != nil {
		t.Fatalf("send after retry: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("publish attempts = %d", len(mc.published))
	}
}

func TestWaitForAckTimeout(t *testing.T) {
	mc := &mockClient{}
	swapClientFactory(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "crewd", BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	asnID, err := cli.SendAssignment("drv9", sampleDuty())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	ok, err := cli.WaitForAck(asnID, time.Millisecond)
	if ok || !errors.Is(err, coremqtt.ErrAckTimeout) {
		t.Fatalf("want ack timeout, got ok=%v err=%v", ok, err)
	}
	// The tracking channel is dropped after the first wait.
	if _, err := cli.WaitForAck(asnID, time.Millisecond); err == nil {
		t.Fatal("expected unknown assignment error")
	}
}
