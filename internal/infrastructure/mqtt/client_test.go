package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hearthward/exposure-core/internal/infrastructure/config"
)

// newDisconnectedClient builds a client that has never connected.
// Validation paths short-circuit before touching the paho client.
func newDisconnectedClient() *Client {
	return &Client{
		subscriptions: make(map[string]subscription),
	}
}

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "system status", got: Topics{}.SystemStatus(), want: "exposure/system/status"},
		{name: "topology snapshot", got: Topics{}.TopologySnapshot(), want: "exposure/topology/snapshot"},
		{name: "topology request", got: Topics{}.TopologyRequest(), want: "exposure/topology/request"},
		{name: "artifact updated", got: Topics{}.ArtifactUpdated(), want: "exposure/artifact/updated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	c := newDisconnectedClient()

	if err := c.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("exposure/test", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3: err = %v, want ErrInvalidQoS", err)
	}

	big := make([]byte, maxPayloadSize+1)
	if err := c.Publish("exposure/test", big, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload: err = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := newDisconnectedClient()
	handler := func(topic string, payload []byte) error { return nil }

	if err := c.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: err = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("exposure/test", 5, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 5: err = %v, want ErrInvalidQoS", err)
	}
	if err := c.Subscribe("exposure/test", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler: err = %v, want ErrSubscribeFailed", err)
	}
	if err := c.Subscribe("exposure/test", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected: err = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := newDisconnectedClient()

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Enabled: true,
		QoS:     1,
	}
	cfg.Broker.Host = "broker.local"
	cfg.Broker.Port = 8883
	cfg.Broker.TLS = true
	cfg.Broker.ClientID = "exposure-core"
	cfg.Auth.Username = "svc"
	cfg.Auth.Password = "secret"
	cfg.Reconnect.InitialDelay = 1
	cfg.Reconnect.MaxDelay = 60

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "ssl://broker.local:8883" {
		t.Errorf("broker URL = %q, want ssl://broker.local:8883", got)
	}
	if opts.ClientID != "exposure-core" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "svc" {
		t.Errorf("Username = %q", opts.Username)
	}
	if opts.TLSConfig == nil {
		t.Error("expected TLS config to be set")
	}
}

func TestConfigureLWT(t *testing.T) {
	cfg := config.MQTTConfig{QoS: 1}
	cfg.Broker.Host = "localhost"
	cfg.Broker.Port = 1883
	cfg.Broker.ClientID = "exposure-core"

	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	if opts.WillTopic != "exposure/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("expected retained LWT")
	}
	if !strings.Contains(string(opts.WillPayload), `"status":"offline"`) {
		t.Errorf("WillPayload = %s", opts.WillPayload)
	}
	if !strings.Contains(string(opts.WillPayload), "unexpected_disconnect") {
		t.Errorf("WillPayload missing reason: %s", opts.WillPayload)
	}
}
