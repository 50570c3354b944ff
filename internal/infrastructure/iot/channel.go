// Package iot implements the device channel over MQTT on a SigV4-signed
// websocket connection to the appliance broker.
package iot

import (
	"context"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/hearthware/ovenlink/internal/config"
	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// atLeastOnce is the QoS level required for both session topics.
const atLeastOnce byte = 1

// MQTTChannel is the paho-backed DeviceChannel. Connections are clean-session:
// the broker never preserves subscriptions across a session loss, so every
// resume is reported with sessionPreserved=false and the owner replays the
// subscribe set.
type MQTTChannel struct {
	endpoint string
	region   string
	cfg      *config.ChannelConfig
	log      logger.Logger

	mu        sync.Mutex
	client    mqtt.Client
	connected bool
}

var _ domainsvc.DeviceChannel = (*MQTTChannel)(nil)

// NewMQTTChannel creates a disconnected channel for one appliance session.
func NewMQTTChannel(endpoint, region string, cfg *config.ChannelConfig, log logger.Logger) *MQTTChannel {
	return &MQTTChannel{
		endpoint: endpoint,
		region:   region,
		cfg:      cfg,
		log:      log,
	}
}

// Connect opens the signed websocket connection. The transport reconnects on
// its own after link drops; the events callbacks surface those transitions.
func (c *MQTTChannel) Connect(ctx context.Context, creds models.TemporaryCloudCredential, clientID string, events domainsvc.ChannelEvents) error {
	broker, err := presignedURL(ctx, c.endpoint, c.region, creds)
	if err != nil {
		return errors.Wrap(err, errors.CodeChannelConnect, "presign websocket url")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetKeepAlive(c.cfg.KeepAlive).
		SetConnectTimeout(c.cfg.ConnectTimeout)

	var once sync.Once
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		first := false
		once.Do(func() { first = true })
		if first {
			return
		}
		// Clean-session broker: a resumed connection never kept the old
		// session, so subscriptions are gone until replayed.
		if events.OnResumed != nil {
			events.OnResumed(false)
		}
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		if events.OnInterrupted != nil {
			events.OnInterrupted(err)
		}
	})
	opts.SetDefaultPublishHandler(func(client mqtt.Client, msg mqtt.Message) {
		if events.OnMessage != nil {
			events.OnMessage(msg.Topic(), msg.Payload())
		}
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		client.Disconnect(0)
		return errors.ErrChannelConnect("connect timed out")
	}
	if err := token.Error(); err != nil {
		return errors.Wrap(err, errors.CodeChannelConnect, "connect rejected")
	}

	c.mu.Lock()
	c.client = client
	c.connected = true
	c.mu.Unlock()
	return nil
}

// Subscribe registers the given topics with at-least-once delivery. Messages
// arrive through the events.OnMessage callback set at Connect.
func (c *MQTTChannel) Subscribe(ctx context.Context, topics ...string) error {
	client := c.liveClient()
	if client == nil {
		return errors.ErrChannelUnavailable()
	}

	filters := make(map[string]byte, len(topics))
	for _, topic := range topics {
		filters[topic] = atLeastOnce
	}
	token := client.SubscribeMultiple(filters, nil)
	if !token.WaitTimeout(c.cfg.SubscribeTimeout) {
		return errors.New(errors.CodeChannelConnect, "subscribe timed out")
	}
	if err := token.Error(); err != nil {
		return errors.Wrap(err, errors.CodeChannelConnect, "subscribe rejected")
	}
	c.log.Debug(ctx, "Subscribed to topics", logger.Fields{"topics": topics})
	return nil
}

// Publish sends one message with at-least-once delivery.
func (c *MQTTChannel) Publish(ctx context.Context, topic string, payload []byte) error {
	client := c.liveClient()
	if client == nil {
		return errors.ErrChannelUnavailable()
	}

	token := client.Publish(topic, atLeastOnce, false, payload)
	if !token.WaitTimeout(c.cfg.PublishTimeout) {
		return errors.New(errors.CodeChannelConnect, "publish timed out")
	}
	if err := token.Error(); err != nil {
		return errors.Wrap(err, errors.CodeChannelConnect, "publish rejected")
	}
	return nil
}

// Disconnect tears the connection down with a bounded wait and always clears
// the local handle, so a later Connect starts from a clean slate.
func (c *MQTTChannel) Disconnect(ctx context.Context) {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.connected = false
	c.mu.Unlock()

	if client == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		client.Disconnect(uint(c.cfg.DisconnectTimeout.Milliseconds()))
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		c.log.Warn(ctx, "Disconnect wait abandoned", logger.Fields{"reason": ctx.Err().Error()})
	}
}

// IsConnected reports whether a live connection handle exists.
func (c *MQTTChannel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected && c.client != nil && c.client.IsConnectionOpen()
}

func (c *MQTTChannel) liveClient() mqtt.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.client == nil {
		return nil
	}
	return c.client
}
