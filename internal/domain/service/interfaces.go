// Package service defines the ports consumed by the application layer.
// Implementations live under internal/infrastructure.
package service

import (
	"context"

	"github.com/hearthware/ovenlink/internal/domain/models"
)

// CloudGateway is the vendor cloud's request/response surface: the OAuth token
// endpoint, the identity-federation endpoints, and the favourites fetch.
type CloudGateway interface {
	// TokenByPassword performs a password-grant token exchange.
	TokenByPassword(ctx context.Context, brand, username, password string) (models.OAuthCredential, error)

	// TokenByRefresh performs a refresh-grant token exchange.
	TokenByRefresh(ctx context.Context, brand, refreshToken string) (models.OAuthCredential, error)

	// FederatedIdentity retrieves the identity id and federation token for a
	// valid account session.
	FederatedIdentity(ctx context.Context, accessToken string) (models.FederatedIdentity, error)

	// ExchangeIdentity trades a federated identity for temporary signing
	// credentials.
	ExchangeIdentity(ctx context.Context, identity models.FederatedIdentity) (models.TemporaryCloudCredential, error)

	// Favourites fetches and flattens the saved presets for one appliance.
	Favourites(ctx context.Context, accessToken, said string) ([]models.Favourite, error)
}

// ChannelEvents receives connection-lifecycle and inbound-message callbacks.
// Callbacks arrive on the transport's worker threads; implementations must
// hand anything touching shared state off to the session's owner loop.
type ChannelEvents struct {
	// OnMessage delivers one inbound frame.
	OnMessage func(topic string, payload []byte)

	// OnInterrupted reports an unplanned drop. The transport retries at the
	// link layer on its own; no action is expected.
	OnInterrupted func(err error)

	// OnResumed reports a recovered connection. When the broker did not
	// preserve the previous session, subscriptions were lost with it and
	// must be replayed.
	OnResumed func(sessionPreserved bool)
}

// DeviceChannel is one persistent publish/subscribe connection to the
// appliance's message broker.
type DeviceChannel interface {
	// Connect opens the connection using the given signing credentials and
	// per-connection client identifier. Events must be set before Connect.
	Connect(ctx context.Context, creds models.TemporaryCloudCredential, clientID string, events ChannelEvents) error

	// Subscribe registers for the given topics with at-least-once delivery.
	Subscribe(ctx context.Context, topics ...string) error

	// Publish sends one message with at-least-once delivery.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Disconnect tears the connection down, best effort with a bounded wait.
	// The local handle is cleared even when the wait times out.
	Disconnect(ctx context.Context)

	// IsConnected reports whether a live connection exists.
	IsConnected() bool
}
