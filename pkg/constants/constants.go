// Package constants defines system-wide constants for the ovenlink appliance bridge.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Command Constants
// ================================================================================

// Command represents an outbound appliance command kind.
type Command string

const (
	// CommandGetState asks the appliance to publish its full current state.
	CommandGetState Command = "getState"

	// CommandRun starts a cooking cycle.
	CommandRun Command = "run"

	// CommandCancel cancels the active cooking cycle.
	CommandCancel Command = "cancel"

	// CommandSet writes one or more settable fields (e.g. the cavity light).
	CommandSet Command = "set"
)

// AddresseeAppliance targets the appliance as a whole rather than one cavity.
const AddresseeAppliance = "appliance"

// AddresseePrimaryCavity targets the primary oven cavity.
const AddresseePrimaryCavity = "primaryCavity"

// ================================================================================
// Cavity State Constants
// ================================================================================

// CavityState represents the reported cooking state of one cavity.
type CavityState string

const (
	CavityStateIdle       CavityState = "idle"
	CavityStatePreheating CavityState = "preheating"
	CavityStateCooking    CavityState = "cooking"
	CavityStateBroiling   CavityState = "broiling"
	CavityStateWarming    CavityState = "warming"
)

// ActiveCavityStates lists the states in which a cycle is considered running.
var ActiveCavityStates = map[CavityState]bool{
	CavityStatePreheating: true,
	CavityStateCooking:    true,
	CavityStateBroiling:   true,
	CavityStateWarming:    true,
}

// ================================================================================
// State Field Keys
// ================================================================================

const (
	// FieldPrimaryCavity is the snapshot key of the primary cavity sub-mapping.
	FieldPrimaryCavity = "primaryCavity"

	// FieldCavityState holds the CavityState inside a cavity mapping.
	FieldCavityState = "cavityState"

	// FieldSessionID holds the active cook-session id inside a cavity mapping.
	FieldSessionID = "sessionId"

	// FieldCavityLight holds the light on/off flag inside a cavity mapping.
	FieldCavityLight = "cavityLight"
)

// ================================================================================
// Credential Lifetime Constants
// ================================================================================

const (
	// CredentialRefreshBuffer is how long before expiry a credential tier is
	// already treated as stale. It absorbs clock skew and in-flight latency.
	CredentialRefreshBuffer = 300 * time.Second

	// FederationTokenFallbackTTL is assumed for federation tokens that carry
	// no readable expiry claim.
	FederationTokenFallbackTTL = 10 * time.Minute

	// OAuthFallbackTTL is assumed when the token endpoint omits expires_in.
	OAuthFallbackTTL = 1 * time.Hour
)

// ================================================================================
// Timeout Constants
// ================================================================================

const (
	// HTTPTimeout bounds every credential-exchange and favourites call.
	HTTPTimeout = 30 * time.Second

	// ConnectTimeout bounds one channel connect attempt.
	ConnectTimeout = 30 * time.Second

	// KeepAliveInterval is the channel keep-alive ping interval.
	KeepAliveInterval = 30 * time.Second

	// SubscribeTimeout bounds one subscribe operation.
	SubscribeTimeout = 10 * time.Second

	// PublishTimeout bounds one publish operation.
	PublishTimeout = 10 * time.Second

	// DisconnectTimeout bounds the best-effort channel teardown.
	DisconnectTimeout = 5 * time.Second

	// DefaultHealthCheckInterval is the periodic session health-check cadence.
	DefaultHealthCheckInterval = 5 * time.Minute
)

// DefaultEventQueueSize is the capacity of the owner-loop event channel that
// inbound frames and lifecycle callbacks are handed off to.
const DefaultEventQueueSize = 64

// FavouritesCacheTTL bounds how long a fetched favourites list is served
// without a successful re-fetch. A failed refresh keeps the cached list
// until this window runs out.
const FavouritesCacheTTL = 24 * time.Hour

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for context value keys set by the bridge.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request correlation id.
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeySAID carries the appliance id of the session in scope.
	ContextKeySAID ContextKey = "said"
)

// ================================================================================
// Service Identity
// ================================================================================

const (
	// ServiceName identifies the bridge in traces and logs.
	ServiceName = "ovenlink-bridge"

	// ClientIDSuffixBytes is the number of random bytes appended to the
	// federated identity id when deriving a per-connection client id.
	ClientIDSuffixBytes = 4
)
