// Package service implements the application services composing one appliance
// session: the credential chain, the state synchronizer, the command
// dispatcher, the favourites adapter, and the session orchestration itself.
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

var tracer = otel.Tracer(constants.ServiceName)

// Tier labels used in refresh metrics and logs.
const (
	tierOAuth     = "oauth"
	tierIdentity  = "identity"
	tierTemporary = "temporary"
)

// PersistFunc receives the new OAuth token pair after a successful refresh so
// the host can store it. A process restart then resumes from the stored pair
// instead of forcing a fresh login.
type PersistFunc func(ctx context.Context, cred models.OAuthCredential)

// AccountLogin is the password-grant fallback. Username may be empty when the
// host paired with a stored token only; the refresh grant is then the sole
// recovery path.
type AccountLogin struct {
	Brand    string
	Username string
	Password string
}

// CredentialChain owns the three nested, independently expiring credentials.
// It is not safe for concurrent use; the session's owner goroutine is the only
// caller.
type CredentialChain struct {
	gateway domainsvc.CloudGateway
	login   AccountLogin
	buffer  time.Duration
	persist PersistFunc
	log     logger.Logger
	metrics *monitoring.Metrics
	now     func() time.Time

	oauth     models.OAuthCredential
	identity  models.FederatedIdentity
	temporary models.TemporaryCloudCredential
}

// NewCredentialChain seeds the chain with whatever the host supplied at
// pairing time: a stored OAuth credential, account login details, or both.
func NewCredentialChain(
	gateway domainsvc.CloudGateway,
	login AccountLogin,
	stored models.OAuthCredential,
	buffer time.Duration,
	persist PersistFunc,
	log logger.Logger,
	metrics *monitoring.Metrics,
) *CredentialChain {
	return &CredentialChain{
		gateway: gateway,
		login:   login,
		buffer:  buffer,
		persist: persist,
		log:     log,
		metrics: metrics,
		now:     time.Now,
		oauth:   stored,
	}
}

// EnsureValid walks the chain top down and refreshes only the stale tiers.
// It is idempotent: with all three tiers inside their buffer it issues no
// network call at all. Errors are not retried here; the session's health tick
// is the retry cadence.
func (c *CredentialChain) EnsureValid(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "credentials.ensure_valid")
	defer span.End()

	now := c.now()

	if !c.oauth.Valid(now, c.buffer) {
		if err := c.refreshOAuth(ctx); err != nil {
			return err
		}
		// A new account session invalidates everything derived from the
		// old one.
		c.identity = models.FederatedIdentity{}
		c.temporary = models.TemporaryCloudCredential{}
	}

	if !c.identity.Valid(now, c.buffer) {
		identity, err := c.gateway.FederatedIdentity(ctx, c.oauth.AccessToken)
		c.metrics.RecordCredentialRefresh(tierIdentity, err)
		if err != nil {
			c.log.Warn(ctx, "federated identity refresh failed", logger.Fields{"error": err.Error()})
			return err
		}
		c.identity = identity
		c.temporary = models.TemporaryCloudCredential{}
		c.log.Debug(ctx, "federated identity refreshed", logger.Fields{
			"expires_at": identity.ExpiresAt,
		})
	}

	if !c.temporary.Valid(now, c.buffer) {
		temporary, err := c.gateway.ExchangeIdentity(ctx, c.identity)
		c.metrics.RecordCredentialRefresh(tierTemporary, err)
		if err != nil {
			c.log.Warn(ctx, "temporary credential exchange failed", logger.Fields{"error": err.Error()})
			return err
		}
		c.temporary = temporary
		c.log.Debug(ctx, "temporary credentials refreshed", logger.Fields{
			"expires_at": temporary.ExpiresAt,
		})
	}

	return nil
}

// refreshOAuth prefers the refresh grant over the password grant. Repeated
// password submissions risk an account lockout, so the password is the
// documented fallback only.
func (c *CredentialChain) refreshOAuth(ctx context.Context) error {
	var refreshErr error
	if c.oauth.RefreshToken != "" {
		cred, err := c.gateway.TokenByRefresh(ctx, c.login.Brand, c.oauth.RefreshToken)
		c.metrics.RecordCredentialRefresh(tierOAuth, err)
		if err == nil {
			c.storeOAuth(ctx, cred)
			return nil
		}
		refreshErr = err
		c.log.Warn(ctx, "refresh grant failed, falling back to password grant",
			logger.Fields{"error": err.Error()})
	}

	if c.login.Username == "" {
		if refreshErr != nil {
			return refreshErr
		}
		return errors.ErrAuthentication("no refresh token and no account login available")
	}

	cred, err := c.gateway.TokenByPassword(ctx, c.login.Brand, c.login.Username, c.login.Password)
	c.metrics.RecordCredentialRefresh(tierOAuth, err)
	if err != nil {
		return err
	}
	c.storeOAuth(ctx, cred)
	return nil
}

func (c *CredentialChain) storeOAuth(ctx context.Context, cred models.OAuthCredential) {
	c.oauth = cred
	if c.persist != nil {
		c.persist(ctx, cred)
	}
	c.log.Info(ctx, "oauth credential refreshed", logger.Fields{
		"expires_at": cred.ExpiresAt,
	})
}

// AccessToken returns the current account access token. Only meaningful after
// a successful EnsureValid.
func (c *CredentialChain) AccessToken() string {
	return c.oauth.AccessToken
}

// Identity returns the current federated identity.
func (c *CredentialChain) Identity() models.FederatedIdentity {
	return c.identity
}

// Temporary returns the current channel signing credentials.
func (c *CredentialChain) Temporary() models.TemporaryCloudCredential {
	return c.temporary
}

// TemporaryValid reports whether the channel signing credentials are still
// inside their buffer. The session's health tick uses this to decide whether
// the connection handle must be rotated along with its credentials.
func (c *CredentialChain) TemporaryValid() bool {
	return c.temporary.Valid(c.now(), c.buffer)
}
