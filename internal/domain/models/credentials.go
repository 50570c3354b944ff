package models

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hearthware/ovenlink/pkg/constants"
)

// OAuthCredential is the top tier of the credential chain: the cloud account
// session. It is replaced wholesale on each refresh.
type OAuthCredential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Valid reports whether the credential is usable, treating anything within
// buffer of expiry as already stale.
func (c OAuthCredential) Valid(now time.Time, buffer time.Duration) bool {
	return c.AccessToken != "" && now.Before(c.ExpiresAt.Add(-buffer))
}

// FederatedIdentity is the middle tier: a cloud identity derived from the
// account session, used to obtain temporary signing credentials.
type FederatedIdentity struct {
	IdentityID string
	Token      string
	ExpiresAt  time.Time
}

// NewFederatedIdentity builds an identity from the federation response. The
// federation token carries no TTL field of its own; when it is a JWT its exp
// claim is read (without signature verification, the broker verifies it), and
// otherwise a conservative fallback lifetime applies.
func NewFederatedIdentity(identityID, token string, now time.Time) FederatedIdentity {
	expiresAt := now.Add(constants.FederationTokenFallbackTTL)
	if claims := parseExpiry(token); claims != nil {
		expiresAt = *claims
	}
	return FederatedIdentity{IdentityID: identityID, Token: token, ExpiresAt: expiresAt}
}

// Valid reports whether the identity is usable within the staleness buffer.
func (f FederatedIdentity) Valid(now time.Time, buffer time.Duration) bool {
	return f.IdentityID != "" && f.Token != "" && now.Before(f.ExpiresAt.Add(-buffer))
}

// NewClientID derives a fresh per-connection client identifier from the
// identity id. The random suffix guarantees a reconnect never collides with a
// half-dead previous session on the broker.
func (f FederatedIdentity) NewClientID() string {
	raw := uuid.New()
	return fmt.Sprintf("%s_%s", f.IdentityID, hex.EncodeToString(raw[:constants.ClientIDSuffixBytes]))
}

func parseExpiry(token string) *time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}

// TemporaryCloudCredential is the bottom tier: short-lived signing material
// that authorizes the device channel connection. It must be rotated together
// with the connection handle it signs.
type TemporaryCloudCredential struct {
	AccessKeyID  string
	SecretKey    string
	SessionToken string
	ExpiresAt    time.Time
}

// Valid reports whether the credential is usable within the staleness buffer.
func (c TemporaryCloudCredential) Valid(now time.Time, buffer time.Duration) bool {
	return c.AccessKeyID != "" && now.Before(c.ExpiresAt.Add(-buffer))
}
