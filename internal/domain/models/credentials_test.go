package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/pkg/constants"
)

func TestOAuthCredential_Valid(t *testing.T) {
	now := time.Now()
	buffer := 300 * time.Second

	tests := []struct {
		name string
		cred models.OAuthCredential
		want bool
	}{
		{"well inside expiry", models.OAuthCredential{AccessToken: "t", ExpiresAt: now.Add(time.Hour)}, true},
		{"inside the buffer is already stale", models.OAuthCredential{AccessToken: "t", ExpiresAt: now.Add(200 * time.Second)}, false},
		{"expired", models.OAuthCredential{AccessToken: "t", ExpiresAt: now.Add(-time.Minute)}, false},
		{"no token", models.OAuthCredential{ExpiresAt: now.Add(time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Valid(now, buffer))
		})
	}
}

func signedTestToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestNewFederatedIdentity_ExpiryFromToken(t *testing.T) {
	now := time.Now()
	exp := now.Add(45 * time.Minute)

	identity := models.NewFederatedIdentity("eu-central-1:abc", signedTestToken(t, exp), now)

	assert.WithinDuration(t, exp, identity.ExpiresAt, time.Second)
}

func TestNewFederatedIdentity_FallbackTTL(t *testing.T) {
	now := time.Now()

	identity := models.NewFederatedIdentity("eu-central-1:abc", "not-a-jwt", now)

	assert.WithinDuration(t, now.Add(constants.FederationTokenFallbackTTL), identity.ExpiresAt, time.Second)
}

func TestFederatedIdentity_NewClientID(t *testing.T) {
	identity := models.NewFederatedIdentity("eu-central-1:abc", "not-a-jwt", time.Now())

	first := identity.NewClientID()
	second := identity.NewClientID()

	assert.True(t, strings.HasPrefix(first, "eu-central-1:abc_"))
	assert.NotEqual(t, first, second, "each connection needs its own client id")
}

func TestTemporaryCloudCredential_Valid(t *testing.T) {
	now := time.Now()
	buffer := 300 * time.Second

	valid := models.TemporaryCloudCredential{AccessKeyID: "AKID", ExpiresAt: now.Add(time.Hour)}
	stale := models.TemporaryCloudCredential{AccessKeyID: "AKID", ExpiresAt: now.Add(time.Minute)}
	empty := models.TemporaryCloudCredential{}

	assert.True(t, valid.Valid(now, buffer))
	assert.False(t, stale.Valid(now, buffer))
	assert.False(t, empty.Valid(now, buffer))
}
