package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hearthware/ovenlink/internal/application/service"
	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

func newChain(gateway *mockGateway, stored models.OAuthCredential, persist service.PersistFunc) *service.CredentialChain {
	return service.NewCredentialChain(
		gateway,
		service.AccountLogin{Brand: "whirlpool", Username: "user@example.com", Password: "hunter2"},
		stored,
		constants.CredentialRefreshBuffer,
		persist,
		logger.NewNoopLogger(),
		newTestMetrics(),
	)
}

func TestCredentialChain_IdentityTierOnly(t *testing.T) {
	// Stored OAuth valid, derived tiers empty: exactly one identity call and
	// one exchange call, zero OAuth calls.
	gateway := new(mockGateway)
	gateway.On("FederatedIdentity", mock.Anything, "access-token").Return(validIdentity(), nil).Once()
	gateway.On("ExchangeIdentity", mock.Anything, mock.Anything).Return(validTemporary(), nil).Once()

	chain := newChain(gateway, validOAuth(), nil)

	require.NoError(t, chain.EnsureValid(context.Background()))

	gateway.AssertExpectations(t)
	gateway.AssertNotCalled(t, "TokenByRefresh", mock.Anything, mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "TokenByPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCredentialChain_SecondEnsureIsNoOp(t *testing.T) {
	gateway := new(mockGateway)
	gateway.On("FederatedIdentity", mock.Anything, mock.Anything).Return(validIdentity(), nil).Once()
	gateway.On("ExchangeIdentity", mock.Anything, mock.Anything).Return(validTemporary(), nil).Once()

	chain := newChain(gateway, validOAuth(), nil)

	require.NoError(t, chain.EnsureValid(context.Background()))
	require.NoError(t, chain.EnsureValid(context.Background()))

	// Once() on both expectations: a second network call would fail the mock.
	gateway.AssertExpectations(t)
	assert.True(t, chain.TemporaryValid())
}

func TestCredentialChain_RefreshGrantPreferred(t *testing.T) {
	stale := validOAuth()
	stale.ExpiresAt = time.Now().Add(-time.Minute)

	var persisted []models.OAuthCredential
	gateway := new(mockGateway)
	gateway.On("TokenByRefresh", mock.Anything, "whirlpool", "refresh-token").Return(validOAuth(), nil).Once()
	gateway.On("FederatedIdentity", mock.Anything, mock.Anything).Return(validIdentity(), nil).Once()
	gateway.On("ExchangeIdentity", mock.Anything, mock.Anything).Return(validTemporary(), nil).Once()

	chain := newChain(gateway, stale, func(ctx context.Context, cred models.OAuthCredential) {
		persisted = append(persisted, cred)
	})

	require.NoError(t, chain.EnsureValid(context.Background()))

	gateway.AssertNotCalled(t, "TokenByPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, persisted, 1, "new token pair must be surfaced for persistence")
	assert.Equal(t, "access-token", persisted[0].AccessToken)
}

func TestCredentialChain_PasswordFallback(t *testing.T) {
	stale := validOAuth()
	stale.ExpiresAt = time.Now().Add(-time.Minute)

	gateway := new(mockGateway)
	gateway.On("TokenByRefresh", mock.Anything, "whirlpool", "refresh-token").
		Return(models.OAuthCredential{}, errors.ErrAuthentication("refresh grant rejected")).Once()
	gateway.On("TokenByPassword", mock.Anything, "whirlpool", "user@example.com", "hunter2").
		Return(validOAuth(), nil).Once()
	gateway.On("FederatedIdentity", mock.Anything, mock.Anything).Return(validIdentity(), nil).Once()
	gateway.On("ExchangeIdentity", mock.Anything, mock.Anything).Return(validTemporary(), nil).Once()

	chain := newChain(gateway, stale, nil)

	require.NoError(t, chain.EnsureValid(context.Background()))
	gateway.AssertExpectations(t)
}

func TestCredentialChain_BothGrantsFail(t *testing.T) {
	stale := validOAuth()
	stale.ExpiresAt = time.Now().Add(-time.Minute)

	gateway := new(mockGateway)
	gateway.On("TokenByRefresh", mock.Anything, mock.Anything, mock.Anything).
		Return(models.OAuthCredential{}, errors.ErrAuthentication("refresh grant rejected")).Once()
	gateway.On("TokenByPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.OAuthCredential{}, errors.ErrAuthentication("bad password")).Once()

	chain := newChain(gateway, stale, nil)

	err := chain.EnsureValid(context.Background())
	assert.True(t, errors.IsAuthentication(err))
	gateway.AssertNotCalled(t, "FederatedIdentity", mock.Anything, mock.Anything)
}

func TestCredentialChain_NoRecoveryPath(t *testing.T) {
	gateway := new(mockGateway)
	chain := service.NewCredentialChain(
		gateway,
		service.AccountLogin{Brand: "whirlpool"},
		models.OAuthCredential{},
		constants.CredentialRefreshBuffer,
		nil,
		logger.NewNoopLogger(),
		newTestMetrics(),
	)

	err := chain.EnsureValid(context.Background())
	assert.True(t, errors.IsAuthentication(err))
}

func TestCredentialChain_ExchangeFailureSurfaces(t *testing.T) {
	gateway := new(mockGateway)
	gateway.On("FederatedIdentity", mock.Anything, mock.Anything).Return(validIdentity(), nil).Once()
	gateway.On("ExchangeIdentity", mock.Anything, mock.Anything).
		Return(models.TemporaryCloudCredential{}, errors.ErrCredentialExchange("endpoint returned HTTP 400")).Once()

	chain := newChain(gateway, validOAuth(), nil)

	err := chain.EnsureValid(context.Background())
	assert.True(t, errors.IsCredentialExchange(err))
	assert.False(t, chain.TemporaryValid())
}
