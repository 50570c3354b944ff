package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"

	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/pkg/errors"
)

// mockGateway is a testify mock of the cloud gateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) TokenByPassword(ctx context.Context, brand, username, password string) (models.OAuthCredential, error) {
	args := m.Called(ctx, brand, username, password)
	return args.Get(0).(models.OAuthCredential), args.Error(1)
}

func (m *mockGateway) TokenByRefresh(ctx context.Context, brand, refreshToken string) (models.OAuthCredential, error) {
	args := m.Called(ctx, brand, refreshToken)
	return args.Get(0).(models.OAuthCredential), args.Error(1)
}

func (m *mockGateway) FederatedIdentity(ctx context.Context, accessToken string) (models.FederatedIdentity, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(models.FederatedIdentity), args.Error(1)
}

func (m *mockGateway) ExchangeIdentity(ctx context.Context, identity models.FederatedIdentity) (models.TemporaryCloudCredential, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(models.TemporaryCloudCredential), args.Error(1)
}

func (m *mockGateway) Favourites(ctx context.Context, accessToken, said string) ([]models.Favourite, error) {
	args := m.Called(ctx, accessToken, said)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Favourite), args.Error(1)
}

type publishedMessage struct {
	topic   string
	payload []byte
}

// fakeChannel is a scripted device channel. It records every call and lets
// tests fire the lifecycle callbacks a real transport would.
type fakeChannel struct {
	mu sync.Mutex

	connectErr   error
	subscribeErr error
	publishErr   error

	connected      bool
	events         domainsvc.ChannelEvents
	clientIDs      []string
	subscribeCalls [][]string
	published      []publishedMessage
	disconnects    int
}

func (f *fakeChannel) Connect(ctx context.Context, creds models.TemporaryCloudCredential, clientID string, events domainsvc.ChannelEvents) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	f.events = events
	f.clientIDs = append(f.clientIDs, clientID)
	return nil
}

func (f *fakeChannel) Subscribe(ctx context.Context, topics ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscribeCalls = append(f.subscribeCalls, topics)
	return nil
}

func (f *fakeChannel) Publish(ctx context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	if !f.connected {
		return errors.ErrChannelUnavailable()
	}
	f.published = append(f.published, publishedMessage{topic: topic, payload: payload})
	return nil
}

func (f *fakeChannel) Disconnect(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.disconnects++
}

func (f *fakeChannel) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeChannel) setConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

func (f *fakeChannel) callbacks() domainsvc.ChannelEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events
}

func (f *fakeChannel) subscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribeCalls)
}

func (f *fakeChannel) connectedClientIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.clientIDs))
	copy(out, f.clientIDs)
	return out
}

func (f *fakeChannel) disconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}

func (f *fakeChannel) publishedMessages() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.published))
	copy(out, f.published)
	return out
}

func newTestMetrics() *monitoring.Metrics {
	return monitoring.NewMetrics(prometheus.NewRegistry())
}

func validOAuth() models.OAuthCredential {
	return models.OAuthCredential{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func validIdentity() models.FederatedIdentity {
	return models.FederatedIdentity{
		IdentityID: "eu-central-1:identity",
		Token:      "federation-token",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
}

func validTemporary() models.TemporaryCloudCredential {
	return models.TemporaryCloudCredential{
		AccessKeyID:  "AKID",
		SecretKey:    "secret",
		SessionToken: "session",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

// expiringTemporary is already inside the refresh buffer, so the next
// validity check treats it as stale.
func expiringTemporary() models.TemporaryCloudCredential {
	cred := validTemporary()
	cred.ExpiresAt = time.Now().Add(time.Minute)
	return cred
}
