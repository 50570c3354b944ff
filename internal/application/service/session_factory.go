package service

import (
	"context"

	"github.com/hearthware/ovenlink/internal/config"
	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// ChannelFactory builds one fresh device channel per session.
type ChannelFactory func() domainsvc.DeviceChannel

// SessionFactory assembles sessions from the process-wide collaborators: the
// shared cloud gateway, the channel factory, configuration, and telemetry.
type SessionFactory struct {
	gateway  domainsvc.CloudGateway
	channels ChannelFactory
	cfg      *config.SessionConfig
	log      logger.Logger
	metrics  *monitoring.Metrics
}

// NewSessionFactory creates the factory used by the pairing endpoint.
func NewSessionFactory(
	gateway domainsvc.CloudGateway,
	channels ChannelFactory,
	cfg *config.SessionConfig,
	log logger.Logger,
	metrics *monitoring.Metrics,
) *SessionFactory {
	return &SessionFactory{
		gateway:  gateway,
		channels: channels,
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
	}
}

// New builds an unstarted session for one appliance. The default persistence
// callback logs the rotated token pair so the host can pick it up; callers
// may pass their own.
func (f *SessionFactory) New(
	identity models.ApplianceIdentity,
	login AccountLogin,
	stored models.OAuthCredential,
	persist PersistFunc,
) *Session {
	if persist == nil {
		log := f.log
		persist = func(ctx context.Context, cred models.OAuthCredential) {
			log.Info(ctx, "oauth credential rotated", logger.Fields{
				"said":       identity.SAID,
				"expires_at": cred.ExpiresAt,
			})
		}
	}

	return NewSession(SessionParams{
		Identity: identity,
		Login:    login,
		Stored:   stored,
		Persist:  persist,
		Gateway:  f.gateway,
		Channel:  f.channels(),
		Config:   f.cfg,
		Logger:   f.log,
		Metrics:  f.metrics,
	})
}
