package service

import (
	"context"
	"sync"

	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// Registry owns the active sessions, one per paired appliance, keyed by SAID.
// Create and destroy are tied to the host's pair/unpair calls; nothing is
// created implicitly.
type Registry struct {
	log     logger.Logger
	metrics *monitoring.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger, metrics *monitoring.Metrics) *Registry {
	return &Registry{
		log:      log,
		metrics:  metrics,
		sessions: make(map[string]*Session),
	}
}

// Add registers a started session. Pairing the same appliance twice is a
// caller error.
func (r *Registry) Add(session *Session) error {
	said := session.Identity().SAID

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[said]; exists {
		return errors.New(errors.CodeInvalidRequest, "appliance %s is already paired", said)
	}
	r.sessions[said] = session
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return nil
}

// Get returns the session for the given appliance.
func (r *Registry) Get(said string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[said]
	if !ok {
		return nil, errors.ErrSessionNotFound(said)
	}
	return session, nil
}

// List returns the identities of all active sessions.
func (r *Registry) List() []models.ApplianceIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identities := make([]models.ApplianceIdentity, 0, len(r.sessions))
	for _, session := range r.sessions {
		identities = append(identities, session.Identity())
	}
	return identities
}

// Remove deregisters and closes the session for the given appliance.
func (r *Registry) Remove(ctx context.Context, said string) error {
	r.mu.Lock()
	session, ok := r.sessions[said]
	if ok {
		delete(r.sessions, said)
		r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	if !ok {
		return errors.ErrSessionNotFound(said)
	}
	return session.Close(ctx)
}

// Shutdown closes every session. Used at daemon exit.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	r.sessions = make(map[string]*Session)
	r.metrics.ActiveSessions.Set(0)
	r.mu.Unlock()

	for _, session := range sessions {
		if err := session.Close(ctx); err != nil {
			r.log.Warn(ctx, "session close timed out", logger.Fields{
				"said":  session.Identity().SAID,
				"error": err.Error(),
			})
		}
	}
}
