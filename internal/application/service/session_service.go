package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hearthware/ovenlink/internal/config"
	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/internal/infrastructure/iot"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// Events handed from transport callback threads into the owner loop.
type inboundFrame struct {
	topic   string
	payload []byte
}

type channelInterrupted struct {
	err error
}

type channelResumed struct {
	sessionPreserved bool
}

// request carries one host operation into the owner loop and its result back.
type request struct {
	fn    func(ctx context.Context) error
	reply chan error
}

// SessionParams collects everything a session needs at pairing time.
type SessionParams struct {
	Identity models.ApplianceIdentity
	Login    AccountLogin
	Stored   models.OAuthCredential
	Persist  PersistFunc
	Gateway  domainsvc.CloudGateway
	Channel  domainsvc.DeviceChannel
	Config   *config.SessionConfig
	Logger   logger.Logger
	Metrics  *monitoring.Metrics
}

// Session is one appliance's composition root. A single owner goroutine
// serializes every mutation of credentials, connection handle, and state
// snapshot; transport callbacks and host operations reach it only through
// channels. That hand-off boundary is the one concurrency rule everything
// here depends on.
type Session struct {
	identity   models.ApplianceIdentity
	cfg        *config.SessionConfig
	creds      *CredentialChain
	channel    domainsvc.DeviceChannel
	state      *StateSynchronizer
	dispatcher *CommandDispatcher
	favourites *FavouritesService
	log        logger.Logger
	metrics    *monitoring.Metrics

	events   chan interface{}
	requests chan request
	cancel   context.CancelFunc
	done     chan struct{}

	clientID string
}

// NewSession wires the session's components. Start must be called before any
// other method.
func NewSession(p SessionParams) *Session {
	log := p.Logger.WithFields(logger.Fields{
		"said":  p.Identity.SAID,
		"model": p.Identity.Model,
	})

	queueSize := p.Config.EventQueueSize
	if queueSize <= 0 {
		queueSize = constants.DefaultEventQueueSize
	}

	creds := NewCredentialChain(p.Gateway, p.Login, p.Stored, p.Config.RefreshBuffer, p.Persist, log, p.Metrics)
	dispatcher := NewCommandDispatcher(p.Identity, p.Channel, log, p.Metrics)
	favourites := NewFavouritesService(p.Gateway, dispatcher, p.Identity.SAID, creds.AccessToken, log)

	return &Session{
		identity:   p.Identity,
		cfg:        p.Config,
		creds:      creds,
		channel:    p.Channel,
		state:      NewStateSynchronizer(log),
		dispatcher: dispatcher,
		favourites: favourites,
		log:        log,
		metrics:    p.Metrics,
		events:     make(chan interface{}, queueSize),
		requests:   make(chan request),
		done:       make(chan struct{}),
	}
}

// Identity returns the appliance this session serves.
func (s *Session) Identity() models.ApplianceIdentity {
	return s.identity
}

// Start performs the full setup sequence and, on success, launches the owner
// loop. A failure at the credential or connect stage aborts the whole start
// so the appliance never becomes available half-wired.
func (s *Session) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session.start")
	defer span.End()

	if err := s.creds.EnsureValid(ctx); err != nil {
		return err
	}
	if err := s.connect(ctx); err != nil {
		return err
	}

	// A missing favourites list or a lost initial state query degrade the
	// session, they do not kill it. Both recover on later ticks.
	if err := s.favourites.Refresh(ctx); err == nil {
		s.log.Debug(ctx, "favourites preloaded")
	}
	if err := s.dispatcher.SendGetState(ctx); err != nil {
		s.log.Warn(ctx, "initial state query failed", logger.Fields{"error": err.Error()})
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(runCtx)

	s.log.Info(ctx, "session started")
	return nil
}

// Close stops the owner loop and tears the channel down. It is safe to call
// once; further host operations fail with session_not_found.
func (s *Session) Close(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ================================================================================
// Host-facing surface
// ================================================================================

// Snapshot returns a value copy of the current appliance state.
func (s *Session) Snapshot() models.StateSnapshot {
	return s.state.Snapshot()
}

// SubscribeState registers a full-snapshot change observer.
func (s *Session) SubscribeState() (<-chan models.StateSnapshot, func()) {
	return s.state.Subscribe()
}

// ListFavourites returns the flattened favourites list.
func (s *Session) ListFavourites(ctx context.Context) ([]models.Favourite, error) {
	var favourites []models.Favourite
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		favourites, err = s.favourites.List(ctx)
		return err
	})
	return favourites, err
}

// RefreshFavourites re-fetches the favourites list.
func (s *Session) RefreshFavourites(ctx context.Context) error {
	return s.do(ctx, s.favourites.Refresh)
}

// TriggerFavourite starts the cycle stored in the given favourite.
func (s *Session) TriggerFavourite(ctx context.Context, id string) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.favourites.Trigger(ctx, id)
	})
}

// CancelActiveCycle cancels the running cycle of the primary cavity. The
// cook-session id comes from the snapshot; when the appliance has not
// reported one, a fresh id is sent, which the appliance treats as
// cancel-whatever-is-running.
func (s *Session) CancelActiveCycle(ctx context.Context) error {
	return s.do(ctx, func(ctx context.Context) error {
		sessionID := s.state.Snapshot().ActiveSessionID()
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		return s.dispatcher.Send(ctx, constants.AddresseePrimaryCavity, constants.CommandCancel,
			map[string]interface{}{constants.FieldSessionID: sessionID})
	})
}

// SetField writes one settable field on the primary cavity, e.g. the light.
func (s *Session) SetField(ctx context.Context, name string, value interface{}) error {
	if name == "" {
		return errors.New(errors.CodeInvalidRequest, "field name is required")
	}
	return s.do(ctx, func(ctx context.Context) error {
		return s.dispatcher.Send(ctx, constants.AddresseePrimaryCavity, constants.CommandSet,
			map[string]interface{}{name: value})
	})
}

// do hands one operation to the owner loop and waits for its result.
func (s *Session) do(ctx context.Context, fn func(ctx context.Context) error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return errors.ErrSessionNotFound(s.identity.SAID)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ================================================================================
// Owner loop
// ================================================================================

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	interval := s.cfg.HealthCheckInterval
	if interval <= 0 {
		interval = constants.DefaultHealthCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			return
		case ev := <-s.events:
			s.handleEvent(ctx, ev)
		case req := <-s.requests:
			req.reply <- req.fn(ctx)
		case <-ticker.C:
			s.healthCheck(ctx)
		}
	}
}

func (s *Session) handleEvent(ctx context.Context, ev interface{}) {
	switch e := ev.(type) {
	case inboundFrame:
		err := s.state.ApplyInbound(ctx, e.topic, e.payload)
		s.metrics.RecordInboundFrame(FrameKind(e.topic), err)
	case channelInterrupted:
		// The transport retries at the link layer on its own.
		s.log.Warn(ctx, "device channel interrupted", logger.Fields{"error": e.err.Error()})
	case channelResumed:
		if e.sessionPreserved {
			s.log.Info(ctx, "device channel resumed with session intact")
			return
		}
		// A lost broker session means lost subscriptions.
		s.log.Info(ctx, "device channel resumed without session, resubscribing")
		if err := s.subscribeTopics(ctx); err != nil {
			s.log.Error(ctx, "resubscribe after resume failed", err)
			return
		}
		s.metrics.RecordResubscribe()
	}
}

// healthCheck revalidates credentials and rebuilds the channel when its
// signing credentials went stale or the handle is gone, then re-issues a
// state query so state does not go silently stale if push delivery is lost.
func (s *Session) healthCheck(ctx context.Context) {
	credsWereValid := s.creds.TemporaryValid()
	if err := s.creds.EnsureValid(ctx); err != nil {
		s.log.Warn(ctx, "credential revalidation failed, retrying next tick",
			logger.Fields{"error": err.Error()})
		return
	}

	if !credsWereValid || !s.channel.IsConnected() {
		s.log.Info(ctx, "rebuilding device channel", logger.Fields{
			"credentials_stale": !credsWereValid,
			"connected":         s.channel.IsConnected(),
		})
		s.teardown()
		if err := s.connect(ctx); err != nil {
			s.log.Warn(ctx, "channel rebuild failed, retrying next tick",
				logger.Fields{"error": err.Error()})
			return
		}
	}

	if err := s.dispatcher.SendGetState(ctx); err != nil {
		s.log.Warn(ctx, "periodic state query failed", logger.Fields{"error": err.Error()})
	}
}

// connect opens the channel under a freshly derived client id and subscribes
// to both topics. The handle and its signing credentials rotate together.
func (s *Session) connect(ctx context.Context) error {
	clientID := s.creds.Identity().NewClientID()

	events := domainsvc.ChannelEvents{
		OnMessage: func(topic string, payload []byte) {
			s.enqueue(inboundFrame{topic: topic, payload: payload}, true)
		},
		OnInterrupted: func(err error) {
			s.enqueue(channelInterrupted{err: err}, false)
		},
		OnResumed: func(sessionPreserved bool) {
			s.enqueue(channelResumed{sessionPreserved: sessionPreserved}, false)
		},
	}

	err := s.channel.Connect(ctx, s.creds.Temporary(), clientID, events)
	s.metrics.RecordChannelConnect(err)
	if err != nil {
		return err
	}

	s.clientID = clientID
	s.dispatcher.Bind(clientID)
	return s.subscribeTopics(ctx)
}

func (s *Session) subscribeTopics(ctx context.Context) error {
	return s.channel.Subscribe(ctx,
		iot.StateUpdateTopic(s.identity.Model, s.identity.SAID),
		iot.CommandResponseTopic(s.identity.Model, s.identity.SAID, s.clientID),
	)
}

func (s *Session) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DisconnectTimeout)
	defer cancel()
	s.channel.Disconnect(ctx)
}

// enqueue hands a transport callback into the owner loop. Inbound frames are
// droppable when the queue is full (the periodic state query recovers any
// lost field); lifecycle events are not, losing a resume would leak a dead
// subscription set.
func (s *Session) enqueue(ev interface{}, droppable bool) {
	if droppable {
		select {
		case s.events <- ev:
		default:
			s.log.Warn(context.Background(), "event queue full, dropping inbound frame")
		}
		return
	}
	select {
	case s.events <- ev:
	case <-s.done:
	}
}
