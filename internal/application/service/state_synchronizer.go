package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/internal/infrastructure/iot"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// Frame kinds, derived from the topic an inbound message arrived on.
const (
	FrameKindState    = "state"
	FrameKindResponse = "response"
)

// StateSynchronizer holds the canonical appliance state snapshot and applies
// partial merges from inbound frames. Merges happen only on the session's
// owner goroutine; the mutex exists so host-facing goroutines can take
// snapshot copies and register observers concurrently with merging.
type StateSynchronizer struct {
	log logger.Logger

	mu        sync.RWMutex
	snapshot  models.StateSnapshot
	observers map[int]chan models.StateSnapshot
	nextID    int
}

// NewStateSynchronizer creates a synchronizer with an empty snapshot.
func NewStateSynchronizer(log logger.Logger) *StateSynchronizer {
	return &StateSynchronizer{
		log:       log,
		snapshot:  models.NewStateSnapshot(),
		observers: make(map[int]chan models.StateSnapshot),
	}
}

// ApplyInbound decodes one inbound frame and merges it into the snapshot.
// Frames on the state topic carry the partial mapping at the top level;
// frames on the command-response topic wrap it inside a payload field.
// Undecodable frames are noise on a best-effort channel: they are logged and
// dropped, the snapshot stays untouched.
func (s *StateSynchronizer) ApplyInbound(ctx context.Context, topic string, raw []byte) error {
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.log.Warn(ctx, "dropping undecodable frame", logger.Fields{
			"topic": topic,
			"error": err.Error(),
		})
		return errors.ErrMalformedMessage(topic).WithCause(err)
	}

	update := decoded
	if !iot.IsStateUpdateTopic(topic) {
		wrapped, ok := decoded["payload"].(map[string]interface{})
		if !ok {
			s.log.Warn(ctx, "dropping response frame without payload mapping", logger.Fields{
				"topic": topic,
			})
			return errors.ErrMalformedMessage(topic)
		}
		update = wrapped
	}

	s.mu.Lock()
	s.snapshot.Merge(update)
	full := s.snapshot.Copy()
	s.mu.Unlock()

	s.notify(full)
	return nil
}

// Snapshot returns a deep value copy of the current state.
func (s *StateSynchronizer) Snapshot() models.StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Copy()
}

// Subscribe registers a change observer. Each successful merge delivers the
// full updated snapshot, never a delta. A slow observer misses notifications
// rather than stalling the merge path; it can always re-read via Snapshot.
// The returned func deregisters the observer and closes its channel.
func (s *StateSynchronizer) Subscribe() (<-chan models.StateSnapshot, func()) {
	ch := make(chan models.StateSnapshot, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *StateSynchronizer) notify(full models.StateSnapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.observers {
		select {
		case ch <- full:
		default:
			// Replace the stale pending snapshot with the current one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- full:
			default:
			}
		}
	}
}

// FrameKind classifies a topic for metrics.
func FrameKind(topic string) string {
	if iot.IsStateUpdateTopic(topic) {
		return FrameKindState
	}
	return FrameKindResponse
}
