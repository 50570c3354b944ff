package models

import (
	"github.com/hearthware/ovenlink/pkg/constants"
)

// StateSnapshot is the canonical, ever-accumulating appliance state. It is
// mutated only through Merge and never partially rolled back; fields absent
// from an update keep their last known value, which is what makes the
// at-least-once, unordered channel safe to consume.
type StateSnapshot map[string]interface{}

// NewStateSnapshot creates an empty snapshot.
func NewStateSnapshot() StateSnapshot {
	return make(StateSnapshot)
}

// Merge applies a partial update. Map-valued fields are merged recursively so
// a frame touching one cavity field leaves its siblings intact; scalar and
// array values are overwritten outright.
func (s StateSnapshot) Merge(update map[string]interface{}) {
	mergeMaps(s, update)
}

func mergeMaps(dst, src map[string]interface{}) {
	for key, value := range src {
		if srcMap, ok := value.(map[string]interface{}); ok {
			if dstMap, ok := dst[key].(map[string]interface{}); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
			dst[key] = deepCopyMap(srcMap)
			continue
		}
		dst[key] = value
	}
}

// Copy returns a deep value copy safe to hand to observers.
func (s StateSnapshot) Copy() StateSnapshot {
	return deepCopyMap(s)
}

func deepCopyMap(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for key, value := range src {
		dst[key] = deepCopyValue(value)
	}
	return dst
}

func deepCopyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return deepCopyMap(v)
	case []interface{}:
		cp := make([]interface{}, len(v))
		for i, item := range v {
			cp[i] = deepCopyValue(item)
		}
		return cp
	default:
		return value
	}
}

// PrimaryCavity returns the primary cavity sub-mapping, or an empty map when
// the appliance has not reported it yet.
func (s StateSnapshot) PrimaryCavity() map[string]interface{} {
	if cavity, ok := s[constants.FieldPrimaryCavity].(map[string]interface{}); ok {
		return cavity
	}
	return map[string]interface{}{}
}

// ActiveSessionID returns the cook-session id of the primary cavity, or ""
// when none is reported.
func (s StateSnapshot) ActiveSessionID() string {
	if id, ok := s.PrimaryCavity()[constants.FieldSessionID].(string); ok {
		return id
	}
	return ""
}

// CavityState returns the primary cavity's cooking state, or "" when unknown.
func (s StateSnapshot) CavityState() constants.CavityState {
	if state, ok := s.PrimaryCavity()[constants.FieldCavityState].(string); ok {
		return constants.CavityState(state)
	}
	return ""
}
