package models

import (
	"strconv"

	"github.com/hearthware/ovenlink/pkg/errors"
)

// Favourite is one saved cook preset, flattened from the cloud's nested
// favourite-group response. Read-only to consumers; the whole list is replaced
// on each refresh fetch.
type Favourite struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Cavity    string                 `json:"cavity"`
	CycleInfo map[string]interface{} `json:"cycleInfo"`
}

// CycleDefinition is the recognized subset of one cycle entry inside a
// favourite. Nil pointers mean the preset omits that field, which is valid;
// the outgoing command simply leaves it out.
type CycleDefinition struct {
	RecipeName        string
	TargetTemperature *float64
	PreheatType       string
	CookTimeSeconds   *int
}

// cycleInfoPath is the only supported location of cycle entries inside
// CycleInfo. Version 1 of the cloud schema:
//
//	cycleInfo.cycleMyCreation.entityCycle.myCreationCycle[0]
//
// Any schema drift fails loudly with incomplete_favourite instead of
// producing a partial command.
var cycleInfoPath = []string{"cycleMyCreation", "entityCycle", "myCreationCycle"}

// FirstCycle walks the fixed cycle path and decodes the first cycle entry.
// It returns incomplete_favourite when the path is absent or resolves to an
// empty list.
func (f Favourite) FirstCycle() (CycleDefinition, error) {
	node := interface{}(f.CycleInfo)
	for _, key := range cycleInfoPath {
		m, ok := node.(map[string]interface{})
		if !ok {
			return CycleDefinition{}, errors.ErrIncompleteFavourite(f.ID)
		}
		node = m[key]
	}

	cycles, ok := node.([]interface{})
	if !ok || len(cycles) == 0 {
		return CycleDefinition{}, errors.ErrIncompleteFavourite(f.ID)
	}
	entry, ok := cycles[0].(map[string]interface{})
	if !ok {
		return CycleDefinition{}, errors.ErrIncompleteFavourite(f.ID)
	}

	def := CycleDefinition{}
	if name, ok := entry["CycleName"].(string); ok {
		def.RecipeName = name
	}
	if temp, ok := asFloat(entry["CavityTargetTemp"]); ok {
		def.TargetTemperature = &temp
	}
	if preheat, ok := entry["PreheatType"].(string); ok {
		def.PreheatType = preheat
	}
	if secs, ok := asFloat(entry["CookTimeSetTime"]); ok {
		n := int(secs)
		def.CookTimeSeconds = &n
	}
	return def, nil
}

// asFloat accepts the numeric encodings the cloud is known to emit: JSON
// numbers and numeric strings.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
