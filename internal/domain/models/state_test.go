package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/pkg/constants"
)

func TestStateSnapshot_Merge(t *testing.T) {
	tests := []struct {
		name    string
		updates []map[string]interface{}
		want    map[string]interface{}
	}{
		{
			name: "partial update keeps sibling fields",
			updates: []map[string]interface{}{
				{"primaryCavity": map[string]interface{}{"cavityState": "preheating"}},
				{"primaryCavity": map[string]interface{}{"ovenDisplayTemperature": float64(180)}},
			},
			want: map[string]interface{}{
				"primaryCavity": map[string]interface{}{
					"cavityState":            "preheating",
					"ovenDisplayTemperature": float64(180),
				},
			},
		},
		{
			name: "last writer wins per field",
			updates: []map[string]interface{}{
				{"primaryCavity": map[string]interface{}{"cavityState": "cooking", "doorOpen": false}},
				{"primaryCavity": map[string]interface{}{"cavityState": "idle"}},
			},
			want: map[string]interface{}{
				"primaryCavity": map[string]interface{}{
					"cavityState": "idle",
					"doorOpen":    false,
				},
			},
		},
		{
			name: "scalar replaces mapping outright",
			updates: []map[string]interface{}{
				{"mode": map[string]interface{}{"bake": true}},
				{"mode": "broil"},
			},
			want: map[string]interface{}{"mode": "broil"},
		},
		{
			name: "arrays are overwritten not merged",
			updates: []map[string]interface{}{
				{"errors": []interface{}{"e1", "e2"}},
				{"errors": []interface{}{"e3"}},
			},
			want: map[string]interface{}{"errors": []interface{}{"e3"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := models.NewStateSnapshot()
			for _, update := range tt.updates {
				snapshot.Merge(update)
			}
			assert.Equal(t, tt.want, map[string]interface{}(snapshot))
		})
	}
}

func TestStateSnapshot_CopyIsDetached(t *testing.T) {
	snapshot := models.NewStateSnapshot()
	snapshot.Merge(map[string]interface{}{
		"primaryCavity": map[string]interface{}{"cavityState": "cooking"},
	})

	copied := snapshot.Copy()
	snapshot.Merge(map[string]interface{}{
		"primaryCavity": map[string]interface{}{"cavityState": "idle"},
	})

	assert.Equal(t, "cooking", copied["primaryCavity"].(map[string]interface{})["cavityState"])
}

func TestStateSnapshot_CopyDetachesNestedArrays(t *testing.T) {
	snapshot := models.NewStateSnapshot()
	snapshot.Merge(map[string]interface{}{
		"programs": []interface{}{
			[]interface{}{map[string]interface{}{"step": "preheat"}},
		},
	})

	copied := snapshot.Copy()
	live := snapshot["programs"].([]interface{})[0].([]interface{})[0].(map[string]interface{})
	live["step"] = "broil"

	detached := copied["programs"].([]interface{})[0].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "preheat", detached["step"])
}

func TestStateSnapshot_Accessors(t *testing.T) {
	snapshot := models.NewStateSnapshot()
	assert.Empty(t, snapshot.ActiveSessionID())
	assert.Empty(t, string(snapshot.CavityState()))

	snapshot.Merge(map[string]interface{}{
		"primaryCavity": map[string]interface{}{
			"sessionId":   "cook-42",
			"cavityState": "preheating",
		},
	})

	assert.Equal(t, "cook-42", snapshot.ActiveSessionID())
	assert.Equal(t, constants.CavityStatePreheating, snapshot.CavityState())
	assert.True(t, constants.ActiveCavityStates[snapshot.CavityState()])
}
