package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/pkg/errors"
)

func cycleInfoWith(entry map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"cycleMyCreation": map[string]interface{}{
			"entityCycle": map[string]interface{}{
				"myCreationCycle": []interface{}{entry},
			},
		},
	}
}

func TestFavourite_FirstCycle(t *testing.T) {
	fav := models.Favourite{
		ID:   "fav-1",
		Name: "Sunday roast",
		CycleInfo: cycleInfoWith(map[string]interface{}{
			"CycleName":        "roast",
			"CavityTargetTemp": float64(200),
			"PreheatType":      "FAST_PREHEAT",
			"CookTimeSetTime":  float64(5400),
		}),
	}

	cycle, err := fav.FirstCycle()
	require.NoError(t, err)

	assert.Equal(t, "roast", cycle.RecipeName)
	require.NotNil(t, cycle.TargetTemperature)
	assert.Equal(t, float64(200), *cycle.TargetTemperature)
	assert.Equal(t, "FAST_PREHEAT", cycle.PreheatType)
	require.NotNil(t, cycle.CookTimeSeconds)
	assert.Equal(t, 5400, *cycle.CookTimeSeconds)
}

func TestFavourite_FirstCycle_PartialPreset(t *testing.T) {
	fav := models.Favourite{
		ID:        "fav-2",
		CycleInfo: cycleInfoWith(map[string]interface{}{"CycleName": "pizza"}),
	}

	cycle, err := fav.FirstCycle()
	require.NoError(t, err)

	assert.Equal(t, "pizza", cycle.RecipeName)
	assert.Nil(t, cycle.TargetTemperature)
	assert.Empty(t, cycle.PreheatType)
	assert.Nil(t, cycle.CookTimeSeconds)
}

func TestFavourite_FirstCycle_NumericString(t *testing.T) {
	fav := models.Favourite{
		ID: "fav-3",
		CycleInfo: cycleInfoWith(map[string]interface{}{
			"CavityTargetTemp": "180",
		}),
	}

	cycle, err := fav.FirstCycle()
	require.NoError(t, err)
	require.NotNil(t, cycle.TargetTemperature)
	assert.Equal(t, float64(180), *cycle.TargetTemperature)
}

func TestFavourite_FirstCycle_Incomplete(t *testing.T) {
	tests := []struct {
		name      string
		cycleInfo map[string]interface{}
	}{
		{"nil cycle info", nil},
		{"path missing", map[string]interface{}{"somethingElse": map[string]interface{}{}}},
		{
			"empty cycle list",
			map[string]interface{}{
				"cycleMyCreation": map[string]interface{}{
					"entityCycle": map[string]interface{}{
						"myCreationCycle": []interface{}{},
					},
				},
			},
		},
		{
			"cycle entry is not a mapping",
			map[string]interface{}{
				"cycleMyCreation": map[string]interface{}{
					"entityCycle": map[string]interface{}{
						"myCreationCycle": []interface{}{"bogus"},
					},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fav := models.Favourite{ID: "fav-x", CycleInfo: tt.cycleInfo}
			_, err := fav.FirstCycle()
			assert.True(t, errors.Is(err, errors.CodeIncompleteFavourite))
		})
	}
}
