package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxDay = 7

func validSnapshotJSON() string {
	return `{
		"version": "novel-save-v1",
		"saved_at": "2024-06-01T12:00:00Z",
		"state": {
			"id": "7e6f9a3e-4c2b-4c1a-9d6f-1a2b3c4d5e6f",
			"day": 3,
			"time": "19:00",
			"stats": {"knowledge": 62, "health": 55, "stress": 30, "consciousness": 50, "sleepless_count": 1, "money": 150000},
			"flags": {"focused_start": true},
			"current_node_id": "day3_evening",
			"history": [{"day": 1, "node_id": "day1_start", "choice_id": "d1_calm", "timestamp": "2024-06-01T11:00:00Z"}]
		}
	}`
}

func TestParseSavePayload_RoundTrip(t *testing.T) {
	gs := NewGameState(DefaultStats(), "08:00")
	gs.Day = 4
	gs.Time = "12:00"
	gs.CurrentNodeID = "day4_noon"
	gs.SetFlag("focused_start")
	gs.AppendHistory("day4_start", "d4_study", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	gs.Stats = gs.Stats.ApplyDelta(StatKnowledge, 12)

	data, err := json.Marshal(NewSavePayload(gs, time.Now()))
	require.NoError(t, err)

	loaded, err := ParseSavePayload(data, testMaxDay)
	require.NoError(t, err)

	assert.Equal(t, gs.Day, loaded.Day)
	assert.Equal(t, gs.Time, loaded.Time)
	assert.Equal(t, gs.Stats, loaded.Stats)
	assert.Equal(t, gs.Flags, loaded.Flags)
	assert.Equal(t, gs.CurrentNodeID, loaded.CurrentNodeID)
	assert.Equal(t, gs.EndingID, loaded.EndingID)
	require.Len(t, loaded.History, len(gs.History))
	assert.Equal(t, gs.History[0], loaded.History[0])
}

func TestParseSavePayload_Valid(t *testing.T) {
	gs, err := ParseSavePayload([]byte(validSnapshotJSON()), testMaxDay)
	require.NoError(t, err)

	assert.Equal(t, 3, gs.Day)
	assert.Equal(t, "19:00", gs.Time)
	assert.Equal(t, 62, gs.Stats.Knowledge)
	assert.True(t, gs.Flags["focused_start"])
	assert.Equal(t, "day3_evening", gs.CurrentNodeID)
	assert.Len(t, gs.History, 1)
}

func TestParseSavePayload_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "missing stat field",
			payload: `{"version":"novel-save-v1","state":{"day":2,"time":"08:00","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"money":200000},"flags":{},"history":[]}}`,
		},
		{
			name:    "day out of range",
			payload: `{"version":"novel-save-v1","state":{"day":99,"time":"08:00","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"sleepless_count":0,"money":200000}}}`,
		},
		{
			name:    "day below range",
			payload: `{"version":"novel-save-v1","state":{"day":0,"time":"08:00","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"sleepless_count":0,"money":200000}}}`,
		},
		{
			name:    "malformed time",
			payload: `{"version":"novel-save-v1","state":{"day":2,"time":"25:99","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"sleepless_count":0,"money":200000}}}`,
		},
		{
			name:    "missing version",
			payload: `{"state":{"day":2,"time":"08:00","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"sleepless_count":0,"money":200000}}}`,
		},
		{
			name:    "missing state",
			payload: `{"version":"novel-save-v1"}`,
		},
		{
			name:    "flags not a map",
			payload: `{"version":"novel-save-v1","state":{"day":2,"time":"08:00","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"sleepless_count":0,"money":200000},"flags":["focused_start"]}}`,
		},
		{
			name:    "history not a list",
			payload: `{"version":"novel-save-v1","state":{"day":2,"time":"08:00","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"sleepless_count":0,"money":200000},"history":{"day":1}}}`,
		},
		{
			name:    "not json",
			payload: `day=2;time=08:00`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, err := ParseSavePayload([]byte(tt.payload), testMaxDay)
			assert.Error(t, err)
			assert.Nil(t, gs, "a failed validation must never return a partial snapshot")
		})
	}
}

func TestParseSavePayload_OlderVersionMergesOptionalFields(t *testing.T) {
	// An older payload without flags, history, or current node is usable;
	// the required stat fields are still enforced.
	payload := `{
		"version": "novel-save-v0",
		"state": {
			"day": 2,
			"time": "08:00",
			"stats": {"knowledge": 50, "health": 70, "stress": 0, "consciousness": 50, "sleepless_count": 0, "money": 200000}
		}
	}`

	gs, err := ParseSavePayload([]byte(payload), testMaxDay)
	require.NoError(t, err)

	assert.NotNil(t, gs.Flags)
	assert.Empty(t, gs.Flags)
	assert.NotNil(t, gs.History)
	assert.Empty(t, gs.History)
	assert.Empty(t, gs.CurrentNodeID)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", gs.ID.String())
}

func TestParseSavePayload_ReclampsOutOfRangeStats(t *testing.T) {
	payload := `{
		"version": "novel-save-v1",
		"state": {
			"day": 2,
			"time": "08:00",
			"stats": {"knowledge": 500, "health": -10, "stress": 0, "consciousness": 50, "sleepless_count": 0, "money": 200000}
		}
	}`

	gs, err := ParseSavePayload([]byte(payload), testMaxDay)
	require.NoError(t, err)
	assert.Equal(t, 100, gs.Stats.Knowledge)
	assert.Equal(t, 0, gs.Stats.Health)
}
