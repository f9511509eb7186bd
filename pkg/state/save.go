package state

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// SaveVersion is the current persisted snapshot format version.
const SaveVersion = "novel-save-v1"

// SavePayload wraps a snapshot with format metadata for persistence.
// Conditions on content are data (see pkg/conditionals), so the snapshot
// itself is fully serializable; only the state listed here crosses the
// persistence boundary.
type SavePayload struct {
	Version string     `json:"version"`
	SavedAt time.Time  `json:"saved_at"`
	State   *GameState `json:"state"`
}

// NewSavePayload wraps a snapshot for persistence.
func NewSavePayload(gs *GameState, at time.Time) *SavePayload {
	return &SavePayload{
		Version: SaveVersion,
		SavedAt: at,
		State:   gs,
	}
}

// rawSnapshot mirrors GameState with optional fields, so validation can tell
// a missing required field apart from a zero value.
type rawSnapshot struct {
	ID            *uuid.UUID          `json:"id"`
	Day           *int                `json:"day"`
	Time          *string             `json:"time"`
	Stats         map[string]*float64 `json:"stats"`
	Flags         map[string]bool     `json:"flags"`
	CurrentNodeID *string             `json:"current_node_id"`
	EndingID      string              `json:"ending_id"`
	History       []HistoryEntry      `json:"history"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type rawPayload struct {
	Version string          `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	State   json.RawMessage `json:"state"`
}

// ParseSavePayload decodes and validates a persisted snapshot. It returns an
// error on any validation failure, never a partially-correct snapshot:
// day must be within [1, maxDay], time well-formed, all stat fields present
// and finite, flags a map and history a list.
//
// Older format versions are merged best-effort: optional fields fall back to
// defaults, but the required fields above are still enforced.
func ParseSavePayload(data []byte, maxDay int) (*GameState, error) {
	var payload rawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse save payload: %w", err)
	}
	if payload.Version == "" {
		return nil, fmt.Errorf("save payload missing format version")
	}
	if len(payload.State) == 0 {
		return nil, fmt.Errorf("save payload missing state")
	}

	var raw rawSnapshot
	if err := json.Unmarshal(payload.State, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	if raw.Day == nil || *raw.Day < 1 || *raw.Day > maxDay {
		return nil, fmt.Errorf("snapshot day out of range")
	}
	if raw.Time == nil || !IsValidTime(*raw.Time) {
		return nil, fmt.Errorf("snapshot time label malformed")
	}
	if raw.Stats == nil {
		return nil, fmt.Errorf("snapshot missing stats")
	}

	stats := Stats{}
	for _, key := range StatKeys {
		v, ok := raw.Stats[key]
		if !ok || v == nil {
			return nil, fmt.Errorf("snapshot missing stat field %q", key)
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil, fmt.Errorf("snapshot stat field %q is not finite", key)
		}
		// Re-clamp on load so a hand-edited save cannot violate stat ranges.
		stats = stats.SetStat(key, *v)
	}

	gs := &GameState{
		Day:       *raw.Day,
		Time:      *raw.Time,
		Stats:     stats,
		Flags:     raw.Flags,
		EndingID:  raw.EndingID,
		History:   raw.History,
		UpdatedAt: raw.UpdatedAt,
	}
	if raw.ID != nil {
		gs.ID = *raw.ID
	} else {
		gs.ID = uuid.New()
	}
	if raw.CurrentNodeID != nil {
		gs.CurrentNodeID = *raw.CurrentNodeID
	}
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	if gs.History == nil {
		gs.History = make([]HistoryEntry, 0)
	}

	return gs, nil
}
