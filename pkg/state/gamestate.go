package state

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records one applied choice, for the ending recap and analytics.
type HistoryEntry struct {
	Day       int       `json:"day"`
	NodeID    string    `json:"node_id"`
	ChoiceID  string    `json:"choice_id"`
	Timestamp time.Time `json:"timestamp"`
}

// GameState is the full mutable state of one play session. It is owned
// exclusively by the engine facade and mutated only through the documented
// action entry points.
type GameState struct {
	ID            uuid.UUID       `json:"id"` // Unique ID per session
	Day           int             `json:"day"`
	Time          string          `json:"time"` // e.g. "08:00", "19:00", "00:00"
	Stats         Stats           `json:"stats"`
	Flags         map[string]bool `json:"flags,omitempty"`
	CurrentNodeID string          `json:"current_node_id,omitempty"`
	EndingID      string          `json:"ending_id,omitempty"` // Non-empty signals game over
	History       []HistoryEntry  `json:"history,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
}

// NewGameState creates a fresh session starting on day 1 with the given
// initial stat vector.
func NewGameState(initial Stats, startTime string) *GameState {
	if startTime == "" {
		startTime = TimeMorning
	}
	return &GameState{
		ID:      uuid.New(),
		Day:     1,
		Time:    startTime,
		Stats:   initial,
		Flags:   make(map[string]bool),
		History: make([]HistoryEntry, 0),
	}
}

// IsEnded reports whether an ending has been reached. Once set, choice
// application is rejected until an explicit reset.
func (gs *GameState) IsEnded() bool {
	return gs.EndingID != ""
}

// SetFlag marks a flag true. Flags are append-only during normal play;
// there is no clearing path in the choice pipeline.
func (gs *GameState) SetFlag(name string) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	gs.Flags[name] = true
}

// RemoveFlag clears a flag. Tooling/debug only; never called during play.
func (gs *GameState) RemoveFlag(name string) {
	delete(gs.Flags, name)
}

// AppendHistory records an applied choice.
func (gs *GameState) AppendHistory(nodeID, choiceID string, at time.Time) {
	gs.History = append(gs.History, HistoryEntry{
		Day:       gs.Day,
		NodeID:    nodeID,
		ChoiceID:  choiceID,
		Timestamp: at,
	})
}

// conditionals.GameStateView implementation

func (gs *GameState) GetDay() int {
	return gs.Day
}

func (gs *GameState) GetTime() string {
	return gs.Time
}

func (gs *GameState) GetStat(key string) int {
	return gs.Stats.Get(key)
}

func (gs *GameState) GetFlag(name string) bool {
	return gs.Flags[name]
}
