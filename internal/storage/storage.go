package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/htnguyen/novel-engine/pkg/state"
)

// SaveStore persists engine snapshots and achievement unlocks keyed by play
// session. Achievement unlocks live under their own key so they survive
// independently of the main save.
//
// LoadSnapshot returns (nil, nil) for a missing save and for a save that
// fails integrity validation; callers must treat nil as "no usable save" and
// never partially apply one.
type SaveStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Snapshot operations
	SaveSnapshot(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error
	SnapshotExists(ctx context.Context, id uuid.UUID) (bool, error)

	// Achievement unlock operations, persisted separately from the save
	SaveUnlocks(ctx context.Context, id uuid.UUID, unlocked []string) error
	LoadUnlocks(ctx context.Context, id uuid.UUID) ([]string, error)
}
