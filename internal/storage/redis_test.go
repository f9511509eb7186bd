package storage

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htnguyen/novel-engine/pkg/state"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisStore("redis://"+mr.Addr(), 7, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func testGameState() *state.GameState {
	gs := state.NewGameState(state.DefaultStats(), "08:00")
	gs.Day = 3
	gs.Time = "19:00"
	gs.CurrentNodeID = "day3_evening"
	gs.SetFlag("focused_start")
	gs.AppendHistory("day3_start", "study", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	return gs
}

func TestRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore("not-a-url", 7, slog.Default())
	assert.Error(t, err)
}

func TestRedisStore_Ping(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	mr.Close()
	assert.Error(t, store.Ping(ctx))
}

func TestRedisStore_SnapshotRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	id := uuid.New()
	gs := testGameState()

	require.NoError(t, store.SaveSnapshot(ctx, id, gs))

	exists, err := store.SnapshotExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, gs.Day, loaded.Day)
	assert.Equal(t, gs.Time, loaded.Time)
	assert.Equal(t, gs.Stats, loaded.Stats)
	assert.Equal(t, gs.Flags, loaded.Flags)
	assert.Equal(t, gs.CurrentNodeID, loaded.CurrentNodeID)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, gs.History[0].ChoiceID, loaded.History[0].ChoiceID)
}

func TestRedisStore_LoadMissingSnapshot(t *testing.T) {
	store, _ := newTestRedisStore(t)

	loaded, err := store.LoadSnapshot(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing save is not an error")
}

func TestRedisStore_LoadCorruptedSnapshot(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "garbage"},
		{"missing stat field", `{"version":"novel-save-v1","state":{"day":2,"time":"08:00","stats":{"knowledge":50}}}`},
		{"day beyond story", `{"version":"novel-save-v1","state":{"day":42,"time":"08:00","stats":{"knowledge":50,"health":70,"stress":0,"consciousness":50,"sleepless_count":0,"money":200000}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, mr.Set("save:"+id.String(), tt.payload))

			loaded, err := store.LoadSnapshot(ctx, id)
			require.NoError(t, err, "a corrupted save is discarded, not surfaced")
			assert.Nil(t, loaded)
		})
	}
}

func TestRedisStore_DeleteSnapshot(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.SaveSnapshot(ctx, id, testGameState()))
	require.NoError(t, store.DeleteSnapshot(ctx, id))

	exists, err := store.SnapshotExists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting a missing snapshot is not an error.
	require.NoError(t, store.DeleteSnapshot(ctx, id))
}

func TestRedisStore_UnlocksRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	unlocked, err := store.LoadUnlocks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, unlocked, "no unlocks yet yields an empty list")

	require.NoError(t, store.SaveUnlocks(ctx, id, []string{"scholar", "survivor"}))

	unlocked, err = store.LoadUnlocks(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"scholar", "survivor"}, unlocked)

	// Unlocks live under their own key, separate from the snapshot.
	assert.False(t, mr.Exists("save:"+id.String()))
	assert.True(t, mr.Exists("achievements:"+id.String()))
}

func TestRedisStore_LoadInvalidUnlocks(t *testing.T) {
	store, mr := newTestRedisStore(t)
	id := uuid.New()
	require.NoError(t, mr.Set("achievements:"+id.String(), "{broken"))

	unlocked, err := store.LoadUnlocks(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestRedisStore_InfrastructureErrorSurfaces(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, store.SaveSnapshot(ctx, id, testGameState()))
	mr.Close()

	_, err := store.LoadSnapshot(ctx, id)
	assert.Error(t, err, "a down store is an error, unlike a missing save")

	assert.Error(t, store.SaveSnapshot(ctx, id, testGameState()))
}

func TestMockStore_MatchesRedisValidation(t *testing.T) {
	store := NewMockStore(7)
	ctx := context.Background()
	id := uuid.New()

	loaded, err := store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, store.SaveSnapshot(ctx, id, testGameState()))
	loaded, err = store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.Day)

	store.PutRaw(id, []byte("garbage"))
	loaded, err = store.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded, "mock discards corrupted saves the same way redis does")

	store.FailNext()
	assert.Error(t, store.SaveSnapshot(ctx, id, testGameState()))
	require.NoError(t, store.SaveSnapshot(ctx, id, testGameState()), "failure injection is one-shot")
}
