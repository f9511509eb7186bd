package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/htnguyen/novel-engine/pkg/state"
)

// MockStore is an in-memory SaveStore for tests. It round-trips snapshots
// through the same versioned JSON payload as the Redis store, so validation
// behavior matches.
type MockStore struct {
	mu       sync.RWMutex
	saves    map[uuid.UUID][]byte
	unlocks  map[uuid.UUID][]string
	maxDay   int
	failNext bool // When set, the next snapshot operation fails once
}

var _ SaveStore = (*MockStore)(nil)

// NewMockStore creates an in-memory save store validating against maxDay.
func NewMockStore(maxDay int) *MockStore {
	return &MockStore{
		saves:   make(map[uuid.UUID][]byte),
		unlocks: make(map[uuid.UUID][]string),
		maxDay:  maxDay,
	}
}

// FailNext makes the next snapshot operation return an error, for testing
// persistence-failure fallbacks.
func (m *MockStore) FailNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = true
}

func (m *MockStore) takeFailure() bool {
	if m.failNext {
		m.failNext = false
		return true
	}
	return false
}

func (m *MockStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) SaveSnapshot(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.takeFailure() {
		return errMockFailure
	}

	gs.UpdatedAt = time.Now()
	data, err := json.Marshal(state.NewSavePayload(gs, gs.UpdatedAt))
	if err != nil {
		return err
	}
	m.saves[id] = data
	return nil
}

func (m *MockStore) LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.takeFailure() {
		return nil, errMockFailure
	}

	data, ok := m.saves[id]
	if !ok {
		return nil, nil
	}
	gs, err := state.ParseSavePayload(data, m.maxDay)
	if err != nil {
		return nil, nil
	}
	return gs, nil
}

func (m *MockStore) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

func (m *MockStore) SnapshotExists(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.saves[id]
	return ok, nil
}

func (m *MockStore) SaveUnlocks(ctx context.Context, id uuid.UUID, unlocked []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocks[id] = append([]string(nil), unlocked...)
	return nil
}

func (m *MockStore) LoadUnlocks(ctx context.Context, id uuid.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	unlocked, ok := m.unlocks[id]
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), unlocked...), nil
}

// PutRaw stores a raw payload under a session id, bypassing serialization.
// Tests use it to simulate corrupted saves.
func (m *MockStore) PutRaw(id uuid.UUID, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[id] = data
}

type mockError string

func (e mockError) Error() string { return string(e) }

const errMockFailure = mockError("mock storage failure")
