package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/htnguyen/novel-engine/pkg/state"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements the SaveStore interface using Redis.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	maxDay int // Upper bound for snapshot day validation on load
}

// Ensure RedisStore implements SaveStore interface
var _ SaveStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed save store. maxDay is the story's
// last playable day, used to validate loaded snapshots.
func NewRedisStore(redisURL string, maxDay int, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStore{
		client: redis.NewClient(opt),
		logger: logger,
		maxDay: maxDay,
	}, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func saveKey(id uuid.UUID) string {
	return "save:" + id.String()
}

func unlocksKey(id uuid.UUID) string {
	return "achievements:" + id.String()
}

// SaveSnapshot wraps the snapshot with format version and timestamp and
// writes it. The snapshot is data end to end, so serialization cannot carry
// predicate functions across the persistence boundary.
func (r *RedisStore) SaveSnapshot(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	gs.UpdatedAt = time.Now()

	payload := state.NewSavePayload(gs, gs.UpdatedAt)
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("Failed to marshal snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, saveKey(id), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads, parses, and validates a persisted snapshot. A missing
// key and a payload that fails validation both return (nil, nil); only
// infrastructure failures return an error.
func (r *RedisStore) LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	cmd := r.client.Get(ctx, saveKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil // No save for this session
		}
		r.logger.Error("Failed to load snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	gs, err := state.ParseSavePayload([]byte(cmd.Val()), r.maxDay)
	if err != nil {
		r.logger.Warn("Discarding invalid snapshot", "uuid", id, "error", err)
		return nil, nil
	}

	return gs, nil
}

func (r *RedisStore) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, saveKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (r *RedisStore) SnapshotExists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, saveKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot existence: %w", err)
	}
	return n > 0, nil
}

// SaveUnlocks persists the full unlocked-achievement id list for a session.
func (r *RedisStore) SaveUnlocks(ctx context.Context, id uuid.UUID, unlocked []string) error {
	data, err := json.Marshal(unlocked)
	if err != nil {
		return fmt.Errorf("failed to marshal unlocks: %w", err)
	}

	if err := r.client.Set(ctx, unlocksKey(id), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save unlocks", "uuid", id, "error", err)
		return fmt.Errorf("failed to save unlocks: %w", err)
	}
	return nil
}

// LoadUnlocks returns the persisted unlocked-achievement ids, or an empty
// list when none were saved or the payload is unreadable.
func (r *RedisStore) LoadUnlocks(ctx context.Context, id uuid.UUID) ([]string, error) {
	cmd := r.client.Get(ctx, unlocksKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to load unlocks: %w", err)
	}

	var unlocked []string
	if err := json.Unmarshal([]byte(cmd.Val()), &unlocked); err != nil {
		r.logger.Warn("Discarding invalid unlocks payload", "uuid", id, "error", err)
		return []string{}, nil
	}
	return unlocked, nil
}
