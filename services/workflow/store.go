package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"medibook/models"
)

// ErrSessionNotFound is returned when a session snapshot is missing or expired.
var ErrSessionNotFound = errors.New("workflow: session not found or expired")

const sessionKeyPrefix = "workflow:session:"

// Store persists workflow snapshots in Redis with a TTL. Only the snapshot
// allow-list is written; payment secrets never touch the store.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

// Save serializes the engine's snapshot and refreshes its TTL.
func (s *Store) Save(ctx context.Context, engine *Engine) error {
	snap := engine.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow snapshot: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+snap.SessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store workflow snapshot: %w", err)
	}
	return nil
}

// Load rebuilds an engine from a persisted snapshot.
func (s *Store) Load(ctx context.Context, sessionID string, deps Deps) (*Engine, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load workflow snapshot: %w", err)
	}
	var snap models.WorkflowSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to parse workflow snapshot: %w", err)
	}
	return RestoreEngine(snap, deps), nil
}

// Delete removes a session snapshot, e.g. after reset or terminal commit.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
