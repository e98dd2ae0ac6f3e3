// Package redisadapter implements the engine's SnapshotStore port over a
// single Redis key per product, following the original engine's
// "matching_snapshot_<product_id>" naming.
package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"exchangecore/internal/engine"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "matching_snapshot_"

// SnapshotStore implements engine.SnapshotStore by storing a single
// JSON-encoded blob under one key per product; each Store call replaces
// the prior value outright, since only the latest snapshot is ever read.
type SnapshotStore struct {
	key    string
	client *redis.Client
}

// New builds a snapshot store for product, talking to a Redis server at
// addr (host:port).
func New(addr, productID string) *SnapshotStore {
	return &SnapshotStore{
		key: snapshotKeyPrefix + productID,
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

// Store replaces the product's persisted snapshot.
func (s *SnapshotStore) Store(ctx context.Context, snapshot *engine.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.client.Set(ctx, s.key, payload, 0).Err()
}

// GetLatest returns the product's persisted snapshot, or nil if none has
// ever been stored.
func (s *SnapshotStore) GetLatest(ctx context.Context) (*engine.Snapshot, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Close releases the underlying client connection.
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}
