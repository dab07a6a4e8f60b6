package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
)

// DefaultLeaderboardNamespace prefixes every board key written to Redis.
const DefaultLeaderboardNamespace = "step-challenge:leaderboard:"

const clearScanBatch = 100

// LeaderboardCache keeps computed boards in Redis under a shared namespace so a
// single Clear drops every board after the ledger changes.
type LeaderboardCache struct {
	client    redis.UniversalClient
	namespace string
	logger    *zap.Logger
}

// NewLeaderboardCache constructs a Redis-backed board cache.
func NewLeaderboardCache(client redis.UniversalClient, namespace string, logger *zap.Logger) *LeaderboardCache {
	if namespace == "" {
		namespace = DefaultLeaderboardNamespace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardCache{client: client, namespace: namespace, logger: logger}
}

// Fetch decodes the cached board into dest or returns ErrCacheMiss.
func (c *LeaderboardCache) Fetch(ctx context.Context, board string, dest interface{}) error {
	key := c.key(board)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// A board shaped by an older release is treated as a miss and overwritten.
		c.logger.Debug("discarding undecodable board", zap.String("key", key), zap.Error(err))
		return appErrors.ErrCacheMiss
	}
	return nil
}

// StoreAll writes every board in one pipeline so readers see a consistent set.
func (c *LeaderboardCache) StoreAll(ctx context.Context, boards map[string]interface{}, ttl time.Duration) error {
	if len(boards) == 0 {
		return nil
	}

	payloads := make(map[string][]byte, len(boards))
	for board, value := range boards {
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal board %s: %w", board, err)
		}
		payloads[c.key(board)] = payload
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, payload := range payloads {
			pipe.Set(ctx, key, payload, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store %d boards: %w", len(payloads), err)
	}
	return nil
}

// Clear unlinks every key under the namespace.
func (c *LeaderboardCache) Clear(ctx context.Context) error {
	pattern := c.namespace + "*"
	iter := c.client.Scan(ctx, 0, pattern, clearScanBatch).Iterator()

	batch := make([]string, 0, clearScanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink %s: %w", pattern, err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearScanBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	return flush()
}

// Close releases the Redis connection.
func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}

func (c *LeaderboardCache) key(board string) string {
	return c.namespace + board
}
