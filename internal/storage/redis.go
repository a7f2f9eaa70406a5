package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const graphKeyPrefix = "dialogue:graph:"

// RedisStorage implements the Storage interface using the data directory for
// authored files and, when configured, Redis for graph overrides.
type RedisStorage struct {
	client  *redis.Client // nil when running from files only
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ store.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a storage backed by Redis and the data directory
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	s := NewFileStorage(dataDir, logger)
	s.client = redis.NewClient(opt)
	return s, nil
}

// NewFileStorage creates a storage that only reads the data directory
func NewFileStorage(dataDir string, logger *slog.Logger) *RedisStorage {
	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		logger:  logger,
		dataDir: dataDir,
	}
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// Client returns the Redis client, or nil for file-only storage
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	if r.client == nil {
		return nil
	}

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
