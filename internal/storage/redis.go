package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// RedisStorage implements storage.VariableStore on Redis strings.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements VariableStore interface
var _ storage.VariableStore = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. A zero ttl keeps
// variables forever.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
		ttl:    ttl,
	}
}

// Client exposes the underlying connection for pub/sub.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func variableKey(playerID, key string) string {
	return "player:" + playerID + ":var:" + key
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
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

// Variable operations

func (r *RedisStorage) Get(ctx context.Context, playerID, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, variableKey(playerID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		r.logger.Error("Failed to load variable", "player_id", playerID, "key", key, "error", err)
		return "", false, fmt.Errorf("failed to load variable %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, playerID, key, value string) error {
	if playerID == "" {
		return errors.New("player ID cannot be empty")
	}
	if err := r.client.Set(ctx, variableKey(playerID, key), value, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save variable", "player_id", playerID, "key", key, "error", err)
		return fmt.Errorf("failed to save variable %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, playerID, key string) error {
	if err := r.client.Del(ctx, variableKey(playerID, key)).Err(); err != nil {
		r.logger.Error("Failed to delete variable", "player_id", playerID, "key", key, "error", err)
		return fmt.Errorf("failed to delete variable %s: %w", key, err)
	}
	return nil
}
