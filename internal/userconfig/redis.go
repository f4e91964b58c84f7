package userconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mining-game-bot/internal/config"
	"github.com/mining-game-bot/internal/models"
)

// RedisStore implements Store using Redis. Settings are stored as JSON
// under a per-user key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store and verifies the
// connection.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Get retrieves user settings from Redis.
func (s *RedisStore) Get(ctx context.Context, address string) (*models.UserConfig, error) {
	data, err := s.client.Get(ctx, userKey(address)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user config: %w", err)
	}

	var cfg models.UserConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user config: %w", err)
	}

	return &cfg, nil
}

// Put stores user settings in Redis.
func (s *RedisStore) Put(ctx context.Context, cfg *models.UserConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := s.client.Set(ctx, userKey(cfg.Address), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store user config: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// userKey generates a Redis key for a user address.
func userKey(address string) string {
	return fmt.Sprintf("user:%s", address)
}
