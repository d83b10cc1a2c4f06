package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/pkg/logger"
)

// RedisDB wraps a Redis client
type RedisDB struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisDB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        50,
		MinIdleConns:    5,
		PoolTimeout:     4 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("connected to Redis",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)

	return &RedisDB{Client: client}, nil
}

// Close closes the Redis connection
func (db *RedisDB) Close() error {
	if db.Client != nil {
		return db.Client.Close()
	}
	return nil
}

// HashCache stores JSON values in one Redis hash per owner (an event, for
// instance), so that all entries of an owner can be dropped with one DEL.
type HashCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewHashCache creates a new hash-backed cache
func NewHashCache(client redis.Cmdable, prefix string, ttl time.Duration) *HashCache {
	return &HashCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *HashCache) key(owner string) string {
	return c.prefix + ":" + owner
}

// GetJSON loads field of owner into dst. It reports false on a miss.
func (c *HashCache) GetJSON(ctx context.Context, owner, field string, dst interface{}) (bool, error) {
	raw, err := c.client.HGet(ctx, c.key(owner), field).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return true, nil
}

// SetJSON stores value under field of owner and refreshes the owner's TTL
func (c *HashCache) SetJSON(ctx context.Context, owner, field string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	key := c.key(owner)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field, raw)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Invalidate drops every entry of owner
func (c *HashCache) Invalidate(ctx context.Context, owner string) error {
	return c.client.Del(ctx, c.key(owner)).Err()
}
