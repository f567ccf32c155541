// Package cache keeps settled results in Redis. Settlement results are
// immutable once written, so entries never need invalidation; the TTL only
// bounds memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// KeySettlementResult is the key pattern of a cached settlement result
const KeySettlementResult = "settlement:round:%s:result"

// ErrMiss is returned when the key is not cached
var ErrMiss = errors.New("cache miss")

// ResultCache stores settlement results by round id
type ResultCache interface {
	Get(ctx context.Context, roundID string) (*models.SettlementResult, error)
	Set(ctx context.Context, result *models.SettlementResult) error
}

// NewRedis connects and pings a Redis client
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

// RedisResultCache is a ResultCache on Redis strings holding JSON
type RedisResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisResultCache creates a RedisResultCache
func NewRedisResultCache(rdb *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{rdb: rdb, ttl: ttl}
}

// Get loads a cached result
func (c *RedisResultCache) Get(ctx context.Context, roundID string) (*models.SettlementResult, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf(KeySettlementResult, roundID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var res models.SettlementResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Set stores a result unless the key already exists
func (c *RedisResultCache) Set(ctx context.Context, result *models.SettlementResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.rdb.SetNX(ctx, fmt.Sprintf(KeySettlementResult, result.RoundID), data, c.ttl).Err()
}

// MemoryResultCache is an in-process ResultCache
type MemoryResultCache struct {
	mu      sync.RWMutex
	results map[string]models.SettlementResult
}

// NewMemoryResultCache creates an empty MemoryResultCache
func NewMemoryResultCache() *MemoryResultCache {
	return &MemoryResultCache{results: make(map[string]models.SettlementResult)}
}

// Get loads a cached result
func (c *MemoryResultCache) Get(_ context.Context, roundID string) (*models.SettlementResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[roundID]
	if !ok {
		return nil, ErrMiss
	}
	return &res, nil
}

// Set stores a result unless one is cached already
func (c *MemoryResultCache) Set(_ context.Context, result *models.SettlementResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.results[result.RoundID]; !ok {
		c.results[result.RoundID] = *result
	}
	return nil
}

// NoopResultCache never holds anything
type NoopResultCache struct{}

// Get always misses
func (NoopResultCache) Get(context.Context, string) (*models.SettlementResult, error) {
	return nil, ErrMiss
}

// Set does nothing
func (NoopResultCache) Set(context.Context, *models.SettlementResult) error { return nil }
