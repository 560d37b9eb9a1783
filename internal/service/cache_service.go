package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ruralfund-backend/internal/goroutine"
	"github.com/ignatzorin/ruralfund-backend/internal/logger"
)

const (
	cacheKeyApprovedProjects = "projects:approved"
	cacheKeyOpenProjects     = "projects:open"
)

// projectListKeys сбрасываются при любом изменении проекта или его финансирования.
var projectListKeys = []string{cacheKeyApprovedProjects, cacheKeyOpenProjects}

// Cache хранит JSON-снимки публичных списков. Ошибки кеша не должны ломать запрос,
// поэтому методы их только логируют.
type Cache interface {
	Load(ctx context.Context, key string, dst interface{}) bool
	Store(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
}

// RedisCache реализует Cache поверх go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisClient подключается к Redis; пустой адрес отключает кеш.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Entry(logrus.Fields{"key": key}).WithError(err).Warn("cache: redis GET не удался")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Entry(logrus.Fields{"key": key}).WithError(err).Warn("cache: битое значение в redis")
		return false
	}
	return true
}

func (c *RedisCache) Store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Entry(logrus.Fields{"key": key}).WithError(err).Warn("cache: redis SET не удался")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Entry(logrus.Fields{"keys": strings.Join(keys, ",")}).WithError(err).Warn("cache: redis DEL не удался")
	}
}

// MemoryCache используется, когда Redis не настроен.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache запускает фоновую очистку, которая живёт до отмены ctx.
func NewMemoryCache(ctx context.Context) *MemoryCache {
	c := &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
	goroutine.SafeGoWithContext(ctx, "memory-cache-cleanup", c.cleanup)
	return c
}

func (c *MemoryCache) Load(_ context.Context, key string, dst interface{}) bool {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return false
	}
	return json.Unmarshal(entry.data, dst) == nil
}

func (c *MemoryCache) Store(_ context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{data: raw, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

func (c *MemoryCache) cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
