package leaderboard

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryCache is the in-process cache, shared by game-completion flows in
// one bot instance.
type MemoryCache struct {
	mu    sync.Mutex
	board *Board
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(_ context.Context) (*Board, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.board == nil {
		return nil, nil
	}

	b := *c.board
	return &b, nil
}

func (c *MemoryCache) Set(_ context.Context, b Board) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board = &b
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board = nil
	return nil
}

// RedisCache shares the board between bot instances as a JSON blob. The
// redis TTL matches the staleness window so an expired value reads as
// absent even before the service checks the age.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	if ttl == 0 {
		ttl = defaultWindow
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context) (*Board, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var b Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *RedisCache) Set(ctx context.Context, b Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key()).Err()
}

func (c *RedisCache) key() string {
	return c.prefix + ":leaderboard"
}
