package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const menuCacheTTL = 30 * time.Second

// MenuCache keeps the rendered public cocktail list in redis so menu reads
// don't hit sqlite on every poll. Degrades to a no-op when redis is down.
type MenuCache struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewMenuCache(addr string, logger *slog.Logger) *MenuCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, menu cache disabled", "addr", addr, "err", err)
		_ = rdb.Close()
		return nil
	}
	return &MenuCache{rdb: rdb, log: logger}
}

func (c *MenuCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *MenuCache) Set(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, body, menuCacheTTL).Err(); err != nil {
		c.log.Warn("menu cache set failed", "key", key, "err", err)
	}
}

// Invalidate drops all cached menu variants. Called after any write that can
// change availability or recipes.
func (c *MenuCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	keys, err := c.rdb.Keys(ctx, "menu:*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("menu cache invalidate failed", "err", err)
	}
}

func (c *MenuCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
