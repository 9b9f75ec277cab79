package utils

import (
	"context"
	"encoding/json"
	"time"

	"coursemart/logger"

	goredis "github.com/redis/go-redis/v9"
)

// Cache is a small JSON cache over Redis. A nil *Cache misses every lookup.
type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewCache connects to addr. An empty addr disables caching.
func NewCache(addr string, ttl time.Duration) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// NewCacheWithClient wraps an existing client.
func NewCacheWithClient(rdb *goredis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get decodes the cached value into dst and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.L().Warn("cache get failed", "key", key, "error", err.Error())
		}
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.L().Warn("cache set failed", "key", key, "error", err.Error())
	}
}

// Delete removes every key matching pattern.
func (c *Cache) Delete(ctx context.Context, pattern string) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.L().Warn("cache invalidate failed", "pattern", pattern, "error", err.Error())
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

const FeaturedCoursesKey = "courses:featured:*"

var courseCache *Cache

func SetCourseCache(c *Cache) { courseCache = c }

func CourseCache() *Cache { return courseCache }
