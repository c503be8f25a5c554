package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

type Cache struct {
	Redis     redis.UniversalClient
	Namespace string
}

// Get value from Redis
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Redis.Get(ctx, c.Namespace+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Store data to Redis
func (c *Cache) Store(ctx context.Context, key string, ttl int, value interface{}) error {
	dur, err := time.ParseDuration(strconv.Itoa(ttl) + "s")
	if err != nil {
		return err
	}

	cmd := c.Redis.Set(ctx, c.Namespace+":"+key, value, dur)
	return cmd.Err()
}

// Create Redis connection
func NewCache(namespace string, redisCl redis.UniversalClient) *Cache {
	return &Cache{
		Namespace: namespace,
		Redis:     redisCl,
	}
}
