// README: Redis implementation of the ledger cache ("namespace:key" layout).
package tracking

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, buildKey(namespace, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, buildKey(namespace, key), value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, namespace, key string) error {
	return c.client.Del(ctx, buildKey(namespace, key)).Err()
}

func buildKey(namespace, key string) string {
	return namespace + ":" + key
}
