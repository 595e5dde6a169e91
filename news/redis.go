package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache shared through Redis. A zero ttl keeps entries forever.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a RedisCache on client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func newsKey(symbol string) string { return fmt.Sprintf("folio:news:%s", symbol) }

func (c *RedisCache) Get(ctx context.Context, symbol string) ([]Item, bool, error) {
	data, err := c.client.Get(ctx, newsKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("corrupted news entry for %q: %w", symbol, err)
	}
	return items, true, nil
}

func (c *RedisCache) Set(ctx context.Context, symbol string, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, newsKey(symbol), data, c.ttl).Err()
}
