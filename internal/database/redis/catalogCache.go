package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkolesni/eventboard/internal/entity"

	"github.com/go-redis/redis/v8"
)

const catalogKey = "catalog:events"

// CatalogCache keeps the most recent event listing in Redis so catalog reads
// do not hit Postgres on every page load. Writers invalidate it.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *CatalogCache) Set(ctx context.Context, events []*entity.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, catalogKey, data, c.ttl).Err()
}

// Get returns the cached listing, or redis.Nil when the key is absent.
func (c *CatalogCache) Get(ctx context.Context) ([]*entity.Event, error) {
	data, err := c.client.Get(ctx, catalogKey).Result()
	if err != nil {
		return nil, err
	}

	var events []*entity.Event
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
