package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tags grouping catalog entries for invalidation.
const (
	TagProducts    = "products"
	TagCollections = "collections"
)

const DefaultCatalogTTL = 5 * time.Minute

// CatalogCache stores catalog responses as JSON under a key, each entry
// registered with one or more tags so a tag can drop all of its entries at once.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get decodes the entry under key into dst, or returns ErrCacheMiss.
func (c *CatalogCache) Get(ctx context.Context, key string, dst any) error {
	data, err := c.client.Get(ctx, catalogKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = c.client.Del(ctx, catalogKey(key))
		return fmt.Errorf("unmarshal catalog entry failed: %w", err)
	}
	return nil
}

func (c *CatalogCache) Set(ctx context.Context, key string, value any, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal catalog entry failed: %w", err)
	}

	ttl := withJitter(c.ttl)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, catalogKey(key), data, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagKey(tag), catalogKey(key))
			// outlives its members
			pipe.Expire(ctx, tagKey(tag), 2*ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate deletes every entry registered under the tags and returns how many keys went away.
func (c *CatalogCache) Invalidate(ctx context.Context, tags ...string) (int64, error) {
	var deleted int64
	for _, tag := range tags {
		members, err := c.client.SMembers(ctx, tagKey(tag)).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis smembers %s failed: %w", tag, err)
		}

		keys := append(members, tagKey(tag))
		n, err := c.client.Del(ctx, keys...).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis delete %s failed: %w", tag, err)
		}
		deleted += n
	}
	return deleted, nil
}

func catalogKey(key string) string {
	return fmt.Sprintf("catalog:%s", key)
}

func tagKey(tag string) string {
	return fmt.Sprintf("catalog:tag:%s", tag)
}
