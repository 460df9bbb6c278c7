package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_storefront/internal/domain"
)

const DefaultWishlistTTL = 30 * 24 * time.Hour

// WishlistStore keeps one wishlist per login session: a hash of items by
// product id plus a sorted set holding insertion order.
type WishlistStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWishlistStore(client *redis.Client, ttl time.Duration) *WishlistStore {
	if ttl <= 0 {
		ttl = DefaultWishlistTTL
	}
	return &WishlistStore{client: client, ttl: ttl}
}

// Add stores item unless the product is already on the list. added reports whether it was new.
func (s *WishlistStore) Add(ctx context.Context, sessionID string, item domain.WishlistItem) (bool, error) {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	data, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("marshal wishlist item failed: %w", err)
	}

	itemsKey, orderKey := wishlistKeys(sessionID)
	var setNX *redis.BoolCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		setNX = pipe.HSetNX(ctx, itemsKey, item.ProductID, data)
		pipe.ZAddNX(ctx, orderKey, redis.Z{Score: float64(item.AddedAt.UnixNano()), Member: item.ProductID})
		pipe.Expire(ctx, itemsKey, s.ttl)
		pipe.Expire(ctx, orderKey, s.ttl)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis wishlist add failed: %w", err)
	}
	return setNX.Val(), nil
}

// Remove drops the product from the list. removed reports whether it was there.
func (s *WishlistStore) Remove(ctx context.Context, sessionID, productID string) (bool, error) {
	itemsKey, orderKey := wishlistKeys(sessionID)
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.HDel(ctx, itemsKey, productID)
		pipe.ZRem(ctx, orderKey, productID)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis wishlist remove failed: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *WishlistStore) Contains(ctx context.Context, sessionID, productID string) (bool, error) {
	itemsKey, _ := wishlistKeys(sessionID)
	ok, err := s.client.HExists(ctx, itemsKey, productID).Result()
	if err != nil {
		return false, fmt.Errorf("redis wishlist lookup failed: %w", err)
	}
	return ok, nil
}

// List returns the items in the order they were added.
func (s *WishlistStore) List(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	itemsKey, orderKey := wishlistKeys(sessionID)

	ids, err := s.client.ZRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis wishlist order failed: %w", err)
	}
	if len(ids) == 0 {
		return []domain.WishlistItem{}, nil
	}

	values, err := s.client.HMGet(ctx, itemsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis wishlist items failed: %w", err)
	}

	items := make([]domain.WishlistItem, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var item domain.WishlistItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("unmarshal wishlist item failed: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *WishlistStore) Clear(ctx context.Context, sessionID string) error {
	itemsKey, orderKey := wishlistKeys(sessionID)
	if err := s.client.Del(ctx, itemsKey, orderKey).Err(); err != nil {
		return fmt.Errorf("redis wishlist clear failed: %w", err)
	}
	return nil
}

func wishlistKeys(sessionID string) (items, order string) {
	return fmt.Sprintf("wishlist:%s:items", sessionID), fmt.Sprintf("wishlist:%s:order", sessionID)
}
