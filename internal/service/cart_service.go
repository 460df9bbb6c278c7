package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/fjod/go_storefront/internal/shopify"
)

const (
	MaxQuantity = 99

	cartCacheName     = "cart"
	cacheWriteTimeout = time.Second
)

// CartAPI is the part of the commerce API the cart service needs.
type CartAPI interface {
	CreateCart(ctx context.Context) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddCartLines(ctx context.Context, cartID string, lines []shopify.CartLineInput) (*domain.Cart, error)
	RemoveCartLines(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error)
	UpdateCartLines(ctx context.Context, cartID string, lines []shopify.CartLineUpdateInput) (*domain.Cart, error)
}

type CartService struct {
	api     CartAPI
	cache   cache.CartCache
	metrics *metrics.Metrics
	sfg     singleflight.Group // Prevents cache stampede
}

func NewCartService(api CartAPI, cache cache.CartCache, m *metrics.Metrics) *CartService {
	return &CartService{
		api:     api,
		cache:   cache,
		metrics: m,
	}
}

// Resolve returns the visitor's cart, creating one when cartID is empty, unknown
// or unreadable. created reports that the caller must store the new cart id.
func (s *CartService) Resolve(ctx context.Context, cartID string) (cart *domain.Cart, created bool, err error) {
	if cartID != "" {
		cart, err = s.GetCart(ctx, cartID)
		if err == nil && cart != nil {
			return cart, false, nil
		}
		if err != nil {
			logger.FromContext(ctx).Warn("cart read failed, creating a new cart",
				zap.String("cart_id", cartID), zap.Error(err))
		}
	}

	cart, err = s.api.CreateCart(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("cart create failed", zap.Error(err))
		return nil, false, err
	}
	s.refreshCache(ctx, cart)
	return cart, true, nil
}

// GetCart returns the cart, or nil when the commerce API no longer knows it.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(cartID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, cartID)
		if err == nil {
			s.metrics.CacheHit(cartCacheName)
			return cart, nil
		}
		s.metrics.CacheMiss(cartCacheName)
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx).Warn("cart cache get failed", zap.String("cart_id", cartID), zap.Error(err))
		}

		cart, err = s.api.GetCart(ctx, cartID)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			s.invalidateCache(ctx, cartID)
			return (*domain.Cart)(nil), nil
		}

		// set cache
		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
			defer cancel()
			if errSet := s.cache.Set(setCtx, cartID, cart); errSet != nil {
				logger.FromContext(ctx).Warn("cart cache set failed", zap.String("cart_id", cartID), zap.Error(errSet))
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem adds quantity of the variant, creating a cart first when cartID is empty.
func (s *CartService) AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error) {
	if variantID == "" {
		return nil, fmt.Errorf("%w: variant id is required", ErrInvalidInput)
	}
	if quantity < 1 || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	if cartID == "" {
		cart, _, err := s.Resolve(ctx, "")
		if err != nil {
			return nil, err
		}
		cartID = cart.ID
	}

	cart, errAdd := s.api.AddCartLines(ctx, cartID, []shopify.CartLineInput{
		{MerchandiseID: variantID, Quantity: quantity},
	})
	if errAdd != nil {
		logger.FromContext(ctx).Error("cart add lines failed", zap.String("cart_id", cartID), zap.Error(errAdd))
		return nil, errAdd
	}

	s.refreshCache(ctx, cart)
	return cart, nil
}

func (s *CartService) RemoveLine(ctx context.Context, cartID, lineID string) (*domain.Cart, error) {
	if cartID == "" {
		return nil, fmt.Errorf("%w: no cart", ErrNotFound)
	}
	if lineID == "" {
		return nil, fmt.Errorf("%w: line id is required", ErrInvalidInput)
	}

	cart, errRemove := s.api.RemoveCartLines(ctx, cartID, []string{lineID})
	if errRemove != nil {
		logger.FromContext(ctx).Error("cart remove lines failed", zap.String("cart_id", cartID), zap.Error(errRemove))
		return nil, errRemove
	}

	s.refreshCache(ctx, cart)
	return cart, nil
}

// UpdateLine sets the line quantity. Zero removes the line.
func (s *CartService) UpdateLine(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 || quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveLine(ctx, cartID, lineID)
	}
	if cartID == "" {
		return nil, fmt.Errorf("%w: no cart", ErrNotFound)
	}
	if lineID == "" {
		return nil, fmt.Errorf("%w: line id is required", ErrInvalidInput)
	}

	cart, errUpdate := s.api.UpdateCartLines(ctx, cartID, []shopify.CartLineUpdateInput{
		{ID: lineID, Quantity: quantity},
	})
	if errUpdate != nil {
		logger.FromContext(ctx).Error("cart update lines failed", zap.String("cart_id", cartID), zap.Error(errUpdate))
		return nil, errUpdate
	}

	s.refreshCache(ctx, cart)
	return cart, nil
}

// refreshCache stores the snapshot a mutation returned.
func (s *CartService) refreshCache(ctx context.Context, cart *domain.Cart) {
	setCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := s.cache.Set(setCtx, cart.ID, cart); err != nil {
		logger.FromContext(ctx).Warn("cart cache set failed", zap.String("cart_id", cart.ID), zap.Error(err))
	}
}

func (s *CartService) invalidateCache(ctx context.Context, cartID string) {
	delCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := s.cache.Delete(delCtx, cartID); err != nil {
		logger.FromContext(ctx).Warn("cart cache invalidate failed", zap.String("cart_id", cartID), zap.Error(err))
	}
}
