package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/fjod/go_storefront/internal/shopify"
)

const (
	AllProductsHandle      = "all"
	allProductsTitle       = "All Products"
	allProductsDescription = "Browse our entire collection."
	allProductsLimit       = 20

	catalogCacheName = "catalog"
)

type CatalogAPI interface {
	GetProduct(ctx context.Context, handle string) (*domain.Product, error)
	GetCollection(ctx context.Context, handle string, filters []shopify.ProductFilter) (*domain.Collection, error)
	ListProducts(ctx context.Context, first int) ([]domain.Product, error)
}

type CatalogCache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, tags ...string) error
	Invalidate(ctx context.Context, tags ...string) (int64, error)
}

// CatalogService reads products and collections through a tagged cache.
type CatalogService struct {
	api     CatalogAPI
	cache   CatalogCache
	metrics *metrics.Metrics
}

func NewCatalogService(api CatalogAPI, cache CatalogCache, m *metrics.Metrics) *CatalogService {
	return &CatalogService{api: api, cache: cache, metrics: m}
}

// Collection returns the collection narrowed by filters. The "all" handle
// lists the whole catalog and ignores filters.
func (s *CatalogService) Collection(ctx context.Context, handle string, filters []shopify.ProductFilter) (*domain.Collection, error) {
	if handle == AllProductsHandle {
		return readThrough(ctx, s, "collection:all", []string{cache.TagCollections, cache.TagProducts},
			func(ctx context.Context) (*domain.Collection, error) {
				products, err := s.api.ListProducts(ctx, allProductsLimit)
				if err != nil {
					return nil, err
				}
				return &domain.Collection{
					Title:       allProductsTitle,
					Description: allProductsDescription,
					Products:    products,
				}, nil
			})
	}

	key := "collection:" + handle + ":" + filtersKey(filters)
	return readThrough(ctx, s, key, []string{cache.TagCollections, cache.TagProducts},
		func(ctx context.Context) (*domain.Collection, error) {
			collection, err := s.api.GetCollection(ctx, handle, filters)
			if err != nil {
				return nil, err
			}
			if collection == nil {
				return nil, fmt.Errorf("%w: collection %q", ErrNotFound, handle)
			}
			return collection, nil
		})
}

func (s *CatalogService) Product(ctx context.Context, handle string) (*domain.Product, error) {
	return readThrough(ctx, s, "product:"+handle, []string{cache.TagProducts},
		func(ctx context.Context) (*domain.Product, error) {
			product, err := s.api.GetProduct(ctx, handle)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, fmt.Errorf("%w: product %q", ErrNotFound, handle)
			}
			return product, nil
		})
}

// Featured returns the first n catalog products for the home page.
func (s *CatalogService) Featured(ctx context.Context, n int) ([]domain.Product, error) {
	products, err := readThrough(ctx, s, fmt.Sprintf("featured:%d", n), []string{cache.TagProducts},
		func(ctx context.Context) (*[]domain.Product, error) {
			products, err := s.api.ListProducts(ctx, n)
			if err != nil {
				return nil, err
			}
			return &products, nil
		})
	if err != nil {
		return nil, err
	}
	return *products, nil
}

// Invalidate drops every cached entry carrying one of the tags.
func (s *CatalogService) Invalidate(ctx context.Context, tags ...string) (int64, error) {
	deleted, err := s.cache.Invalidate(ctx, tags...)
	if err != nil {
		logger.FromContext(ctx).Error("catalog cache invalidate failed", zap.Strings("tags", tags), zap.Error(err))
		return deleted, err
	}
	logger.FromContext(ctx).Info("catalog cache invalidated", zap.Strings("tags", tags), zap.Int64("deleted", deleted))
	return deleted, nil
}

// readThrough serves key from the cache, loading and storing it on a miss.
// Cache failures are logged and bypassed. Errors from load are never cached.
func readThrough[T any](ctx context.Context, s *CatalogService, key string, tags []string, load func(context.Context) (*T, error)) (*T, error) {
	log := logger.FromContext(ctx)

	var cached T
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		s.metrics.CacheHit(catalogCacheName)
		return &cached, nil
	}
	s.metrics.CacheMiss(catalogCacheName)
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, value, tags...); err != nil {
		log.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

func filtersKey(filters []shopify.ProductFilter) string {
	if len(filters) == 0 {
		return "none"
	}
	data, err := json.Marshal(filters)
	if err != nil {
		return "none"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
