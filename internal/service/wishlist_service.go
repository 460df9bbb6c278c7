package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
)

type WishlistStore interface {
	Add(ctx context.Context, sessionID string, item domain.WishlistItem) (bool, error)
	Remove(ctx context.Context, sessionID, productID string) (bool, error)
	Contains(ctx context.Context, sessionID, productID string) (bool, error)
	List(ctx context.Context, sessionID string) ([]domain.WishlistItem, error)
	Clear(ctx context.Context, sessionID string) error
}

type ProductLookup interface {
	Product(ctx context.Context, handle string) (*domain.Product, error)
}

// WishlistService keeps saved products per login session. Every call needs a
// session id; anonymous visitors get ErrUnauthenticated.
type WishlistService struct {
	store    WishlistStore
	products ProductLookup
}

func NewWishlistService(store WishlistStore, products ProductLookup) *WishlistService {
	return &WishlistService{store: store, products: products}
}

// Add saves the product. Duplicates are ignored and report false.
func (s *WishlistService) Add(ctx context.Context, sessionID string, product *domain.Product) (bool, error) {
	if sessionID == "" {
		return false, ErrUnauthenticated
	}
	return s.store.Add(ctx, sessionID, domain.WishlistItemFromProduct(product))
}

func (s *WishlistService) Remove(ctx context.Context, sessionID, productID string) (bool, error) {
	if sessionID == "" {
		return false, ErrUnauthenticated
	}
	return s.store.Remove(ctx, sessionID, productID)
}

func (s *WishlistService) Contains(ctx context.Context, sessionID, productID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.store.Contains(ctx, sessionID, productID)
}

// Toggle adds the product with the handle when it is not saved yet and removes it otherwise.
// saved is the state after the call.
func (s *WishlistService) Toggle(ctx context.Context, sessionID, handle string) (saved bool, err error) {
	if sessionID == "" {
		return false, ErrUnauthenticated
	}
	product, err := s.products.Product(ctx, handle)
	if err != nil {
		return false, err
	}

	present, err := s.store.Contains(ctx, sessionID, product.ID)
	if err != nil {
		return false, err
	}
	if present {
		_, err = s.store.Remove(ctx, sessionID, product.ID)
		return false, err
	}
	_, err = s.store.Add(ctx, sessionID, domain.WishlistItemFromProduct(product))
	return err == nil, err
}

// List returns saved items oldest first. Anonymous visitors have an empty list.
func (s *WishlistService) List(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	if sessionID == "" {
		return []domain.WishlistItem{}, nil
	}
	return s.store.List(ctx, sessionID)
}

// SavedIDs returns the saved product ids, for marking product cards. Store
// failures are logged and yield an empty set.
func (s *WishlistService) SavedIDs(ctx context.Context, sessionID string) map[string]bool {
	ids := make(map[string]bool)
	if sessionID == "" {
		return ids
	}
	items, err := s.store.List(ctx, sessionID)
	if err != nil {
		logger.FromContext(ctx).Warn("wishlist list failed", zap.Error(err))
		return ids
	}
	for _, item := range items {
		ids[item.ProductID] = true
	}
	return ids
}

// Clear empties the list, on logout.
func (s *WishlistService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.store.Clear(ctx, sessionID)
}
