package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/shopify"
)

type mockCartAPI struct {
	m       sync.RWMutex
	cart    *domain.Cart
	created *domain.Cart
	err     error

	getCalls    int
	createCalls int
	added       []shopify.CartLineInput
	removed     []string
	updated     []shopify.CartLineUpdateInput
}

func (m *mockCartAPI) CreateCart(context.Context) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.createCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.created, nil
}

func (m *mockCartAPI) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *mockCartAPI) AddCartLines(_ context.Context, _ string, lines []shopify.CartLineInput) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.added = append(m.added, lines...)
	return m.cart, nil
}

func (m *mockCartAPI) RemoveCartLines(_ context.Context, _ string, lineIDs []string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.removed = append(m.removed, lineIDs...)
	return m.cart, nil
}

func (m *mockCartAPI) UpdateCartLines(_ context.Context, _ string, lines []shopify.CartLineUpdateInput) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.updated = append(m.updated, lines...)
	return m.cart, nil
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

func cartWithLines(id string, quantities ...int) *domain.Cart {
	cart := &domain.Cart{ID: id, CheckoutURL: "https://shop.example/checkouts/" + id}
	for i, q := range quantities {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:       fmt.Sprintf("line-%d", i+1),
			Quantity: q,
			Cost:     domain.Money{Amount: decimal.NewFromInt(int64(q * 10)), CurrencyCode: "INR"},
		})
		cart.TotalQuantity += q
	}
	return cart
}

func TestGetCart_Success(t *testing.T) {
	api := &mockCartAPI{cart: cartWithLines("c1", 5, 10)}
	mockC := &mockCache{}

	sut := NewCartService(api, mockC, nil)
	ret, err := sut.GetCart(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, ret)
	assert.Len(t, ret.Lines, 2)
	assert.Equal(t, 15, ret.TotalQuantity)

	require.Eventually(t, func() bool {
		return mockC.getCart() != nil
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not set in cache")
}

func TestGetCart_APIError(t *testing.T) {
	api := &mockCartAPI{err: fmt.Errorf("upstream error")}
	mockC := &mockCache{}

	sut := NewCartService(api, mockC, nil)
	ret, err := sut.GetCart(context.Background(), "c1")
	require.ErrorContains(t, err, "upstream error")
	assert.Nil(t, ret)
	assert.Nil(t, mockC.getCart())
}

func TestGetCart_CacheHit(t *testing.T) {
	api := &mockCartAPI{}
	mockC := &mockCache{cart: cartWithLines("c1", 3)}

	sut := NewCartService(api, mockC, nil)
	ret, err := sut.GetCart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, ret.Lines, 1)
	assert.Zero(t, api.getCalls, "API should not be called on a cache hit")
}

func TestGetCart_CacheErrorFallsBackToAPI(t *testing.T) {
	api := &mockCartAPI{cart: cartWithLines("c1", 1)}
	mockC := &mockCache{err: fmt.Errorf("redis down")}

	sut := NewCartService(api, mockC, nil)
	ret, err := sut.GetCart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", ret.ID)
}

func TestGetCart_Expired(t *testing.T) {
	api := &mockCartAPI{cart: nil}
	mockC := &mockCache{}

	sut := NewCartService(api, mockC, nil)
	ret, err := sut.GetCart(context.Background(), "gone")
	require.NoError(t, err)
	assert.Nil(t, ret)
}

func TestResolve(t *testing.T) {
	t.Run("empty id creates a cart", func(t *testing.T) {
		api := &mockCartAPI{created: cartWithLines("new")}
		mockC := &mockCache{}

		cart, created, err := NewCartService(api, mockC, nil).Resolve(context.Background(), "")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "new", cart.ID)
		assert.Equal(t, "new", mockC.getCart().ID)
	})

	t.Run("existing cart is returned", func(t *testing.T) {
		api := &mockCartAPI{cart: cartWithLines("c1", 1), created: cartWithLines("new")}

		cart, created, err := NewCartService(api, &mockCache{}, nil).Resolve(context.Background(), "c1")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "c1", cart.ID)
		assert.Zero(t, api.createCalls)
	})

	t.Run("expired cart is replaced", func(t *testing.T) {
		api := &mockCartAPI{cart: nil, created: cartWithLines("new")}

		cart, created, err := NewCartService(api, &mockCache{}, nil).Resolve(context.Background(), "gone")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "new", cart.ID)
	})

	t.Run("create failure is returned", func(t *testing.T) {
		api := &mockCartAPI{err: fmt.Errorf("upstream error")}

		_, _, err := NewCartService(api, &mockCache{}, nil).Resolve(context.Background(), "")
		require.ErrorContains(t, err, "upstream error")
	})
}

func TestAddItem_Success(t *testing.T) {
	api := &mockCartAPI{cart: cartWithLines("c1", 2)}
	mockC := &mockCache{}

	sut := NewCartService(api, mockC, nil)
	cart, err := sut.AddItem(context.Background(), "c1", "gid://shopify/ProductVariant/1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.TotalQuantity)
	assert.Equal(t, []shopify.CartLineInput{{MerchandiseID: "gid://shopify/ProductVariant/1", Quantity: 2}}, api.added)

	// mutation result replaces the cached snapshot
	assert.Equal(t, cart, mockC.getCart())
}

func TestAddItem_CreatesCartWhenMissing(t *testing.T) {
	api := &mockCartAPI{cart: cartWithLines("new", 1), created: cartWithLines("new")}

	cart, err := NewCartService(api, &mockCache{}, nil).AddItem(context.Background(), "", "v1", 1)
	require.NoError(t, err)
	assert.Equal(t, "new", cart.ID)
	assert.Equal(t, 1, api.createCalls)
}

func TestAddItem_Validation(t *testing.T) {
	sut := NewCartService(&mockCartAPI{}, &mockCache{}, nil)

	_, err := sut.AddItem(context.Background(), "c1", "v1", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = sut.AddItem(context.Background(), "c1", "v1", MaxQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = sut.AddItem(context.Background(), "c1", "", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddItem_APIError(t *testing.T) {
	api := &mockCartAPI{err: fmt.Errorf("upstream error")}
	mockC := &mockCache{}

	_, err := NewCartService(api, mockC, nil).AddItem(context.Background(), "c1", "v1", 1)
	require.ErrorContains(t, err, "upstream error")
	assert.Nil(t, mockC.getCart())
}

func TestUpdateLine(t *testing.T) {
	api := &mockCartAPI{cart: cartWithLines("c1", 4)}
	sut := NewCartService(api, &mockCache{}, nil)

	_, err := sut.UpdateLine(context.Background(), "c1", "line-1", 4)
	require.NoError(t, err)
	assert.Equal(t, []shopify.CartLineUpdateInput{{ID: "line-1", Quantity: 4}}, api.updated)

	_, err = sut.UpdateLine(context.Background(), "c1", "line-1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"line-1"}, api.removed, "zero quantity removes the line")

	_, err = sut.UpdateLine(context.Background(), "c1", "line-1", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = sut.UpdateLine(context.Background(), "c1", "line-1", 100)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = sut.UpdateLine(context.Background(), "", "line-1", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveLine(t *testing.T) {
	api := &mockCartAPI{cart: cartWithLines("c1")}
	mockC := &mockCache{cart: cartWithLines("c1", 1)}

	cart, err := NewCartService(api, mockC, nil).RemoveLine(context.Background(), "c1", "line-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, mockC.getCart().IsEmpty())
}

func TestRemoveLine_APIError(t *testing.T) {
	api := &mockCartAPI{err: fmt.Errorf("upstream error")}

	_, err := NewCartService(api, &mockCache{}, nil).RemoveLine(context.Background(), "c1", "line-1")
	require.ErrorContains(t, err, "upstream error")
}
