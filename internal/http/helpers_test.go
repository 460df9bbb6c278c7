package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/shopify"
	"github.com/fjod/go_storefront/internal/view"
)

const testTimeout = 5 * time.Second

func newRenderer(t *testing.T) *view.Renderer {
	t.Helper()
	r, err := view.New()
	require.NoError(t, err)
	return r
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withSession(r *http.Request, s *session.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionKey, s))
}

func formBody(values url.Values) *strings.Reader {
	return strings.NewReader(values.Encode())
}

func money(amount string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(amount), CurrencyCode: "INR"}
}

func testCart(id string) *domain.Cart {
	return &domain.Cart{
		ID:            id,
		CheckoutURL:   "https://shop.example.com/checkouts/" + id,
		TotalQuantity: 1,
		Cost:          domain.CartCost{Total: money("45"), Subtotal: money("45")},
		Lines: []domain.CartLine{{
			ID:       "gid://shopify/CartLine/l1?cart=" + id,
			Quantity: 1,
			Cost:     money("45"),
			Merchandise: domain.Merchandise{
				VariantID:     "gid://shopify/ProductVariant/11",
				Title:         "M",
				ProductTitle:  "Essential Tee",
				ProductHandle: "essential-tee",
			},
		}},
	}
}

func testProduct() *domain.Product {
	return &domain.Product{
		ID:       "gid://shopify/Product/1",
		Title:    "Essential Tee",
		Handle:   "essential-tee",
		MinPrice: money("45"),
		Images:   []domain.Image{{URL: "https://cdn.example.com/a.jpg"}, {URL: "https://cdn.example.com/b.jpg"}},
		Variants: []domain.Variant{
			{ID: "gid://shopify/ProductVariant/11", Title: "M", AvailableForSale: true, Price: money("45"),
				SelectedOptions: []domain.Option{{Name: "Size", Value: "M"}}},
			{ID: "gid://shopify/ProductVariant/12", Title: "L", AvailableForSale: false, Price: money("50"),
				SelectedOptions: []domain.Option{{Name: "Size", Value: "L"}}},
		},
	}
}

type mockCartService struct {
	cart    *domain.Cart
	created bool
	err     error

	resolvedFrom string
	addedTo      string
	addedVariant string
	addedQty     int
	cartID       string
	lineID       string
	quantity     int
}

func (m *mockCartService) Resolve(_ context.Context, cartID string) (*domain.Cart, bool, error) {
	m.resolvedFrom = cartID
	if m.err != nil {
		return nil, false, m.err
	}
	return m.cart, m.created, nil
}

func (m *mockCartService) GetCart(_ context.Context, cartID string) (*domain.Cart, error) {
	m.cartID = cartID
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *mockCartService) AddItem(_ context.Context, cartID, variantID string, quantity int) (*domain.Cart, error) {
	m.addedTo, m.addedVariant, m.addedQty = cartID, variantID, quantity
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *mockCartService) RemoveLine(_ context.Context, cartID, lineID string) (*domain.Cart, error) {
	m.cartID, m.lineID = cartID, lineID
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *mockCartService) UpdateLine(_ context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	m.cartID, m.lineID, m.quantity = cartID, lineID, quantity
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

type mockCatalogService struct {
	collection *domain.Collection
	product    *domain.Product
	featured   []domain.Product
	err        error
	featureErr error

	handle  string
	filters []shopify.ProductFilter
}

func (m *mockCatalogService) Collection(_ context.Context, handle string, filters []shopify.ProductFilter) (*domain.Collection, error) {
	m.handle, m.filters = handle, filters
	if m.err != nil {
		return nil, m.err
	}
	return m.collection, nil
}

func (m *mockCatalogService) Product(_ context.Context, handle string) (*domain.Product, error) {
	m.handle = handle
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

func (m *mockCatalogService) Featured(context.Context, int) ([]domain.Product, error) {
	if m.featureErr != nil {
		return nil, m.featureErr
	}
	return m.featured, nil
}

type mockWishlist struct {
	saved   map[string]bool
	items   []domain.WishlistItem
	err     error
	toggled string
	cleared string
}

func (m *mockWishlist) SavedIDs(context.Context, string) map[string]bool {
	if m.saved == nil {
		return map[string]bool{}
	}
	return m.saved
}

func (m *mockWishlist) Contains(_ context.Context, _ string, productID string) (bool, error) {
	return m.saved[productID], m.err
}

func (m *mockWishlist) Toggle(_ context.Context, _ string, handle string) (bool, error) {
	m.toggled = handle
	if m.err != nil {
		return false, m.err
	}
	return true, nil
}

func (m *mockWishlist) List(context.Context, string) ([]domain.WishlistItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockWishlist) Clear(_ context.Context, sessionID string) error {
	m.cleared = sessionID
	return m.err
}

type mockCustomerService struct {
	token    *domain.AccessToken
	customer *domain.Customer
	err      error
	acctErr  error

	signedUp  service.SignUpInput
	loggedIn  service.LogInInput
	addressID string
	address   domain.AddressInput
}

func (m *mockCustomerService) SignUp(_ context.Context, in service.SignUpInput) error {
	m.signedUp = in
	return m.err
}

func (m *mockCustomerService) LogIn(_ context.Context, in service.LogInInput) (*domain.AccessToken, error) {
	m.loggedIn = in
	if m.err != nil {
		return nil, m.err
	}
	return m.token, nil
}

func (m *mockCustomerService) Account(context.Context, string) (*domain.Customer, error) {
	if m.acctErr != nil {
		return nil, m.acctErr
	}
	return m.customer, nil
}

func (m *mockCustomerService) UpdateAddress(_ context.Context, _, addressID string, address domain.AddressInput) error {
	m.addressID, m.address = addressID, address
	return m.err
}

func userErrors(msg string) error {
	return &service.UserErrors{Errors: []domain.UserError{{Message: msg}}}
}
