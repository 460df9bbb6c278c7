package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/shopify"
)

func newCartHandler(t *testing.T, m *mockCartService) *CartHandler {
	return NewCartHandler(m, newRenderer(t), testTimeout)
}

func TestGetCart_CreatesCartAndSetsCookie(t *testing.T) {
	mock := &mockCartService{cart: testCart("c-new"), created: true}
	handler := newCartHandler(t, mock)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)

	handler.GetCart(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, mock.resolvedFrom)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CartCookieName, cookies[0].Name)
	assert.Equal(t, "c-new", cookies[0].Value)

	var response domain.Cart
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "c-new", response.ID)
}

func TestGetCart_ExistingCartKeepsCookie(t *testing.T) {
	mock := &mockCartService{cart: testCart("c1")}
	handler := newCartHandler(t, mock)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})

	handler.GetCart(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "c1", mock.resolvedFrom)
	assert.Empty(t, recorder.Result().Cookies())
}

func TestAddItem_Success(t *testing.T) {
	mock := &mockCartService{cart: testCart("c1")}
	handler := newCartHandler(t, mock)

	reqBytes, _ := json.Marshal(AddItemRequestDTO{VariantID: "gid://shopify/ProductVariant/11", Quantity: 2})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", bytes.NewReader(reqBytes))
	request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})

	handler.AddItem(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "c1", mock.addedTo)
	assert.Equal(t, "gid://shopify/ProductVariant/11", mock.addedVariant)
	assert.Equal(t, 2, mock.addedQty)
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"invalid json", "invalid json", "invalid_request"},
		{"missing variant", `{"quantity":1}`, "invalid_variant_id"},
		{"zero quantity", `{"variant_id":"v","quantity":0}`, "invalid_quantity"},
		{"too many", `{"variant_id":"v","quantity":100}`, "invalid_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCartService{cart: testCart("c1")}
			handler := newCartHandler(t, mock)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", bytes.NewReader([]byte(tt.body)))

			handler.AddItem(recorder, request)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			var response ErrorResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
			assert.Equal(t, tt.wantCode, response.Code)
			assert.Empty(t, mock.addedVariant)
		})
	}
}

func TestUpdateQuantity_MissingQuantity(t *testing.T) {
	handler := newCartHandler(t, &mockCartService{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/api/v1/cart/lines/l1", bytes.NewReader([]byte(`{}`)))
	request = withURLParam(request, "line_id", "l1")

	handler.UpdateQuantity(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateQuantity_UpstreamUnavailable(t *testing.T) {
	mock := &mockCartService{err: shopify.ErrUnavailable}
	handler := newCartHandler(t, mock)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/api/v1/cart/lines/l1", bytes.NewReader([]byte(`{"quantity":0}`)))
	request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})
	request = withURLParam(request, "line_id", "l1")

	handler.UpdateQuantity(recorder, request)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, 0, mock.quantity)
	assert.Equal(t, "c1", mock.cartID)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "service_unavailable", response.Code)
}

func TestRemoveItem_UnescapesLineID(t *testing.T) {
	mock := &mockCartService{cart: testCart("c1")}
	handler := newCartHandler(t, mock)

	lineID := "gid://shopify/CartLine/l1?cart=c1"
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/", nil)
	request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})
	request = withURLParam(request, "line_id", url.PathEscape(lineID))

	handler.RemoveItem(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, lineID, mock.lineID)
}

func TestAdd_RedirectsWithDrawerOpen(t *testing.T) {
	mock := &mockCartService{cart: testCart("c1")}
	handler := newCartHandler(t, mock)

	form := url.Values{
		"variant_id": {"gid://shopify/ProductVariant/11"},
		"quantity":   {"3"},
		"return_to":  {"/products/essential-tee?variant=11"},
	}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/cart/add", formBody(form))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})

	handler.Add(recorder, request)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/products/essential-tee?cart=open&variant=11", recorder.Header().Get("Location"))
	assert.Equal(t, 3, mock.addedQty)
	assert.Equal(t, "c1", mock.addedTo)
}

func TestAdd_RejectsForeignReturnTo(t *testing.T) {
	handler := newCartHandler(t, &mockCartService{cart: testCart("c1")})

	form := url.Values{"variant_id": {"v"}, "return_to": {"https://evil.example.com/"}}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/cart/add", formBody(form))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	handler.Add(recorder, request)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/cart?cart=open", recorder.Header().Get("Location"))
}

func TestAdd_InvalidQuantityRendersError(t *testing.T) {
	mock := &mockCartService{cart: testCart("c1")}
	handler := newCartHandler(t, mock)

	form := url.Values{"variant_id": {"v"}, "quantity": {"lots"}}
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/cart/add", formBody(form))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	handler.Add(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "quantity must be between 1 and 99")
	assert.Empty(t, mock.addedVariant)
}

func TestUpdate_ZeroQuantityIsForwarded(t *testing.T) {
	mock := &mockCartService{cart: testCart("c1")}
	handler := newCartHandler(t, mock)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/cart/lines/l1/update", formBody(url.Values{"quantity": {"0"}}))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})
	request = withURLParam(request, "line_id", "l1")

	handler.Update(recorder, request)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/cart", recorder.Header().Get("Location"))
	assert.Equal(t, 0, mock.quantity)
	assert.Equal(t, "l1", mock.lineID)
}

func TestPage_RendersCart(t *testing.T) {
	handler := newCartHandler(t, &mockCartService{cart: testCart("c1")})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/cart", nil)
	request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})

	handler.Page(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Essential Tee")
	assert.Contains(t, recorder.Body.String(), "Proceed to Checkout")
}

func TestPage_UpstreamFailure(t *testing.T) {
	handler := newCartHandler(t, &mockCartService{err: errors.New("boom")})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/cart", nil)

	handler.Page(recorder, request)

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Something went wrong")
}

func TestCheckout(t *testing.T) {
	t.Run("redirects to hosted checkout", func(t *testing.T) {
		handler := newCartHandler(t, &mockCartService{cart: testCart("c1")})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})

		handler.Checkout(recorder, request)

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "https://shop.example.com/checkouts/c1", recorder.Header().Get("Location"))
	})

	t.Run("no cart", func(t *testing.T) {
		handler := newCartHandler(t, &mockCartService{})
		recorder := httptest.NewRecorder()

		handler.Checkout(recorder, httptest.NewRequest(http.MethodGet, "/checkout", nil))

		assert.Equal(t, "/cart", recorder.Header().Get("Location"))
	})

	t.Run("empty cart", func(t *testing.T) {
		handler := newCartHandler(t, &mockCartService{cart: &domain.Cart{ID: "c1", CheckoutURL: "https://x"}})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		request.AddCookie(&http.Cookie{Name: session.CartCookieName, Value: "c1"})

		handler.Checkout(recorder, request)

		assert.Equal(t, "/cart", recorder.Header().Get("Location"))
	})
}
