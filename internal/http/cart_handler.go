package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
)

type CartService interface {
	Resolve(ctx context.Context, cartID string) (*domain.Cart, bool, error)
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, cartID, lineID string) (*domain.Cart, error)
	UpdateLine(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error)
}

type CartHandler struct {
	pages
	cartService CartService
	timeout     time.Duration
}

func NewCartHandler(cartService CartService, views Renderer, timeout time.Duration) *CartHandler {
	return &CartHandler{
		pages:       pages{views: views, carts: cartService},
		cartService: cartService,
		timeout:     timeout,
	}
}

type AddItemRequestDTO struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

// resolve returns the visitor's cart and stores the id of a newly created one.
func (h *CartHandler) resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Cart, error) {
	cart, created, err := h.cartService.Resolve(ctx, session.CartID(r))
	if err != nil {
		return nil, err
	}
	if created {
		session.SetCartID(w, cart.ID)
	}
	return cart, nil
}

func (h *CartHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.resolve(ctx, w, r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	page := h.basePage(r, "Cart", nil)
	page.Cart = cart
	h.render(w, r, http.StatusOK, "cart", page)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	quantity, err := formQuantity(r, 1)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	// An expired cart id is replaced before lines are added to it.
	cart, err := h.resolve(ctx, w, r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if _, err := h.cartService.AddItem(ctx, cart.ID, r.PostFormValue("variant_id"), quantity); err != nil {
		h.renderError(w, r, err)
		return
	}

	redirect(w, r, withCartOpen(returnTo(r, "/cart")))
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, err := h.cartService.RemoveLine(ctx, session.CartID(r), pathParam(r, "line_id")); err != nil {
		h.renderError(w, r, err)
		return
	}
	redirect(w, r, returnTo(r, "/cart"))
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	quantity, err := formQuantity(r, -1)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if _, err := h.cartService.UpdateLine(ctx, session.CartID(r), pathParam(r, "line_id"), quantity); err != nil {
		h.renderError(w, r, err)
		return
	}
	redirect(w, r, returnTo(r, "/cart"))
}

// Checkout hands the visitor over to the platform's hosted checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := session.CartID(r)
	if cartID == "" {
		redirect(w, r, "/cart")
		return
	}
	cart, err := h.cartService.GetCart(ctx, cartID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if cart.IsEmpty() || cart.CheckoutURL == "" {
		redirect(w, r, "/cart")
		return
	}
	http.Redirect(w, r, cart.CheckoutURL, http.StatusSeeOther)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.resolve(ctx, w, r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.VariantID == "" {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id is required")
		return
	}
	if req.Quantity < 1 || req.Quantity > service.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", service.ErrInvalidQuantity.Error())
		return
	}

	cart, err := h.resolve(ctx, w, r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	cart, err = h.cartService.AddItem(ctx, cart.ID, req.VariantID, req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	cart, err := h.cartService.UpdateLine(ctx, session.CartID(r), pathParam(r, "line_id"), *req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.RemoveLine(ctx, session.CartID(r), pathParam(r, "line_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// formQuantity reads the quantity field. A missing field yields def, or an
// error when def is negative.
func formQuantity(r *http.Request, def int) (int, error) {
	raw := r.PostFormValue("quantity")
	if raw == "" {
		if def < 0 {
			return 0, fmt.Errorf("%w: quantity is required", service.ErrInvalidInput)
		}
		return def, nil
	}
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, service.ErrInvalidQuantity
	}
	return quantity, nil
}
