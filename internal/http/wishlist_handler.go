package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/view"
)

type WishlistService interface {
	Toggle(ctx context.Context, sessionID, handle string) (bool, error)
	List(ctx context.Context, sessionID string) ([]domain.WishlistItem, error)
}

// WishlistHandler serves the saved-products list. It needs a logged-in
// visitor; anyone else is sent to the login page.
type WishlistHandler struct {
	pages
	wishlistService WishlistService
	timeout         time.Duration
}

func NewWishlistHandler(wishlistService WishlistService, carts CartReader, views Renderer, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		pages:           pages{views: views, carts: carts},
		wishlistService: wishlistService,
		timeout:         timeout,
	}
}

func (h *WishlistHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sid := sessionID(ctx)
	if sid == "" {
		redirect(w, r, loginURL("/wishlist"))
		return
	}

	items, err := h.wishlistService.List(ctx, sid)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "wishlist", h.newPage(ctx, r, "My Wishlist", view.WishlistData{Items: items}))
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	back := returnTo(r, "/wishlist")
	sid := sessionID(ctx)
	if sid == "" {
		redirect(w, r, loginURL(back))
		return
	}

	_, err := h.wishlistService.Toggle(ctx, sid, r.PostFormValue("handle"))
	if errors.Is(err, service.ErrNotFound) {
		h.renderNotFound(w, r, "Product Not Found")
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	redirect(w, r, back)
}
