package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/session"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	MaxBodySize    int64
}

type Handlers struct {
	Cart     *CartHandler
	Catalog  *CatalogHandler
	Account  *AccountHandler
	Wishlist *WishlistHandler
	Webhook  *WebhookHandler
	Health   http.Handler
	Metrics  http.Handler
}

// NewRouter wires the storefront pages, the JSON API and the ops endpoints.
// limiter may be nil to leave login and signup unthrottled.
func NewRouter(cfg RouterConfig, log *zap.Logger, sessions *session.Manager, limiter *RateLimiter, h Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodySize))
	}

	r.Method(http.MethodGet, "/health", h.Health)
	r.Method(http.MethodGet, "/metrics", h.Metrics)
	r.Post("/api/revalidate", h.Webhook.Revalidate)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/lines", h.Cart.AddItem)
			r.Put("/lines/{line_id}", h.Cart.UpdateQuantity)
			r.Delete("/lines/{line_id}", h.Cart.RemoveItem)
		})
		r.Get("/products/{handle}", h.Catalog.GetProduct)
		r.Get("/collections/{handle}", h.Catalog.GetCollection)
	})

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(SessionLoader(sessions))

		r.Get("/", h.Catalog.Home)
		r.Get("/collections/{handle}", h.Catalog.Collection)
		r.Get("/products/{handle}", h.Catalog.Product)

		r.Get("/cart", h.Cart.Page)
		r.Post("/cart/add", h.Cart.Add)
		r.Post("/cart/lines/{line_id}/remove", h.Cart.Remove)
		r.Post("/cart/lines/{line_id}/update", h.Cart.Update)
		r.Get("/checkout", h.Cart.Checkout)

		r.Get("/wishlist", h.Wishlist.Page)
		r.Post("/wishlist/toggle", h.Wishlist.Toggle)

		r.Get("/login", h.Account.LoginPage)
		r.Get("/signup", h.Account.SignupPage)
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Handler)
			}
			r.Post("/login", h.Account.Login)
			r.Post("/signup", h.Account.Signup)
		})
		r.Post("/logout", h.Account.Logout)
		r.Get("/account", h.Account.Account)
		r.Post("/account/address", h.Account.UpdateAddress)
	})

	return r
}
