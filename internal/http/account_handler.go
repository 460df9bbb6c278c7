package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/view"
)

const (
	msgRegistered     = "Account created. Please log in."
	msgAddressUpdated = "Address updated."
)

type CustomerService interface {
	SignUp(ctx context.Context, in service.SignUpInput) error
	LogIn(ctx context.Context, in service.LogInInput) (*domain.AccessToken, error)
	Account(ctx context.Context, accessToken string) (*domain.Customer, error)
	UpdateAddress(ctx context.Context, accessToken, addressID string, address domain.AddressInput) error
}

// SessionStore writes and clears the login cookie.
type SessionStore interface {
	Start(w http.ResponseWriter, token *domain.AccessToken) (*session.Session, error)
	Clear(w http.ResponseWriter)
}

type WishlistClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

type AccountHandler struct {
	pages
	customerService CustomerService
	sessions        SessionStore
	wishlist        WishlistClearer
	timeout         time.Duration
}

func NewAccountHandler(customerService CustomerService, sessions SessionStore, wishlist WishlistClearer, carts CartReader, views Renderer, timeout time.Duration) *AccountHandler {
	return &AccountHandler{
		pages:           pages{views: views, carts: carts},
		customerService: customerService,
		sessions:        sessions,
		wishlist:        wishlist,
		timeout:         timeout,
	}
}

func (h *AccountHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sessionFromContext(r.Context()) != nil {
		redirect(w, r, "/account")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page := h.newPage(ctx, r, "Login", view.AuthData{Next: localPath(r.URL.Query().Get("next"), "")})
	if r.URL.Query().Get("registered") == "true" {
		page.Flash = msgRegistered
	}
	h.render(w, r, http.StatusOK, "login", page)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	in := service.LogInInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	next := localPath(r.PostFormValue("next"), "/account")

	token, err := h.customerService.LogIn(ctx, in)
	if err != nil {
		if ue, ok := service.AsUserErrors(err); ok {
			page := h.newPage(ctx, r, "Login", view.AuthData{Email: in.Email, Next: localPath(r.PostFormValue("next"), "")})
			page.Error = ue.Message()
			h.render(w, r, http.StatusUnprocessableEntity, "login", page)
			return
		}
		h.renderError(w, r, err)
		return
	}

	if _, err := h.sessions.Start(w, token); err != nil {
		h.renderError(w, r, err)
		return
	}
	redirect(w, r, next)
}

func (h *AccountHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.render(w, r, http.StatusOK, "signup", h.newPage(ctx, r, "Sign Up", view.AuthData{}))
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	in := service.SignUpInput{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
	}

	if err := h.customerService.SignUp(ctx, in); err != nil {
		if ue, ok := service.AsUserErrors(err); ok {
			page := h.newPage(ctx, r, "Sign Up", view.AuthData{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Email:     in.Email,
			})
			page.Error = ue.Message()
			h.render(w, r, http.StatusUnprocessableEntity, "signup", page)
			return
		}
		h.renderError(w, r, err)
		return
	}

	redirect(w, r, "/login?registered=true")
}

// Logout ends the session and empties the wishlist kept for it.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if s := sessionFromContext(ctx); s != nil {
		if err := h.wishlist.Clear(ctx, s.ID); err != nil {
			logger.FromContext(ctx).Warn("wishlist clear failed", zap.Error(err))
		}
	}
	h.sessions.Clear(w)
	redirect(w, r, "/")
}

func (h *AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(ctx)
	if s == nil {
		redirect(w, r, loginURL("/account"))
		return
	}

	customer, err := h.customerService.Account(ctx, s.CustomerToken)
	if errors.Is(err, service.ErrUnauthenticated) {
		h.sessions.Clear(w)
		redirect(w, r, loginURL("/account"))
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	page := h.newPage(ctx, r, "My Account", view.AccountData{
		Customer: customer,
		Address:  addressInput(customer.DefaultAddress),
	})
	if r.URL.Query().Get("updated") == "1" {
		page.Flash = msgAddressUpdated
	}
	h.render(w, r, http.StatusOK, "account", page)
}

func (h *AccountHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s := sessionFromContext(ctx)
	if s == nil {
		redirect(w, r, loginURL("/account"))
		return
	}

	address := domain.AddressInput{
		Address1: r.PostFormValue("address1"),
		Address2: r.PostFormValue("address2"),
		City:     r.PostFormValue("city"),
		Province: r.PostFormValue("province"),
		Zip:      r.PostFormValue("zip"),
		Country:  r.PostFormValue("country"),
	}

	err := h.customerService.UpdateAddress(ctx, s.CustomerToken, r.PostFormValue("address_id"), address)
	if err == nil {
		redirect(w, r, "/account?updated=1")
		return
	}
	if errors.Is(err, service.ErrUnauthenticated) {
		h.sessions.Clear(w)
		redirect(w, r, loginURL("/account"))
		return
	}
	ue, ok := service.AsUserErrors(err)
	if !ok {
		h.renderError(w, r, err)
		return
	}

	customer, errAccount := h.customerService.Account(ctx, s.CustomerToken)
	if errAccount != nil {
		h.renderError(w, r, errAccount)
		return
	}
	page := h.newPage(ctx, r, "My Account", view.AccountData{Customer: customer, Address: address})
	page.Error = ue.Message()
	h.render(w, r, http.StatusUnprocessableEntity, "account", page)
}

func addressInput(a *domain.Address) domain.AddressInput {
	if a == nil {
		return domain.AddressInput{}
	}
	return domain.AddressInput{
		Address1: a.Address1,
		Address2: a.Address2,
		City:     a.City,
		Province: a.Province,
		Zip:      a.Zip,
		Country:  a.Country,
	}
}
