package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/view"
)

type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, p *view.Page) error
}

// CartReader loads the cart shown in the header and the drawer.
type CartReader interface {
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
}

// pages holds what every HTML handler needs to draw the layout.
type pages struct {
	views Renderer
	carts CartReader
}

func (p pages) basePage(r *http.Request, title string, data any) *view.Page {
	return &view.Page{
		Title:    title,
		Path:     r.URL.Path,
		LoggedIn: sessionFromContext(r.Context()) != nil,
		CartOpen: r.URL.Query().Get("cart") == "open",
		Data:     data,
	}
}

// newPage is basePage with the visitor's cart filled in. A cart that cannot
// be read leaves the header empty.
func (p pages) newPage(ctx context.Context, r *http.Request, title string, data any) *view.Page {
	page := p.basePage(r, title, data)
	if id := session.CartID(r); id != "" {
		cart, err := p.carts.GetCart(ctx, id)
		if err != nil {
			logger.FromContext(ctx).Warn("header cart read failed", zap.String("cart_id", id), zap.Error(err))
		} else {
			page.Cart = cart
		}
	}
	return page
}

func (p pages) render(w http.ResponseWriter, r *http.Request, status int, name string, page *view.Page) {
	if err := p.views.Render(w, status, name, page); err != nil {
		logger.FromContext(r.Context()).Error("render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p pages) renderNotFound(w http.ResponseWriter, r *http.Request, heading string) {
	page := p.basePage(r, heading, view.ErrorData{Heading: heading})
	p.render(w, r, http.StatusNotFound, "error", page)
}

// renderError draws the error page for err. Upstream and internal failures
// are shown as 502.
func (p pages) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := errorStatus(err)
	data := view.ErrorData{Heading: "Something went wrong", Message: "We couldn't load this page. Please try again."}

	switch {
	case status == http.StatusNotFound:
		data = view.ErrorData{Heading: "Page Not Found"}
	case status < http.StatusInternalServerError:
		data = view.ErrorData{Heading: "Invalid request", Message: err.Error()}
	default:
		logger.FromContext(r.Context()).Error("page failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		status = http.StatusBadGateway
	}
	p.render(w, r, status, "error", p.basePage(r, data.Heading, data))
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// localPath returns target when it is a path on this site, else fallback.
func localPath(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}

// returnTo is where a form post goes back to: the form's return_to field, else
// a same-site referer, else fallback.
func returnTo(r *http.Request, fallback string) string {
	if v := r.PostFormValue("return_to"); v != "" {
		return localPath(v, fallback)
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && ref.Path != "" {
		return localPath(ref.RequestURI(), fallback)
	}
	return fallback
}

// loginURL sends the visitor to log in and come back to next.
func loginURL(next string) string {
	return "/login?" + url.Values{"next": {next}}.Encode()
}

func withCartOpen(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("cart", "open")
	u.RawQuery = q.Encode()
	return u.String()
}

// pathParam returns the unescaped URL parameter. Cart line ids are gids and
// travel path-escaped.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return v
}
