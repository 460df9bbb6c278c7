package session

import (
	"net/http"
	"time"
)

const (
	CartCookieName = "shopifyCartId"
	CartCookieTTL  = 30 * 24 * time.Hour
)

// CartID returns the visitor's cart id, or "" when none is stored.
func CartID(r *http.Request) string {
	c, err := r.Cookie(CartCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func SetCartID(w http.ResponseWriter, cartID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookieName,
		Value:    cartID,
		Path:     "/",
		MaxAge:   int(CartCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
