// Package session keeps the visitor's login and cart identifiers in cookies.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fjod/go_storefront/internal/domain"
)

const CookieName = "storefront_session"

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session has expired")
	ErrMissingSecret  = errors.New("session secret is required")
)

// Claims carry the customer access token issued by the commerce platform.
// The registered ID is the session id that scopes the wishlist.
type Claims struct {
	jwt.RegisteredClaims
	CustomerToken string `json:"customer_token"`
}

type Session struct {
	ID            string
	CustomerToken string
	ExpiresAt     time.Time
}

type Manager struct {
	secret []byte
	issuer string
	secure bool
	now    func() time.Time
}

type Option func(*Manager)

// WithSecureCookies marks cookies Secure, for deployments behind HTTPS.
func WithSecureCookies(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

func WithIssuer(issuer string) Option {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func withClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(secret string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	m := &Manager{
		secret: []byte(secret),
		issuer: "storefront",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a new session for the access token. The session expires with the token.
func (m *Manager) Issue(token *domain.AccessToken) (*Session, string, error) {
	now := m.now()
	s := &Session{
		ID:            uuid.New().String(),
		CustomerToken: token.Token,
		ExpiresAt:     token.ExpiresAt,
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		CustomerToken: token.Token,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, "", err
	}
	return s, signed, nil
}

func (m *Manager) Parse(raw string) (*Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSession
		}
		return nil, ErrInvalidSession
	}
	if !token.Valid || claims.ID == "" || claims.CustomerToken == "" {
		return nil, ErrInvalidSession
	}

	return &Session{
		ID:            claims.ID,
		CustomerToken: claims.CustomerToken,
		ExpiresAt:     claims.ExpiresAt.Time,
	}, nil
}

// Start issues a session and writes its cookie.
func (m *Manager) Start(w http.ResponseWriter, token *domain.AccessToken) (*Session, error) {
	s, signed, err := m.Issue(token)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// FromRequest returns the session carried by the request cookie.
// Any failure means the visitor is logged out.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	return m.Parse(c.Value)
}

func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
