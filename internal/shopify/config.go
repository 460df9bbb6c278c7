package shopify

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultAPIVersion = "2024-01"
	DefaultCountry    = "IN"
)

var ErrMissingCredentials = errors.New("shopify: missing store domain or storefront access token")

// Config holds the Storefront API connection settings.
type Config struct {
	// Domain is the shop domain, e.g. "example.myshopify.com".
	Domain string
	// StorefrontToken is the public Storefront API access token.
	StorefrontToken string
	APIVersion      string
	// Country is passed to @inContext so prices come back in the local currency.
	Country string
	Timeout time.Duration
	// Endpoint overrides the URL derived from Domain and APIVersion.
	Endpoint string
}

// Validate checks the required settings and fills in defaults.
func (c *Config) Validate() error {
	if c.Domain == "" && c.Endpoint == "" {
		return ErrMissingCredentials
	}
	if c.StorefrontToken == "" {
		return ErrMissingCredentials
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Country == "" {
		c.Country = DefaultCountry
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// GraphQLEndpoint returns the URL requests are posted to.
func (c *Config) GraphQLEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	domain := strings.TrimSuffix(strings.TrimPrefix(c.Domain, "https://"), "/")
	return fmt.Sprintf("https://%s/api/%s/graphql.json", domain, c.APIVersion)
}
