package domain

import (
	"fmt"
	"time"
)

type Customer struct {
	ID             string   `json:"id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	DefaultAddress *Address `json:"default_address,omitempty"`
	Orders         []Order  `json:"orders"`
}

type Address struct {
	ID       string `json:"id"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type AddressInput struct {
	Address1 string `json:"address1" validate:"required,max=255" label:"Address"`
	Address2 string `json:"address2,omitempty" validate:"max=255" label:"Apartment, suite, etc."`
	City     string `json:"city" validate:"required,max=100" label:"City"`
	Province string `json:"province,omitempty" validate:"max=100" label:"State"`
	Zip      string `json:"zip" validate:"required,max=20" label:"PIN code"`
	Country  string `json:"country" validate:"required,max=100" label:"Country"`
}

type Order struct {
	ID                string    `json:"id"`
	OrderNumber       int       `json:"order_number"`
	ProcessedAt       time.Time `json:"processed_at"`
	TotalPrice        Money     `json:"total_price"`
	FinancialStatus   string    `json:"financial_status,omitempty"`
	FulfillmentStatus string    `json:"fulfillment_status,omitempty"`
}

type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserError is a validation failure reported by the commerce platform for a mutation.
type UserError struct {
	Code    string   `json:"code,omitempty"`
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// ParseExpiry sets ExpiresAt from the API's ISO-8601 timestamp.
func (t *AccessToken) ParseExpiry(value string) error {
	expiresAt, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fmt.Errorf("parse token expiry %q: %w", value, err)
	}
	t.ExpiresAt = expiresAt
	return nil
}

// FirstMessage is the message shown to the customer when a mutation reports user errors.
func FirstMessage(errs []UserError) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Message
}
