package domain

import "github.com/shopspring/decimal"

type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

// String renders the amount the way product cards show it, e.g. "45.00 INR".
func (m Money) String() string {
	if m.CurrencyCode == "" {
		return m.Amount.StringFixed(2)
	}
	return m.Amount.StringFixed(2) + " " + m.CurrencyCode
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}
