package service

import (
	"errors"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrInvalidInput    = errors.New("invalid input")
)

// UserErrors carries messages meant for the customer, from the commerce
// platform or from form validation.
type UserErrors struct {
	Errors []domain.UserError
	// Cause is the underlying failure when the message hides one.
	Cause error
}

func newUserError(message string) *UserErrors {
	return &UserErrors{Errors: []domain.UserError{{Message: message}}}
}

func (e *UserErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		msgs = append(msgs, ue.Message)
	}
	return strings.Join(msgs, "; ")
}

// Message is the text shown on the form: the first error.
func (e *UserErrors) Message() string {
	return domain.FirstMessage(e.Errors)
}

func (e *UserErrors) Unwrap() error {
	return e.Cause
}
