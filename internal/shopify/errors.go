package shopify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestFailed   = errors.New("shopify: request failed")
	ErrUnavailable     = errors.New("shopify: service unavailable")
	ErrInvalidResponse = errors.New("shopify: invalid response")
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopify: API network error: %d %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRequestFailed
}

// GraphQLError carries the errors[] array of a response that reached the API.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "shopify: GraphQL error: " + strings.Join(e.Messages, ", ")
}
