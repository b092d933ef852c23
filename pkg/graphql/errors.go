package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrRateLimited is returned when the rate limit tracker blocks a request.
	ErrRateLimited = errors.New("request blocked: rate limit critical")
)

// ConnectMessage is shown for every failure to reach the API.
const ConnectMessage = "Could not connect to the API."

// Kind is the user-facing classification of a failed request.
type Kind string

const (
	// KindTransport means the API could not be reached or answered with a non-GraphQL failure.
	KindTransport Kind = "transport"

	// KindDecode means the response did not match the expected shape.
	KindDecode Kind = "decode"

	// KindGraphQL means the API answered with an error list.
	KindGraphQL Kind = "graphql"
)

// ErrorClass classifies HTTP failures for retry decisions.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// ErrorMessage is one entry of a GraphQL error list.
type ErrorMessage struct {
	Message string `json:"message"`
}

// Error is a failed GraphQL request.
type Error struct {
	Kind       Kind
	StatusCode int
	Messages   []string
	Err        error
}

// Error returns the text shown to the user in place of the result.
func (e *Error) Error() string {
	switch e.Kind {
	case KindGraphQL:
		return strings.Join(e.Messages, "")
	case KindDecode:
		if e.Err != nil {
			return fmt.Sprintf("Could not read the API response: %v", e.Err)
		}
		return "Could not read the API response."
	default:
		if len(e.Messages) > 0 {
			return strings.Join(e.Messages, "")
		}
		if e.StatusCode != 0 {
			return fmt.Sprintf("API request failed (status %d)", e.StatusCode)
		}
		return ConnectMessage
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Normalize collapses any error into an *Error. It returns nil for nil.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	return &Error{Kind: KindTransport, Err: err}
}

// IsGraphQL reports whether err carries an API error list.
func IsGraphQL(err error) bool {
	var gqlErr *Error
	return errors.As(err, &gqlErr) && gqlErr.Kind == KindGraphQL
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

func messages(list []ErrorMessage) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.Message)
	}
	return out
}
