package request

import (
	"fmt"
	"net/http"
)

// Kind is the closed error taxonomy of the request layer.
type Kind string

const (
	KindTransport      Kind = "transport"
	KindRateLimited    Kind = "rate_limited"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindServer         Kind = "server"
	KindUnknownStatus  Kind = "unknown_status"
	KindDecoding       Kind = "decoding"
	KindContentBlocked Kind = "content_blocked"
)

// APIError is the single error type surfaced by the request client.
type APIError struct {
	Kind       Kind
	Message    string
	StatusCode int
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another attempt may succeed.
// Only rate limiting and transport failures qualify.
func (e *APIError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransport
}

// Suggestions are short user-facing recovery actions.
func (e *APIError) Suggestions() []string {
	switch e.Kind {
	case KindTransport:
		return []string{"check your connection", "retry"}
	case KindRateLimited:
		return []string{"wait a moment", "retry"}
	case KindUnauthorized, KindForbidden:
		return []string{"check API credentials"}
	case KindContentBlocked:
		return []string{"try a different photo"}
	case KindDecoding, KindServer:
		return []string{"retry later"}
	default:
		return []string{"retry"}
	}
}

func newTransportError(cause error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Message: "request failed",
		Cause:   cause,
	}
}

func newDecodingError(cause error) *APIError {
	return &APIError{
		Kind:    KindDecoding,
		Message: "response did not match the expected schema",
		Cause:   cause,
	}
}

// NewContentBlocked marks a response rejected by a safety filter.
// Declared here so every API failure shares one taxonomy.
func NewContentBlocked(reason string) *APIError {
	return &APIError{
		Kind:    KindContentBlocked,
		Message: "content blocked by safety filter: " + reason,
	}
}

// fromStatus maps a non-2xx status code onto the taxonomy.
func fromStatus(code int, body string) *APIError {
	switch {
	case code == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, Message: "rate limited", StatusCode: code}
	case code == http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, Message: "unauthorized", StatusCode: code}
	case code == http.StatusForbidden:
		return &APIError{Kind: KindForbidden, Message: "forbidden", StatusCode: code}
	case code == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Message: "not found", StatusCode: code}
	case code >= 500:
		return &APIError{
			Kind:       KindServer,
			Message:    fmt.Sprintf("server error (%d): %s", code, truncate(body, 200)),
			StatusCode: code,
		}
	default:
		return &APIError{
			Kind:       KindUnknownStatus,
			Message:    fmt.Sprintf("unexpected status %d: %s", code, truncate(body, 200)),
			StatusCode: code,
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
