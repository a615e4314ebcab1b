// Package errors classifies gateway failures so callers can tell a dropped
// connection from a rejected credential from a server fault.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the class of a gateway failure.
type Kind int

const (
	// KindNetwork means no response was received (connection refused, timeout,
	// cancelled context).
	KindNetwork Kind = iota

	// KindAuth means the backend rejected the caller's credentials (401). It is
	// the only kind with a side effect beyond the call site: the session is torn
	// down.
	KindAuth

	// KindClient covers every other 4xx, e.g. 404 Not Found or 403 Forbidden.
	KindClient

	// KindServer covers 5xx and unexpected status codes.
	KindServer
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ClassifiedError wraps a gateway failure with its classification.
type ClassifiedError struct {
	Kind       Kind
	StatusCode int    // HTTP status code (0 for network errors)
	Message    string // server-supplied message, if any
	Body       string // raw response body for debugging
	Underlying error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		if e.Message != "" {
			return fmt.Sprintf("[%s] HTTP %d: %v: %s", e.Kind, e.StatusCode, e.Underlying, e.Message)
		}
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Kind, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Kind, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// Recoverable reports whether retrying the same request could succeed:
// network failures, 408, 429 and server errors.
func (e *ClassifiedError) Recoverable() bool {
	switch e.Kind {
	case KindNetwork, KindServer:
		return true
	case KindClient:
		return e.StatusCode == 408 || e.StatusCode == 429
	default:
		return false
	}
}

// As returns the ClassifiedError in err's chain, if any.
func As(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err is a classified error of kind k.
func IsKind(err error, k Kind) bool {
	ce, ok := As(err)
	return ok && ce.Kind == k
}

// IsRecoverable reports whether err is a classified error worth retrying.
func IsRecoverable(err error) bool {
	ce, ok := As(err)
	return ok && ce.Recoverable()
}
