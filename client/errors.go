package client

import (
	"net/http"

	errs "github.com/HashtagPatil/KnowledgeHub/client/internal/errors"
)

// GatewayError is the error returned for every failed backend call.
type GatewayError = errs.ClassifiedError

// ErrorKind classifies a GatewayError.
type ErrorKind = errs.Kind

// Error kinds.
const (
	KindNetwork = errs.KindNetwork
	KindAuth    = errs.KindAuth
	KindClient  = errs.KindClient
	KindServer  = errs.KindServer
)

// AsGatewayError returns the GatewayError in err's chain, if any.
func AsGatewayError(err error) (*GatewayError, bool) { return errs.As(err) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return errs.IsKind(err, errs.KindAuth) }

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	ce, ok := errs.As(err)
	return ok && ce.StatusCode == http.StatusNotFound
}

// Message returns the server-supplied message carried by err, or fallback.
func Message(err error, fallback string) string {
	if ce, ok := errs.As(err); ok && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
