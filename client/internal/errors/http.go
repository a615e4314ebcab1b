package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ClassifyHTTPError maps a non-2xx response to a ClassifiedError:
// - 401 is an authentication failure
// - other 4xx are client errors
// - 5xx and anything unexpected are server errors
func ClassifyHTTPError(statusCode int, body string, underlyingErr error) *ClassifiedError {
	return &ClassifiedError{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Message:    serverMessage(body),
		Body:       body,
		Underlying: underlyingErr,
	}
}

func kindForStatus(statusCode int) Kind {
	switch {
	case statusCode == 401:
		return KindAuth
	case statusCode >= 400 && statusCode < 500:
		return KindClient
	default:
		return KindServer
	}
}

// serverMessage extracts the "message" field the backend puts in error bodies.
func serverMessage(body string) string {
	body = strings.TrimSpace(body)
	if body == "" || body[0] != '{' {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// NewHTTPError creates a classified error for a non-2xx response.
// This is a convenience function for API layer usage.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	underlyingErr := fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	return ClassifyHTTPError(statusCode, body, underlyingErr)
}

// NewNetworkError creates a classified error for a request that got no
// response.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Kind:       KindNetwork,
		StatusCode: 0, // No HTTP status for network errors
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
