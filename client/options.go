package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
//
// Options only record settings; the transport pipeline is assembled after all
// options have been applied, so their order does not matter.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout used by the client.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP request.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging logs each request/response when enabled is true.
//
// The debug transport sits beneath the bearer transport and replaces the
// bearer token with a placeholder before dumping. Do not enable this option in
// production environments as it logs request and response bodies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = c.debug || enabled
		return nil
	}
}

// WithTransport replaces the innermost transport (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		if rt == nil {
			return fmt.Errorf("transport cannot be nil")
		}
		c.base = rt
		return nil
	}
}

// WithRetry lets idempotent reads of single articles and of the user's own
// articles retry recoverable failures up to attempts times in total, backing
// off exponentially from base. Search is never retried.
func WithRetry(attempts int, base time.Duration) Option {
	return func(c *Client) error {
		if attempts < 1 {
			return fmt.Errorf("retry attempts must be >= 1")
		}
		if base <= 0 {
			return fmt.Errorf("retry base must be > 0")
		}
		c.retry.attempts = attempts
		c.retry.base = base
		return nil
	}
}

// WithAuthFailureHandler replaces the default reaction to a 401 (clear the
// session and navigate to the login surface).
func WithAuthFailureHandler(fn func(*http.Request)) Option {
	return func(c *Client) error {
		if fn == nil {
			return fmt.Errorf("auth failure handler cannot be nil")
		}
		c.onAuthFailure = fn
		return nil
	}
}
