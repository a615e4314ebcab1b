package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/HashtagPatil/KnowledgeHub/client/internal/errors"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 64 << 10

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Do sends one JSON request to baseURL+path and decodes a 2xx JSON response
// into out (skipped when out is nil). Any other outcome is returned as a
// *errors.ClassifiedError named after operation.
func Do(ctx context.Context, httpClient HTTPClient, baseURL, method, path string, body any, params url.Values, out any, operation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return errors.NewNetworkError(operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.NewHTTPError(resp.StatusCode, string(b), operation)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}
