package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const redactedAuthorization = "Bearer [REDACTED]"

// debugTransport dumps every request and response through zerolog at debug
// level. It is installed by WithDebugLogging or by setting KNOWHUB_DEBUG=true
// (or DEBUG=true) in the environment.
//
// The Authorization header is redacted in the dump. Bodies are not, and they
// carry credentials on the auth endpoints. Keep it out of production.
type debugTransport struct {
	base   http.RoundTripper
	logger *zerolog.Logger // nil means the global logger
}

func (dt *debugTransport) log() *zerolog.Logger {
	if dt.logger != nil {
		return dt.logger
	}
	return &log.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := dt.log()

	dumped := req
	if req.Header.Get("Authorization") != "" {
		dumped = req.WithContext(req.Context())
		dumped.Header = req.Header.Clone()
		dumped.Header.Set("Authorization", redactedAuthorization)
	}
	if reqDump, err := httputil.DumpRequestOut(dumped, true); err == nil {
		logger.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}
	// The dump drained the body and left a fresh copy on dumped.
	req.Body = dumped.Body

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		logger.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		logger.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether KNOWHUB_DEBUG or DEBUG is "true".
func debugLoggingRequested() bool {
	return os.Getenv("KNOWHUB_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
