package client

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/HashtagPatil/KnowledgeHub/session"
)

// bearerTransport attaches the session's token to every request. Callers never
// set Authorization themselves; anything they set is replaced.
type bearerTransport struct {
	base    http.RoundTripper
	session *session.Session
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	cloned := req.Clone(req.Context())
	cloned.Header.Del("Authorization")
	if token := t.session.Token(); token != "" {
		cloned.Header.Set("Authorization", "Bearer "+token)
	}
	if cloned.Header.Get("X-Request-Id") == "" {
		cloned.Header.Set("X-Request-Id", uuid.NewString())
	}
	return t.base.RoundTrip(cloned)
}

// authFailureTransport is the terminal hook of the response pipeline: each 401
// response triggers onFailure exactly once, whichever component sent the
// request. The response itself is still returned to the caller.
type authFailureTransport struct {
	base      http.RoundTripper
	onFailure func(*http.Request)
}

func (t *authFailureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		authFailuresTotal.Inc()
		t.onFailure(req)
	}
	return resp, nil
}
