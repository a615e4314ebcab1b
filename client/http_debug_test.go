package client

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDebugTransportRedactsBearerToken(t *testing.T) {
	t.Parallel()
	const token = "tok-3f9a1c"

	var (
		gotAuth string
		gotBody string
	)
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotAuth = r.Header.Get("Authorization")
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		gotBody = string(b)
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{"ok":true}`)), Header: make(http.Header), Request: r}, nil
	})

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	dt := &debugTransport{base: rt, logger: &logger}

	req, err := http.NewRequest(http.MethodPost, "http://example.com/api/articles", strings.NewReader(`{"title":"Select"}`))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := dt.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer "+token {
		t.Fatalf("base transport saw Authorization %q", gotAuth)
	}
	if gotBody != `{"title":"Select"}` {
		t.Fatalf("base transport saw body %q", gotBody)
	}
	out := buf.String()
	if strings.Contains(out, token) {
		t.Fatalf("token leaked into debug log: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("request dump missing redacted header: %s", out)
	}
	if !strings.Contains(out, "Select") {
		t.Fatalf("request dump missing body: %s", out)
	}
}
