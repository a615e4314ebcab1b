package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HashtagPatil/KnowledgeHub/navigate"
	"github.com/HashtagPatil/KnowledgeHub/session"
)

func newSession(t *testing.T, token string) *session.Session {
	t.Helper()
	sess, err := session.Open(session.NewMemoryStore())
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, sess.Establish(token, session.Profile{Username: "alice", Email: "alice@example.com"}))
	}
	return sess
}

func TestBearerTokenAttached(t *testing.T) {
	t.Parallel()
	var gotAuth, gotReqID atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		gotReqID.Store(r.Header.Get("X-Request-Id"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t, "tok-123"), nil)
	_, err := c.ListArticles(t.Context(), "", "")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth.Load())
	assert.NotEmpty(t, gotReqID.Load())
}

func TestNoTokenNoHeader(t *testing.T) {
	t.Parallel()
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t, ""), nil)
	// A caller-supplied Authorization header must never reach the wire.
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/articles", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer forged")
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "", gotAuth.Load())
}

func TestUnauthorizedTearsDownSession(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid token"}`))
	}))
	defer srv.Close()

	sess := newSession(t, "stale")
	nav := &navigate.Recorder{}
	c := New(srv.URL, sess, nav)

	_, err := c.GetArticle(t.Context(), 7)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, "Invalid token", Message(err, "fallback"))

	assert.False(t, sess.Authenticated())
	assert.Equal(t, "", sess.Token())
	assert.Equal(t, []string{navigate.Login}, nav.History())
}

func TestUnauthorizedFromAnyEndpoint(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	calls := []func(c *Client) error{
		func(c *Client) error { _, err := c.ListArticles(t.Context(), "go", ""); return err },
		func(c *Client) error { _, err := c.MyArticles(t.Context()); return err },
		func(c *Client) error { _, err := c.Summarize(t.Context(), "text"); return err },
		func(c *Client) error { _, err := c.SuggestTags(t.Context(), "text", "t"); return err },
		func(c *Client) error { return c.DeleteArticle(t.Context(), 1) },
		func(c *Client) error { return c.Request(t.Context(), http.MethodGet, "/anything", nil, nil, nil) },
	}
	for i, call := range calls {
		var hits atomic.Int32
		c := New(srv.URL, newSession(t, "tok"), nil, WithAuthFailureHandler(func(*http.Request) { hits.Add(1) }))
		err := call(c)
		require.Error(t, err, "call %d", i)
		assert.Equal(t, int32(1), hits.Load(), "call %d should trigger the handler exactly once", i)
	}
}

func TestForbiddenIsNotTeardown(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"not your article"}`))
	}))
	defer srv.Close()

	sess := newSession(t, "tok")
	nav := &navigate.Recorder{}
	c := New(srv.URL, sess, nav)

	err := c.DeleteArticle(t.Context(), 3)
	require.Error(t, err)
	ge, ok := AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, KindClient, ge.Kind)
	assert.Equal(t, http.StatusForbidden, ge.StatusCode)
	assert.True(t, sess.Authenticated())
	assert.Empty(t, nav.History())
}

func TestGetArticleRetriesServerErrors(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":9,"title":"Go","content":"<p>x</p>","tags":"go"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t, ""), nil, WithRetry(3, time.Millisecond))
	a, err := c.GetArticle(t.Context(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.ID)
	assert.Equal(t, int32(3), hits.Load())
}

func TestNotFoundIsNotRetried(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t, ""), nil, WithRetry(5, time.Millisecond))
	_, err := c.GetArticle(t.Context(), 404)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestSearchIsNeverRetried(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, newSession(t, ""), nil, WithRetry(5, time.Millisecond))
	_, err := c.ListArticles(t.Context(), "go", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGenericRequest(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/articles/search", r.URL.Path)
		assert.Equal(t, "x", r.URL.Query().Get("q"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": body["v"]})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", newSession(t, ""), nil)
	assert.Equal(t, srv.URL+"/api", c.BaseURL())

	var out map[string]string
	err := c.Request(t.Context(), http.MethodPost, "/articles/search", map[string]string{"v": "hi"}, url.Values{"q": {"x"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out["echo"])
}

func TestNetworkErrorClassified(t *testing.T) {
	t.Parallel()
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, assert.AnError
	})
	c := New("http://unreachable.invalid", newSession(t, ""), nil, WithTransport(rt))
	_, err := c.Summarize(t.Context(), "text")
	require.Error(t, err)
	ge, ok := AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, ge.Kind)
	assert.Equal(t, "Failed", Message(err, "Failed"))
}

func TestNewPanicsOnMissingArguments(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { New("", newSession(t, ""), nil) })
	assert.Panics(t, func() { New("http://x", nil, nil) })
}
