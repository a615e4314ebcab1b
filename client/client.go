package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/HashtagPatil/KnowledgeHub/client/internal/api"
	errs "github.com/HashtagPatil/KnowledgeHub/client/internal/errors"
	"github.com/HashtagPatil/KnowledgeHub/client/internal/types"
	"github.com/HashtagPatil/KnowledgeHub/navigate"
	"github.com/HashtagPatil/KnowledgeHub/session"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is the single gateway to the backend. Every request it sends carries
// the session's bearer token, and every 401 it receives tears the session down.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	nav     navigate.Navigator

	base          http.RoundTripper // innermost transport; nil means http.DefaultTransport
	debug         bool
	onAuthFailure func(*http.Request)
	retry         retryPolicy
}

type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
}

// New constructs a Client for baseURL (e.g. "http://localhost:8080/api").
// Additional options can be provided via functional arguments.
func New(baseURL string, sess *session.Session, nav navigate.Navigator, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}
	if sess == nil {
		panic("session cannot be nil")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: sess,
		nav:     nav,
		retry:   retryPolicy{attempts: 1, base: 200 * time.Millisecond, max: 5 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.onAuthFailure == nil {
		c.onAuthFailure = c.teardownSession
	}

	c.installTransports()
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// installTransports builds the request pipeline, outermost first:
// auth-failure hook → bearer token → debug dump → base transport.
func (c *Client) installTransports() {
	rt := c.base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if c.debug {
		rt = &debugTransport{base: rt}
	}
	rt = &bearerTransport{base: rt, session: c.session}
	c.http.Transport = &authFailureTransport{base: rt, onFailure: c.onAuthFailure}
}

// teardownSession is the default auth-failure handler: forget the session and
// send the user to the login surface.
func (c *Client) teardownSession(req *http.Request) {
	if err := c.session.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear session after auth failure")
	}
	if c.nav != nil {
		c.nav.Navigate(navigate.Login)
	}
	log.Warn().Str("method", req.Method).Str("path", req.URL.Path).Msg("authentication rejected, session cleared")
}

// observe records the outcome of a call and returns err unchanged.
func (c *Client) observe(err error) error {
	outcome := "ok"
	if err != nil {
		if ce, ok := errs.As(err); ok {
			outcome = ce.Kind.String()
		} else {
			outcome = "other"
		}
	}
	requestsTotal.WithLabelValues(outcome).Inc()
	return err
}

// withRetry runs op, retrying recoverable failures with exponential backoff
// when the retry policy allows more than one attempt.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	if c.retry.attempts <= 1 {
		return c.observe(op())
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retry.base
	exp.Multiplier = 2
	exp.MaxInterval = c.retry.max
	exp.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.retry.attempts-1)), ctx)
	return backoff.Retry(func() error {
		err := c.observe(op())
		if err != nil && !errs.IsRecoverable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// --------------------------------------------------------------------
// Generic request
// --------------------------------------------------------------------

// Request sends method to path (relative to the base URL) with an optional
// JSON body and query params, decoding a JSON response into out when non-nil.
// Failures are *GatewayError values.
func (c *Client) Request(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	return c.observe(api.Do(ctx, c.http, c.baseURL, method, path, body, params, out, method+" "+path))
}

// --------------------------------------------------------------------
// Authentication - delegated to internal/api
// --------------------------------------------------------------------

// Login exchanges credentials for a token. It does not touch the session; see
// package auth for the flow that does.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	res, err := api.Login(ctx, c.http, c.baseURL, types.LoginRequest{Email: email, Password: password})
	return res, c.observe(err)
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	res, err := api.Signup(ctx, c.http, c.baseURL, types.SignupRequest{Username: username, Email: email, Password: password})
	return res, c.observe(err)
}

// Logout notifies the backend that the token is no longer in use.
func (c *Client) Logout(ctx context.Context) error {
	return c.observe(api.Logout(ctx, c.http, c.baseURL))
}

// --------------------------------------------------------------------
// Article operations - delegated to internal/api
// --------------------------------------------------------------------

// ListArticles searches articles. Blank query/category mean no filter. It is
// never retried: a failed search simply yields no results.
func (c *Client) ListArticles(ctx context.Context, query, category string) ([]ArticleSummary, error) {
	out, err := api.ListArticles(ctx, c.http, c.baseURL, query, category)
	return out, c.observe(err)
}

// MyArticles lists the signed-in user's articles.
func (c *Client) MyArticles(ctx context.Context) ([]ArticleSummary, error) {
	var out []ArticleSummary
	err := c.withRetry(ctx, func() error {
		var err error
		out, err = api.MyArticles(ctx, c.http, c.baseURL)
		return err
	})
	return out, err
}

// GetArticle retrieves an article with its content.
func (c *Client) GetArticle(ctx context.Context, id int64) (*Article, error) {
	var out *Article
	err := c.withRetry(ctx, func() error {
		var err error
		out, err = api.GetArticle(ctx, c.http, c.baseURL, id)
		return err
	})
	return out, err
}

// CreateArticle publishes a new article.
func (c *Client) CreateArticle(ctx context.Context, req ArticleRequest) (*Article, error) {
	out, err := api.CreateArticle(ctx, c.http, c.baseURL, req)
	return out, c.observe(err)
}

// UpdateArticle replaces the article with the given id.
func (c *Client) UpdateArticle(ctx context.Context, id int64, req ArticleRequest) (*Article, error) {
	out, err := api.UpdateArticle(ctx, c.http, c.baseURL, id, req)
	return out, c.observe(err)
}

// DeleteArticle removes the article with the given id.
func (c *Client) DeleteArticle(ctx context.Context, id int64) error {
	return c.observe(api.DeleteArticle(ctx, c.http, c.baseURL, id))
}

// --------------------------------------------------------------------
// AI operations - delegated to internal/api
// --------------------------------------------------------------------

// Rewrite runs a rewrite-style action ("improve", "grammar", "concise",
// "title") over content.
func (c *Client) Rewrite(ctx context.Context, content, action, title string) (string, error) {
	out, err := api.Rewrite(ctx, c.http, c.baseURL, types.AIRequest{Content: content, Action: action, Title: title})
	return out, c.observe(err)
}

// Summarize generates a short summary of content.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	out, err := api.Summarize(ctx, c.http, c.baseURL, content)
	return out, c.observe(err)
}

// SuggestTags suggests tags for an article.
func (c *Client) SuggestTags(ctx context.Context, content, title string) ([]string, error) {
	out, err := api.SuggestTags(ctx, c.http, c.baseURL, content, title)
	return out, c.observe(err)
}
