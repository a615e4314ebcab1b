package app

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HashtagPatil/KnowledgeHub/assist"
	"github.com/HashtagPatil/KnowledgeHub/auth"
	"github.com/HashtagPatil/KnowledgeHub/editor"
	"github.com/HashtagPatil/KnowledgeHub/internal/config"
	"github.com/HashtagPatil/KnowledgeHub/internal/fakeapi"
	"github.com/HashtagPatil/KnowledgeHub/internal/scheduler"
	"github.com/HashtagPatil/KnowledgeHub/navigate"
	"github.com/HashtagPatil/KnowledgeHub/search"
)

type env struct {
	fake  *fakeapi.Server
	cfg   *config.Config
	nav   *navigate.Recorder
	clock *scheduler.Virtual
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fake := fakeapi.New()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	cfg := config.NewForTesting()
	cfg.APIURL = srv.URL + "/api"
	return &env{fake: fake, cfg: cfg, nav: &navigate.Recorder{}, clock: scheduler.NewVirtual()}
}

func (e *env) open(t *testing.T, opts ...Option) *App {
	t.Helper()
	a, err := New(e.cfg, append([]Option{WithNavigator(e.nav), WithScheduler(e.clock)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.APIURL = "not a url"
	_, err := New(cfg)
	require.Error(t, err)

	_, err = New(nil)
	require.Error(t, err)
}

func TestWriteAssistSaveAndManage(t *testing.T) {
	e := newEnv(t)
	e.fake.SeedUser("alice", "alice@example.com", "secret123")
	a := e.open(t)
	ctx := t.Context()

	_, err := a.Auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, navigate.Home, e.nav.Current())

	ed := a.NewEditor(nil)
	defer func() { _ = ed.Close() }()
	require.NoError(t, ed.Begin(ctx))
	require.NoError(t, ed.Update(ctx, func(d *editor.Draft) {
		d.Title = "Shipping containers"
		d.Content = "<p>We run postgres inside docker for local development.</p>"
	}))

	require.NoError(t, ed.Assist.Run(ctx, assist.Tags))
	require.NoError(t, ed.Assist.Settle(ctx))
	draft, err := ed.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "docker, database", draft.Tags)

	require.NoError(t, ed.Assist.Run(ctx, assist.Grammar))
	require.NoError(t, ed.Assist.Settle(ctx))
	require.NoError(t, ed.Assist.ApplyToEditor(ctx))

	saved, err := ed.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, navigate.Article(saved.ID), e.nav.Current())
	assert.Equal(t, "<p>We run postgres inside docker for local development.</p>", saved.Content)

	mine, err := a.Dashboard.Load(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NoError(t, a.Dashboard.Delete(ctx, saved.ID))

	st, err := a.Dashboard.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Articles)
}

func TestDebouncedSearchAgainstBackend(t *testing.T) {
	e := newEnv(t)
	e.fake.SeedUser("alice", "alice@example.com", "secret123")
	e.fake.SeedArticle("alice@example.com", "Go channels", "<p>x</p>", "Backend", "go")
	e.fake.SeedArticle("alice@example.com", "React hooks", "<p>y</p>", "Frontend", "react")
	a := e.open(t)
	ctx := t.Context()

	require.NoError(t, a.Search.Start(ctx))
	require.NoError(t, a.Settle(ctx))
	st, err := a.Search.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Results, 2)

	before := e.fake.Requests()
	for _, text := range []string{"r", "re", "rea", "react"} {
		require.NoError(t, a.Search.SetQueryText(ctx, text))
	}
	require.NoError(t, a.Loop.Flush(ctx))
	e.clock.Advance(e.cfg.SearchDebounce)
	require.NoError(t, a.Settle(ctx))

	st, err = a.Search.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, search.Criteria{Query: "react"}, st.Criteria)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "React hooks", st.Results[0].Title)
	assert.Equal(t, before+1, e.fake.Requests(), "one request per settled query")
}

func TestExpiredTokenForcesLogout(t *testing.T) {
	e := newEnv(t)
	e.fake.SeedUser("alice", "alice@example.com", "secret123")
	a := e.open(t)
	ctx := t.Context()

	_, err := a.Auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	e.fake.ExpireTokens()

	_, err = a.Dashboard.Load(ctx)
	require.Error(t, err)
	assert.False(t, a.Session.Authenticated())
	assert.Equal(t, navigate.Login, e.nav.Current())
}

func TestSessionSurvivesRestart(t *testing.T) {
	e := newEnv(t)
	e.cfg.SessionPath = filepath.Join(t.TempDir(), "session.db")
	e.fake.SeedUser("alice", "alice@example.com", "secret123")

	first, err := New(e.cfg, WithNavigator(e.nav), WithScheduler(e.clock))
	require.NoError(t, err)
	_, err = first.Auth.Signup(t.Context(), auth.SignupForm{
		Username: "bob", Email: "bob@example.com", Password: "hunter22", Confirm: "hunter22",
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := e.open(t)
	p, ok := second.Session.Profile()
	require.True(t, ok)
	assert.Equal(t, "bob", p.Username)

	mine, err := second.Dashboard.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, mine)
}
