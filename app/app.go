// Package app wires the KnowledgeHub client together: configuration, the
// persisted session, the API gateway, the UI event loop and the interaction
// controllers that share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/HashtagPatil/KnowledgeHub/assist"
	"github.com/HashtagPatil/KnowledgeHub/auth"
	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/dashboard"
	"github.com/HashtagPatil/KnowledgeHub/editor"
	"github.com/HashtagPatil/KnowledgeHub/internal/config"
	"github.com/HashtagPatil/KnowledgeHub/internal/eventloop"
	"github.com/HashtagPatil/KnowledgeHub/internal/scheduler"
	"github.com/HashtagPatil/KnowledgeHub/navigate"
	"github.com/HashtagPatil/KnowledgeHub/search"
	"github.com/HashtagPatil/KnowledgeHub/session"
)

// App is one running client. Build it with New and release it with Close.
type App struct {
	Config    *config.Config
	Session   *session.Session
	Client    *client.Client
	Loop      *eventloop.Loop
	Auth      *auth.Service
	Search    *search.Controller
	Dashboard *dashboard.Dashboard

	nav       navigate.Navigator
	sched     scheduler.Scheduler
	clipboard assist.Clipboard
}

type options struct {
	nav       navigate.Navigator
	sched     scheduler.Scheduler
	clipboard assist.Clipboard
	store     session.Store
	transport http.RoundTripper
	onSearch  func(search.State)
}

// Option customises New.
type Option func(*options)

// WithNavigator receives navigation requests. Defaults to a navigate.Recorder.
func WithNavigator(nav navigate.Navigator) Option {
	return func(o *options) { o.nav = nav }
}

// WithScheduler replaces the wall-clock scheduler used for debounce and
// indicator timers.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *options) { o.sched = s }
}

// WithClipboard sets the clipboard used by assist Copy.
func WithClipboard(c assist.Clipboard) Option {
	return func(o *options) { o.clipboard = c }
}

// WithSessionStore overrides the store selected by Config.SessionPath.
func WithSessionStore(s session.Store) Option {
	return func(o *options) { o.store = s }
}

// WithTransport sets the HTTP transport underneath the gateway.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithSearchListener is called on the loop after every search state change.
func WithSearchListener(fn func(search.State)) Option {
	return func(o *options) { o.onSearch = fn }
}

// New builds an App from cfg. The session is restored from the configured
// store before any request is made.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.nav == nil {
		o.nav = &navigate.Recorder{}
	}
	if o.sched == nil {
		o.sched = scheduler.Real()
	}

	// -------- Session -----------------------
	store := o.store
	if store == nil {
		var err error
		if store, err = openStore(cfg.SessionPath); err != nil {
			return nil, err
		}
	}
	sess, err := session.Open(store)
	if err != nil {
		return nil, fmt.Errorf("app: restore session: %w", err)
	}

	// -------- Gateway -----------------------
	clientOpts := []client.Option{
		client.WithHTTPTimeout(cfg.HTTPTimeout),
		client.WithRetry(cfg.RetryAttempts, cfg.RetryBase),
		client.WithDebugLogging(cfg.Debug),
	}
	if o.transport != nil {
		clientOpts = append(clientOpts, client.WithTransport(o.transport))
	}
	gw := client.New(cfg.APIURL, sess, o.nav, clientOpts...)

	// -------- Event loop --------------------
	loopCfg, err := eventloop.LoadConfig()
	if err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("app: loop config: %w", err)
	}
	loopCfg.Name = "ui"
	loop := eventloop.New(loopCfg)

	a := &App{
		Config:    cfg,
		Session:   sess,
		Client:    gw,
		Loop:      loop,
		Auth:      auth.NewService(gw, sess, o.nav),
		Dashboard: dashboard.New(loop, gw),
		nav:       o.nav,
		sched:     o.sched,
		clipboard: o.clipboard,
	}
	searchOpts := []search.Option{
		search.WithDebounce(cfg.SearchDebounce),
		search.WithScheduler(o.sched),
	}
	if o.onSearch != nil {
		searchOpts = append(searchOpts, search.WithOnChange(o.onSearch))
	}
	a.Search = search.New(loop, gw, searchOpts...)

	log.Debug().
		Str("api_url", cfg.APIURL).
		Bool("authenticated", sess.Authenticated()).
		Msg("app: initialised")
	return a, nil
}

func openStore(path string) (session.Store, error) {
	if path == "" {
		return session.NewMemoryStore(), nil
	}
	s, err := session.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return s, nil
}

// Navigator returns the navigator receiving the app's route changes.
func (a *App) Navigator() navigate.Navigator { return a.nav }

// Editor is an article edit session with its AI assistant.
type Editor struct {
	*editor.Session
	Assist *assist.Orchestrator
}

// NewEditor opens an edit session on the app loop. onAssist, when non-nil,
// observes assistant view changes.
func (a *App) NewEditor(onAssist func(assist.View)) *Editor {
	sess := editor.NewSession(a.Loop, a.Client, a.nav)
	opts := []assist.Option{
		assist.WithScheduler(a.sched),
		assist.WithCopiedIndicator(a.Config.CopiedIndicator),
	}
	if a.clipboard != nil {
		opts = append(opts, assist.WithClipboard(a.clipboard))
	}
	if onAssist != nil {
		opts = append(opts, assist.WithOnChange(onAssist))
	}
	return &Editor{Session: sess, Assist: assist.New(a.Loop, a.Client, sess, opts...)}
}

// Close stops the assistant.
func (e *Editor) Close() error { return e.Assist.Close() }

// Settle waits until search has nothing outstanding.
func (a *App) Settle(ctx context.Context) error { return a.Search.Settle(ctx) }

// Close stops the controllers, drains the loop and releases the session store.
func (a *App) Close() error {
	searchErr := a.Search.Close()
	a.Loop.Stop()
	return errors.Join(searchErr, a.Session.Close())
}
