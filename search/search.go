// Package search keeps an article list consistent with rapidly changing
// search input.
//
// Typing is debounced: only the text that survives a quiet period becomes the
// effective query. Category changes and Clear take effect immediately. Every
// change of the effective criteria issues exactly one list request, and only
// the response to the most recently issued request is ever shown.
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/internal/eventloop"
	"github.com/HashtagPatil/KnowledgeHub/internal/scheduler"
)

// DefaultDebounce is the quiet period after the last keystroke.
const DefaultDebounce = 400 * time.Millisecond

// Lister fetches article summaries; blank arguments mean no filter.
// *client.Client satisfies it.
type Lister interface {
	ListArticles(ctx context.Context, query, category string) ([]client.ArticleSummary, error)
}

// Controller is the debounced search pipeline. All of its state lives on the
// event loop; the exported methods may be called from any goroutine except a
// loop callback.
type Controller struct {
	loop     *eventloop.Loop
	lister   Lister
	sched    scheduler.Scheduler
	debounce time.Duration
	onChange func(State)

	ctx    context.Context // cancelled by Close; parent of every request
	cancel context.CancelFunc

	// Loop-confined.
	state    State
	issued   bool // at least one request went out
	seq      uint64
	timer    scheduler.Timer
	timerGen uint64
	inflight int
	idle     chan struct{}
	closed   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithScheduler replaces the wall-clock scheduler, typically with a
// scheduler.Virtual in tests.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithOnChange registers fn to receive a copy of the state after every
// transition. fn runs on the loop and must not block or call back into the
// Controller.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// New returns a Controller in the Loading state. Call Start to issue the
// initial unfiltered load.
func New(loop *eventloop.Loop, lister Lister, opts ...Option) *Controller {
	if loop == nil || lister == nil {
		panic("search: loop and lister are required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		loop:     loop,
		lister:   lister,
		sched:    scheduler.Real(),
		debounce: DefaultDebounce,
		ctx:      ctx,
		cancel:   cancel,
		state:    State{Loading: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start issues the initial load for the current criteria. Calling it again,
// or after the criteria already changed, does nothing.
func (c *Controller) Start(ctx context.Context) error {
	return c.loop.Do(ctx, func() {
		if c.closed || c.issued {
			return
		}
		c.issue(c.state.Criteria)
		c.notify()
	})
}

// SetQueryText records raw input and restarts the debounce timer. The text
// becomes effective once no further input arrives for the debounce period.
func (c *Controller) SetQueryText(ctx context.Context, text string) error {
	return c.loop.Do(ctx, func() {
		if c.closed {
			return
		}
		c.state.Text = text
		c.armSettle()
		c.notify()
	})
}

// SetCategory changes the category filter immediately; the effective query
// is kept as is. Pass "" for all categories.
func (c *Controller) SetCategory(ctx context.Context, category string) error {
	return c.loop.Do(ctx, func() {
		if c.closed {
			return
		}
		c.apply(Criteria{Query: c.state.Criteria.Query, Category: strings.TrimSpace(category)})
		c.notify()
	})
}

// Clear empties the query text and the category at once and cancels any
// pending debounce.
func (c *Controller) Clear(ctx context.Context) error {
	return c.loop.Do(ctx, func() {
		if c.closed {
			return
		}
		c.stopSettle()
		c.state.Text = ""
		c.apply(Criteria{})
		c.notify()
	})
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	var s State
	err := c.loop.Do(ctx, func() { s = c.state.clone() })
	return s, err
}

// Settle waits until every issued request has resolved and its outcome has
// been applied. A debounce that has not fired yet is not waited for.
func (c *Controller) Settle(ctx context.Context) error {
	for {
		var idle chan struct{}
		err := c.loop.Do(ctx, func() {
			if c.inflight > 0 {
				if c.idle == nil {
					c.idle = make(chan struct{})
				}
				idle = c.idle
			}
		})
		if err != nil || idle == nil {
			return err
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the debounce timer, cancels outstanding requests and makes the
// Controller ignore their late responses. It is idempotent.
func (c *Controller) Close() error {
	c.cancel()
	err := c.loop.Do(context.Background(), func() {
		c.closed = true
		c.stopSettle()
	})
	if errors.Is(err, eventloop.ErrLoopClosed) {
		return nil
	}
	return err
}

// ------------------------- loop-confined -------------------------

func (c *Controller) armSettle() {
	c.stopSettle()
	gen := c.timerGen
	c.timer = c.sched.AfterFunc(c.debounce, func() {
		if err := c.loop.Post(c.ctx, func() { c.settle(gen) }); err != nil && c.ctx.Err() == nil {
			log.Warn().Err(err).Msg("search: dropping debounced query")
		}
	})
}

func (c *Controller) stopSettle() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) settle(gen uint64) {
	if c.closed || gen != c.timerGen {
		return
	}
	c.timer = nil
	c.apply(Criteria{Query: strings.TrimSpace(c.state.Text), Category: c.state.Criteria.Category})
	c.notify()
}

// apply makes crit effective, issuing a request unless it is already the
// effective criteria.
func (c *Controller) apply(crit Criteria) {
	if c.issued && crit == c.state.Criteria {
		return
	}
	c.state.Criteria = crit
	c.issue(crit)
}

func (c *Controller) issue(crit Criteria) {
	c.issued = true
	c.seq++
	seq := c.seq
	c.state.Searching = true
	c.inflight++
	requestsTotal.Inc()

	ctx := c.ctx
	go func() {
		items, err := c.lister.ListArticles(ctx, crit.Query, crit.Category)
		if perr := c.loop.Post(context.Background(), func() { c.resolve(seq, crit, items, err) }); perr != nil {
			log.Warn().Err(perr).Uint64("seq", seq).Msg("search: dropping response")
		}
	}()
}

func (c *Controller) resolve(seq uint64, crit Criteria, items []client.ArticleSummary, err error) {
	defer c.release()
	if c.closed {
		return
	}
	if seq != c.seq {
		discardedTotal.Inc()
		log.Debug().Uint64("seq", seq).Uint64("latest", c.seq).Msg("search: discarding superseded response")
		return
	}

	c.state.Searching = false
	c.state.Loading = false
	if err != nil {
		failuresTotal.Inc()
		log.Debug().Err(err).Str("query", crit.Query).Str("category", crit.Category).Msg("search failed")
		c.state.Results = []client.ArticleSummary{}
		c.state.Failed = true
	} else {
		if items == nil {
			items = []client.ArticleSummary{}
		}
		c.state.Results = items
		c.state.Failed = false
	}
	c.notify()
}

func (c *Controller) release() {
	c.inflight--
	if c.inflight == 0 && c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.state.clone())
	}
}
