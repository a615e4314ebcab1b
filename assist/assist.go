// Package assist orchestrates the AI writing actions of the article editor.
//
// One Orchestrator serves one editor. It owns a single result slot (see
// State): at most one action is pending at a time, a newer run or a dismissal
// makes any late response irrelevant, and results only reach the document
// through an explicit apply. The tags action is the exception: its result is
// written to the document's tags as soon as it arrives.
//
// All state lives on the event loop. The Document is called from the loop
// only, which is what keeps its writes and the user's edits serialized.
package assist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HashtagPatil/KnowledgeHub/assist/catalog"
	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/internal/eventloop"
	"github.com/HashtagPatil/KnowledgeHub/internal/markup"
	"github.com/HashtagPatil/KnowledgeHub/internal/scheduler"
	"github.com/HashtagPatil/KnowledgeHub/internal/validation"
)

// DefaultCopiedIndicator is how long View.Copied stays set after Copy.
const DefaultCopiedIndicator = 2 * time.Second

// AI is the backend surface used by the orchestrator. *client.Client
// satisfies it.
type AI interface {
	Rewrite(ctx context.Context, content, action, title string) (string, error)
	Summarize(ctx context.Context, content string) (string, error)
	SuggestTags(ctx context.Context, content, title string) ([]string, error)
}

// Document is the draft being edited. Its methods are only called from the
// event loop.
//
// Generation must change whenever the document is replaced by another draft.
// Results obtained for an earlier generation are dropped.
type Document interface {
	Generation() uint64
	Title() string
	Content() string
	ReplaceContent(html string)
	ReplaceTitle(title string)
	ReplaceTags(tags string)
}

// Clipboard receives copied results.
type Clipboard interface {
	WriteText(text string) error
}

// Orchestrator runs AI actions against one Document.
type Orchestrator struct {
	loop      *eventloop.Loop
	ai        AI
	doc       Document
	clipboard Clipboard
	catalog   *catalog.Catalog
	sched     scheduler.Scheduler
	copiedFor time.Duration
	onChange  func(View)

	ctx    context.Context
	cancel context.CancelFunc

	// Loop-confined.
	state     State
	seq       uint64
	docGen    uint64
	copied    bool
	copyTimer scheduler.Timer
	copyGen   uint64
	inflight  int
	idle      chan struct{}
	closed    bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClipboard enables Copy.
func WithClipboard(c Clipboard) Option {
	return func(o *Orchestrator) { o.clipboard = c }
}

// WithScheduler replaces the wall-clock scheduler used for the copied
// indicator.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sched = s
		}
	}
}

// WithCopiedIndicator overrides DefaultCopiedIndicator.
func WithCopiedIndicator(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.copiedFor = d
		}
	}
}

// WithCatalog replaces the embedded action catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.catalog = c
		}
	}
}

// WithOnChange registers fn to receive the view after every transition. fn
// runs on the loop and must not call back into the Orchestrator.
func WithOnChange(fn func(View)) Option {
	return func(o *Orchestrator) { o.onChange = fn }
}

// New returns an Idle Orchestrator.
func New(loop *eventloop.Loop, ai AI, doc Document, opts ...Option) *Orchestrator {
	if loop == nil || ai == nil || doc == nil {
		panic("assist: loop, ai and document are required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		loop:      loop,
		ai:        ai,
		doc:       doc,
		catalog:   catalog.Default(),
		sched:     scheduler.Real(),
		copiedFor: DefaultCopiedIndicator,
		ctx:       ctx,
		cancel:    cancel,
		state:     Idle{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run starts action against the document's current content and returns once
// the request is on its way. The outcome arrives later as Ready or Failed.
//
// Run returns a *validation.Error, without contacting the backend, when the
// content is too short, and ErrBusy while another action is pending.
func (o *Orchestrator) Run(ctx context.Context, action Action) error {
	entry, ok := o.catalog.Lookup(string(action))
	if !ok {
		return ErrUnknownAction
	}

	var runErr error
	err := o.loop.Do(ctx, func() {
		switch {
		case o.closed:
			runErr = ErrClosed
			return
		case o.busy():
			runErr = ErrBusy
			return
		}

		content, title := o.doc.Content(), o.doc.Title()
		if !markup.HasText(content, entry.MinChars) {
			runsTotal.WithLabelValues(string(action), "invalid").Inc()
			runErr = validation.New("content", entry.Invalid)
			return
		}

		o.seq++
		o.docGen = o.doc.Generation()
		o.state = Pending{Action: action}
		o.resetCopied()
		o.inflight++
		go o.call(o.seq, action, entry, content, title)
		o.notify()
	})
	if err != nil {
		return err
	}
	return runErr
}

// ApplyToEditor replaces the document content with the rewritten text, one
// paragraph per line, and returns to Idle. Only rewrite-style results apply.
func (o *Orchestrator) ApplyToEditor(ctx context.Context) error {
	var applyErr error
	err := o.loop.Do(ctx, func() {
		ready, entry, err := o.ready()
		if err != nil {
			applyErr = err
			return
		}
		if entry.Apply != catalog.ApplyContent {
			applyErr = ErrNotApplicable
			return
		}
		if o.docReplaced() {
			o.forget()
			applyErr = ErrNoResult
			return
		}
		o.doc.ReplaceContent(markup.Paragraphs(ready.Payload.Text))
		o.state = Idle{}
		o.resetCopied()
		o.notify()
	})
	if err != nil {
		return err
	}
	return applyErr
}

// ApplyTitle sets the document title to the index-th (zero-based) title
// suggestion and returns it. The suggestions stay available.
func (o *Orchestrator) ApplyTitle(ctx context.Context, index int) (string, error) {
	var (
		applied  string
		applyErr error
	)
	err := o.loop.Do(ctx, func() {
		ready, entry, err := o.ready()
		if err != nil {
			applyErr = err
			return
		}
		if entry.Apply != catalog.ApplyTitle {
			applyErr = ErrNotApplicable
			return
		}
		if o.docReplaced() {
			o.forget()
			applyErr = ErrNoResult
			return
		}
		titles := ready.Payload.Titles()
		if index < 0 || index >= len(titles) {
			applyErr = ErrNoSuchTitle
			return
		}
		applied = titles[index]
		o.doc.ReplaceTitle(applied)
		o.notify()
	})
	if err != nil {
		return "", err
	}
	return applied, applyErr
}

// Copy writes the result text to the clipboard and raises the copied
// indicator, which clears itself after the indicator period. Copying again
// restarts the period.
func (o *Orchestrator) Copy(ctx context.Context) error {
	if o.clipboard == nil {
		return ErrNoClipboard
	}

	var (
		text    string
		seq     uint64
		copyErr error
	)
	if err := o.loop.Do(ctx, func() {
		ready, _, err := o.ready()
		if err != nil {
			copyErr = err
			return
		}
		text, seq = ready.Payload.Text, o.seq
	}); err != nil {
		return err
	}
	if copyErr != nil {
		return copyErr
	}

	if err := o.clipboard.WriteText(text); err != nil {
		return err
	}

	return o.loop.Do(ctx, func() {
		if _, ok := o.state.(Ready); !ok || o.closed || seq != o.seq {
			return
		}
		o.copied = true
		o.armCopied()
		o.notify()
	})
}

// Dismiss discards the result, or abandons a pending action, and returns to
// Idle. A response that arrives afterwards is ignored.
func (o *Orchestrator) Dismiss(ctx context.Context) error {
	return o.loop.Do(ctx, func() {
		if _, idle := o.state.(Idle); idle {
			return
		}
		o.seq++
		o.state = Idle{}
		o.resetCopied()
		o.notify()
	})
}

// Busy reports whether an action is pending.
func (o *Orchestrator) Busy(ctx context.Context) (bool, error) {
	var busy bool
	err := o.loop.Do(ctx, func() { busy = o.busy() })
	return busy, err
}

// Snapshot returns the current view.
func (o *Orchestrator) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := o.loop.Do(ctx, func() { v = o.view() })
	return v, err
}

// Settle waits until every started request has resolved and been applied.
func (o *Orchestrator) Settle(ctx context.Context) error {
	for {
		var idle chan struct{}
		err := o.loop.Do(ctx, func() {
			if o.inflight > 0 {
				if o.idle == nil {
					o.idle = make(chan struct{})
				}
				idle = o.idle
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

// Close cancels the pending request, stops the copied timer and ignores
// responses that arrive later. It is idempotent.
func (o *Orchestrator) Close() error {
	o.cancel()
	err := o.loop.Do(context.Background(), func() {
		o.closed = true
		o.seq++
		o.stopCopyTimer()
	})
	if errors.Is(err, eventloop.ErrLoopClosed) {
		return nil
	}
	return err
}

// ------------------------- internals -------------------------

// call performs the request off the loop and posts the outcome back.
func (o *Orchestrator) call(seq uint64, action Action, entry catalog.Entry, content, title string) {
	var (
		p   Payload
		err error
	)
	switch entry.Endpoint {
	case catalog.EndpointSummary:
		p.Text, err = o.ai.Summarize(o.ctx, content)
	case catalog.EndpointTags:
		p.Tags, err = o.ai.SuggestTags(o.ctx, content, title)
		p.Text = strings.Join(p.Tags, ", ")
	default:
		p.Text, err = o.ai.Rewrite(o.ctx, content, string(action), title)
	}

	if perr := o.loop.Post(context.Background(), func() { o.resolve(seq, action, entry, p, err) }); perr != nil {
		log.Warn().Err(perr).Str("action", string(action)).Msg("assist: dropping response")
	}
}

func (o *Orchestrator) resolve(seq uint64, action Action, entry catalog.Entry, p Payload, err error) {
	defer o.release()

	if o.closed || seq != o.seq {
		runsTotal.WithLabelValues(string(action), "discarded").Inc()
		log.Debug().Str("action", string(action)).Uint64("seq", seq).Msg("assist: discarding stale response")
		return
	}
	if o.docReplaced() {
		runsTotal.WithLabelValues(string(action), "discarded").Inc()
		log.Debug().Str("action", string(action)).Msg("assist: document replaced, discarding response")
		o.forget()
		return
	}

	if err != nil {
		runsTotal.WithLabelValues(string(action), "failed").Inc()
		msg := client.Message(err, entry.Failure)
		log.Debug().Err(err).Str("action", string(action)).Msg("assist: action failed")
		o.state = Failed{Action: action, Message: msg}
		o.notify()
		return
	}

	runsTotal.WithLabelValues(string(action), "ok").Inc()
	o.state = Ready{Action: action, Payload: p}
	if entry.Apply == catalog.ApplyTags {
		o.doc.ReplaceTags(p.Text)
	}
	o.notify()
}

func (o *Orchestrator) release() {
	o.inflight--
	if o.inflight == 0 && o.idle != nil {
		close(o.idle)
		o.idle = nil
	}
}

// docReplaced reports whether the document changed drafts since the last
// Run started.
func (o *Orchestrator) docReplaced() bool {
	return o.doc.Generation() != o.docGen
}

// forget drops the result of a run whose document was replaced.
func (o *Orchestrator) forget() {
	o.state = Idle{}
	o.resetCopied()
	o.notify()
}

func (o *Orchestrator) busy() bool {
	_, ok := o.state.(Pending)
	return ok
}

func (o *Orchestrator) ready() (Ready, catalog.Entry, error) {
	ready, ok := o.state.(Ready)
	if !ok {
		return Ready{}, catalog.Entry{}, ErrNoResult
	}
	entry, ok := o.catalog.Lookup(string(ready.Action))
	if !ok {
		return Ready{}, catalog.Entry{}, ErrUnknownAction
	}
	return ready, entry, nil
}

func (o *Orchestrator) armCopied() {
	o.stopCopyTimer()
	gen := o.copyGen
	o.copyTimer = o.sched.AfterFunc(o.copiedFor, func() {
		_ = o.loop.Post(o.ctx, func() {
			if gen != o.copyGen || o.closed {
				return
			}
			o.copyTimer = nil
			o.copied = false
			o.notify()
		})
	})
}

func (o *Orchestrator) stopCopyTimer() {
	o.copyGen++
	if o.copyTimer != nil {
		o.copyTimer.Stop()
		o.copyTimer = nil
	}
}

func (o *Orchestrator) resetCopied() {
	o.stopCopyTimer()
	o.copied = false
}

func (o *Orchestrator) view() View {
	return View{State: o.state, Copied: o.copied}
}

func (o *Orchestrator) notify() {
	if o.onChange != nil {
		o.onChange(o.view())
	}
}
