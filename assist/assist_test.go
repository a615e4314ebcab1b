package assist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/internal/eventloop"
	"github.com/HashtagPatil/KnowledgeHub/internal/scheduler"
	"github.com/HashtagPatil/KnowledgeHub/internal/validation"
)

// memDoc is a Document backed by plain fields. The orchestrator only touches
// it on the loop; tests read it through the loop as well.
type memDoc struct {
	gen                  uint64
	title, content, tags string
}

func (d *memDoc) Generation() uint64         { return d.gen }
func (d *memDoc) Title() string              { return d.title }
func (d *memDoc) Content() string            { return d.content }
func (d *memDoc) ReplaceContent(html string) { d.content = html }
func (d *memDoc) ReplaceTitle(title string)  { d.title = title }
func (d *memDoc) ReplaceTags(tags string)    { d.tags = tags }

type aiCall struct {
	endpoint, action, content, title string
}

type aiReply struct {
	text string
	tags []string
	err  error
}

// fakeAI answers every call through respond, which may block.
type fakeAI struct {
	mu      sync.Mutex
	calls   []aiCall
	respond func(ctx context.Context, c aiCall) aiReply
}

func (f *fakeAI) record(ctx context.Context, c aiCall) aiReply {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return aiReply{text: c.endpoint + ":" + c.action}
	}
	return respond(ctx, c)
}

func (f *fakeAI) Rewrite(ctx context.Context, content, action, title string) (string, error) {
	r := f.record(ctx, aiCall{"improve", action, content, title})
	return r.text, r.err
}

func (f *fakeAI) Summarize(ctx context.Context, content string) (string, error) {
	r := f.record(ctx, aiCall{endpoint: "summary", content: content})
	return r.text, r.err
}

func (f *fakeAI) SuggestTags(ctx context.Context, content, title string) ([]string, error) {
	r := f.record(ctx, aiCall{endpoint: "tags", content: content, title: title})
	return r.tags, r.err
}

func (f *fakeAI) Calls() []aiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]aiCall(nil), f.calls...)
}

type memClipboard struct {
	mu     sync.Mutex
	writes []string
}

func (c *memClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, text)
	return nil
}

const longContent = "<p>Goroutines are cheap threads.</p>"

type harness struct {
	ctx   context.Context
	loop  *eventloop.Loop
	clock *scheduler.Virtual
	ai    *fakeAI
	doc   *memDoc
	clip  *memClipboard
	orch  *Orchestrator
}

func newHarness(t *testing.T, content string) *harness {
	t.Helper()
	h := &harness{
		ctx:   t.Context(),
		loop:  eventloop.New(eventloop.Config{Name: "assist-test"}),
		clock: scheduler.NewVirtual(),
		ai:    &fakeAI{},
		doc:   &memDoc{title: "Go", content: content},
		clip:  &memClipboard{},
	}
	h.orch = New(h.loop, h.ai, h.doc, WithScheduler(h.clock), WithClipboard(h.clip))
	t.Cleanup(func() {
		_ = h.orch.Close()
		h.loop.Stop()
	})
	return h
}

func (h *harness) view(t *testing.T) View {
	t.Helper()
	v, err := h.orch.Snapshot(h.ctx)
	require.NoError(t, err)
	return v
}

func (h *harness) settle(t *testing.T) View {
	t.Helper()
	require.NoError(t, h.orch.Settle(h.ctx))
	return h.view(t)
}

// swapDocument replaces the draft the way an editor does when another
// article is opened.
func (h *harness) swapDocument(t *testing.T, title, content, tags string) {
	t.Helper()
	require.NoError(t, h.loop.Do(h.ctx, func() {
		*h.doc = memDoc{gen: h.doc.gen + 1, title: title, content: content, tags: tags}
	}))
}

func (h *harness) document(t *testing.T) memDoc {
	t.Helper()
	var d memDoc
	require.NoError(t, h.loop.Do(h.ctx, func() { d = *h.doc }))
	return d
}

// gate makes respond block until the returned release function is called
// with the reply for that call.
func gate(h *harness) (started <-chan aiCall, release func(aiReply)) {
	calls := make(chan aiCall, 4)
	replies := make(chan aiReply, 4)
	h.ai.respond = func(ctx context.Context, c aiCall) aiReply {
		calls <- c
		select {
		case r := <-replies:
			return r
		case <-ctx.Done():
			return aiReply{err: ctx.Err()}
		}
	}
	return calls, func(r aiReply) { replies <- r }
}

func TestShortContentIsRejectedLocally(t *testing.T) {
	h := newHarness(t, "<p>too   <b>short</b></p>")

	for _, a := range Actions {
		err := h.orch.Run(h.ctx, a)
		require.Error(t, err, a)
		assert.True(t, validation.Is(err), a)
	}
	assert.Empty(t, h.ai.Calls())
	assert.Equal(t, Idle{}, h.view(t).State)

	err := h.orch.Run(h.ctx, Improve)
	assert.Equal(t, "Please write at least 10 characters of content first", validation.Message(err))
	err = h.orch.Run(h.ctx, Tags)
	assert.Equal(t, "Please write some content first", validation.Message(err))
}

func TestRunIsExclusive(t *testing.T) {
	h := newHarness(t, longContent)
	started, release := gate(h)

	require.NoError(t, h.orch.Run(h.ctx, Grammar))
	<-started

	v := h.view(t)
	assert.Equal(t, Pending{Action: Grammar}, v.State)
	assert.True(t, v.Busy())
	busy, err := h.orch.Busy(h.ctx)
	require.NoError(t, err)
	assert.True(t, busy)

	for _, a := range Actions {
		assert.ErrorIs(t, h.orch.Run(h.ctx, a), ErrBusy)
	}

	release(aiReply{text: "Fixed text."})
	v = h.settle(t)
	assert.Equal(t, Ready{Action: Grammar, Payload: Payload{Text: "Fixed text."}}, v.State)
	assert.Equal(t, []aiCall{{"improve", "grammar", longContent, "Go"}}, h.ai.Calls())
}

func TestEndpointsPerAction(t *testing.T) {
	h := newHarness(t, longContent)
	for _, a := range Actions {
		require.NoError(t, h.orch.Run(h.ctx, a))
		h.settle(t)
	}
	want := []aiCall{
		{"improve", "improve", longContent, "Go"},
		{"improve", "grammar", longContent, "Go"},
		{"improve", "concise", longContent, "Go"},
		{"improve", "title", longContent, "Go"},
		{endpoint: "summary", content: longContent},
		{endpoint: "tags", content: longContent, title: "Go"},
	}
	assert.Equal(t, want, h.ai.Calls())
}

func TestTagsAutoApply(t *testing.T) {
	h := newHarness(t, longContent)
	h.ai.respond = func(context.Context, aiCall) aiReply {
		return aiReply{tags: []string{"go", "rust"}}
	}

	require.NoError(t, h.orch.Run(h.ctx, Tags))
	v := h.settle(t)

	ready, ok := v.State.(Ready)
	require.True(t, ok)
	assert.Equal(t, "go, rust", ready.Payload.Text)
	assert.Equal(t, "go, rust", h.document(t).tags)
	assert.ErrorIs(t, h.orch.ApplyToEditor(h.ctx), ErrNotApplicable)
}

func TestApplyToEditorWritesParagraphs(t *testing.T) {
	h := newHarness(t, longContent)
	h.ai.respond = func(context.Context, aiCall) aiReply {
		return aiReply{text: "First line.\nSecond <line>."}
	}

	require.NoError(t, h.orch.Run(h.ctx, Improve))
	h.settle(t)
	require.NoError(t, h.orch.ApplyToEditor(h.ctx))

	assert.Equal(t, "<p>First line.</p><p>Second &lt;line&gt;.</p>", h.document(t).content)
	assert.Equal(t, Idle{}, h.view(t).State)
	assert.ErrorIs(t, h.orch.ApplyToEditor(h.ctx), ErrNoResult)
}

func TestSummaryCannotBeApplied(t *testing.T) {
	h := newHarness(t, longContent)
	require.NoError(t, h.orch.Run(h.ctx, Summary))
	h.settle(t)

	assert.ErrorIs(t, h.orch.ApplyToEditor(h.ctx), ErrNotApplicable)
	_, err := h.orch.ApplyTitle(h.ctx, 0)
	assert.ErrorIs(t, err, ErrNotApplicable)
	assert.Equal(t, longContent, h.document(t).content)
}

func TestApplyTitle(t *testing.T) {
	h := newHarness(t, longContent)
	h.ai.respond = func(context.Context, aiCall) aiReply {
		return aiReply{text: "1. Goroutines 101\n\n2.   Channels in Depth \n3. Select"}
	}
	require.NoError(t, h.orch.Run(h.ctx, Title))
	h.settle(t)

	got, err := h.orch.ApplyTitle(h.ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Channels in Depth", got)
	assert.Equal(t, "Channels in Depth", h.document(t).title)

	v := h.view(t)
	ready, ok := v.State.(Ready)
	require.True(t, ok, "title suggestions stay available")
	assert.Equal(t, []string{"Goroutines 101", "Channels in Depth", "Select"}, ready.Payload.Titles())

	_, err = h.orch.ApplyTitle(h.ctx, 3)
	assert.ErrorIs(t, err, ErrNoSuchTitle)
}

func TestFailureMessages(t *testing.T) {
	h := newHarness(t, longContent)

	h.ai.respond = func(context.Context, aiCall) aiReply {
		return aiReply{err: &client.GatewayError{Kind: client.KindServer, StatusCode: 503, Message: "AI quota exceeded"}}
	}
	require.NoError(t, h.orch.Run(h.ctx, Concise))
	assert.Equal(t, Failed{Action: Concise, Message: "AI quota exceeded"}, h.settle(t).State)

	h.ai.respond = func(context.Context, aiCall) aiReply { return aiReply{err: errors.New("boom")} }
	for _, tc := range []struct {
		action Action
		msg    string
	}{
		{Improve, "AI request failed"},
		{Summary, "Failed to generate summary"},
		{Tags, "Failed to suggest tags"},
	} {
		require.NoError(t, h.orch.Run(h.ctx, tc.action), "a failed state accepts a new run")
		assert.Equal(t, Failed{Action: tc.action, Message: tc.msg}, h.settle(t).State)
	}
	assert.Empty(t, h.document(t).tags)
}

func TestDismissThenLateResponse(t *testing.T) {
	h := newHarness(t, longContent)
	started, release := gate(h)

	require.NoError(t, h.orch.Run(h.ctx, Tags))
	<-started
	require.NoError(t, h.orch.Dismiss(h.ctx))
	assert.Equal(t, Idle{}, h.view(t).State)

	release(aiReply{tags: []string{"late"}})
	v := h.settle(t)
	assert.Equal(t, Idle{}, v.State)
	assert.Empty(t, h.document(t).tags, "a discarded tags result must not auto-apply")
}

func TestTagsForReplacedDocumentAreDropped(t *testing.T) {
	h := newHarness(t, longContent)
	started, release := gate(h)

	require.NoError(t, h.orch.Run(h.ctx, Tags))
	<-started
	h.swapDocument(t, "Java", longContent, "java")

	release(aiReply{tags: []string{"go", "rust"}})
	v := h.settle(t)
	assert.Equal(t, Idle{}, v.State)
	assert.Equal(t, "java", h.document(t).tags)
}

func TestApplyAfterDocumentReplacedIsRefused(t *testing.T) {
	h := newHarness(t, longContent)
	require.NoError(t, h.orch.Run(h.ctx, Improve))
	_, ok := h.settle(t).State.(Ready)
	require.True(t, ok)

	h.swapDocument(t, "Other", "<p>other body</p>", "")
	assert.ErrorIs(t, h.orch.ApplyToEditor(h.ctx), ErrNoResult)
	assert.Equal(t, "<p>other body</p>", h.document(t).content)
	assert.Equal(t, Idle{}, h.view(t).State)

	// A run against the new draft applies normally.
	h.swapDocument(t, "Other", longContent, "")
	require.NoError(t, h.orch.Run(h.ctx, Improve))
	h.settle(t)
	require.NoError(t, h.orch.ApplyToEditor(h.ctx))
	assert.Equal(t, "<p>improve:improve</p>", h.document(t).content)
}

func TestLateResponseDoesNotOverwriteNewerRun(t *testing.T) {
	h := newHarness(t, longContent)
	started, release := gate(h)

	require.NoError(t, h.orch.Run(h.ctx, Improve))
	<-started
	require.NoError(t, h.orch.Dismiss(h.ctx))
	require.NoError(t, h.orch.Run(h.ctx, Summary))
	<-started

	release(aiReply{text: "first"})
	release(aiReply{text: "second"})
	v := h.settle(t)

	// Replies are consumed in whatever order the two goroutines pick them
	// up; only the summary run may own the slot.
	ready, ok := v.State.(Ready)
	require.True(t, ok)
	assert.Equal(t, Summary, ready.Action)
}

func TestCopyIndicator(t *testing.T) {
	h := newHarness(t, longContent)
	require.NoError(t, h.orch.Run(h.ctx, Summary))
	h.settle(t)

	assert.ErrorIs(t, New(h.loop, h.ai, h.doc).Copy(h.ctx), ErrNoClipboard)

	require.NoError(t, h.orch.Copy(h.ctx))
	assert.True(t, h.view(t).Copied)
	assert.Equal(t, []string{"summary:"}, h.clip.writes)

	h.clock.Advance(1500 * time.Millisecond)
	require.NoError(t, h.loop.Flush(h.ctx))
	require.NoError(t, h.orch.Copy(h.ctx)) // restarts the period

	h.clock.Advance(1500 * time.Millisecond)
	require.NoError(t, h.loop.Flush(h.ctx))
	assert.True(t, h.view(t).Copied)

	h.clock.Advance(500 * time.Millisecond)
	require.NoError(t, h.loop.Flush(h.ctx))
	assert.False(t, h.view(t).Copied)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestCopyWithoutResult(t *testing.T) {
	h := newHarness(t, longContent)
	assert.ErrorIs(t, h.orch.Copy(h.ctx), ErrNoResult)
	assert.Empty(t, h.clip.writes)
}

func TestRunClearsCopied(t *testing.T) {
	h := newHarness(t, longContent)
	require.NoError(t, h.orch.Run(h.ctx, Summary))
	h.settle(t)
	require.NoError(t, h.orch.Copy(h.ctx))

	require.NoError(t, h.orch.Run(h.ctx, Improve))
	v := h.settle(t)
	assert.False(t, v.Copied)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestCloseDropsLateResponse(t *testing.T) {
	h := newHarness(t, longContent)
	started, _ := gate(h)

	require.NoError(t, h.orch.Run(h.ctx, Tags))
	<-started
	require.NoError(t, h.orch.Close())
	require.NoError(t, h.orch.Settle(h.ctx))

	assert.Equal(t, Pending{Action: Tags}, h.view(t).State)
	assert.Empty(t, h.document(t).tags)
	assert.ErrorIs(t, h.orch.Run(h.ctx, Improve), ErrClosed)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("concise")
	require.NoError(t, err)
	assert.Equal(t, Concise, a)

	_, err = ParseAction("translate")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
