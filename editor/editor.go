// Package editor holds the article being written or edited.
//
// A Session owns one Draft on the event loop. The form mutates it through
// Update, the AI assistant through the Document methods, and Save turns it
// into a create or update request.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/internal/eventloop"
	"github.com/HashtagPatil/KnowledgeHub/internal/markup"
	"github.com/HashtagPatil/KnowledgeHub/internal/validation"
	"github.com/HashtagPatil/KnowledgeHub/navigate"
	"github.com/HashtagPatil/KnowledgeHub/session"
)

// DefaultCategory is the category of a new draft.
const DefaultCategory = "Tech"

// Categories offered by the article form.
var Categories = []string{"Tech", "AI", "Backend", "Frontend", "DevOps", "Other"}

var (
	// ErrSaving is returned by Save while a previous save is outstanding.
	ErrSaving = errors.New("editor: save already in progress")
	// ErrNotLoaded is returned when an operation needs a persisted article.
	ErrNotLoaded = errors.New("editor: no article loaded")
)

// Draft is the form-visible article.
type Draft struct {
	Title    string
	Content  string // rich-text markup
	Category string
	Tags     string // comma-joined
	Summary  string
}

func (d Draft) request() client.ArticleRequest {
	return client.ArticleRequest{
		Title:    strings.TrimSpace(d.Title),
		Content:  d.Content,
		Category: strings.TrimSpace(d.Category),
		Tags:     d.Tags,
		Summary:  d.Summary,
	}
}

// validate applies the form's checks; none of them need the backend.
func (d Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return validation.New("title", "Title is required")
	}
	if strings.TrimSpace(d.Category) == "" {
		return validation.New("category", "Category is required")
	}
	if strings.TrimSpace(markup.PlainText(d.Content)) == "" {
		return validation.New("content", "Content cannot be empty")
	}
	return nil
}

// Author identifies who wrote a loaded article.
type Author struct {
	ID       int64
	Username string
	Email    string
}

// Is reports whether p is the author. Surfaces use it to offer edit and
// delete.
func (a Author) Is(p session.Profile) bool {
	return a.Email != "" && strings.EqualFold(a.Email, p.Email)
}

// Articles is the backend surface used by a Session. *client.Client
// satisfies it.
type Articles interface {
	GetArticle(ctx context.Context, id int64) (*client.Article, error)
	CreateArticle(ctx context.Context, req client.ArticleRequest) (*client.Article, error)
	UpdateArticle(ctx context.Context, id int64, req client.ArticleRequest) (*client.Article, error)
	DeleteArticle(ctx context.Context, id int64) error
}

// Session is one article editing session.
type Session struct {
	loop *eventloop.Loop
	api  Articles
	nav  navigate.Navigator

	// Loop-confined.
	id      int64
	article *client.Article
	draft   Draft
	loadSeq  uint64
	draftGen uint64
	saving   bool
}

// NewSession returns a Session holding an empty draft.
func NewSession(loop *eventloop.Loop, api Articles, nav navigate.Navigator) *Session {
	if loop == nil || api == nil {
		panic("editor: loop and api are required")
	}
	if nav == nil {
		nav = navigate.Func(func(string) {})
	}
	return &Session{loop: loop, api: api, nav: nav, draft: Draft{Category: DefaultCategory}}
}

// Begin discards whatever was loaded and starts a new, empty draft.
func (s *Session) Begin(ctx context.Context) error {
	return s.loop.Do(ctx, func() {
		s.loadSeq++
		s.draftGen++
		s.id = 0
		s.article = nil
		s.draft = Draft{Category: DefaultCategory}
	})
}

// Load fetches article id and makes it the draft. On failure the current
// draft is left untouched and the user is sent home, except for
// authentication failures, which the gateway already redirected.
func (s *Session) Load(ctx context.Context, id int64) (Draft, error) {
	var seq uint64
	if err := s.loop.Do(ctx, func() {
		s.loadSeq++
		seq = s.loadSeq
	}); err != nil {
		return Draft{}, err
	}

	a, err := s.api.GetArticle(ctx, id)
	if err != nil {
		if !client.IsAuth(err) && ctx.Err() == nil {
			s.nav.Navigate(navigate.Home)
		}
		return Draft{}, fmt.Errorf("load article %d: %w", id, err)
	}

	var (
		draft   Draft
		applied bool
	)
	if err := s.loop.Do(ctx, func() {
		if seq != s.loadSeq {
			return
		}
		s.draftGen++
		s.id = a.ID
		s.article = a
		s.draft = Draft{
			Title:    a.Title,
			Content:  a.Content,
			Category: a.Category,
			Tags:     a.Tags,
			Summary:  a.Summary,
		}
		draft, applied = s.draft, true
	}); err != nil {
		return Draft{}, err
	}
	if !applied {
		return Draft{}, fmt.Errorf("load article %d: superseded", id)
	}
	return draft, nil
}

// Update applies a form edit to the draft.
func (s *Session) Update(ctx context.Context, edit func(*Draft)) error {
	return s.loop.Do(ctx, func() { edit(&s.draft) })
}

// Snapshot returns a copy of the draft.
func (s *Session) Snapshot(ctx context.Context) (Draft, error) {
	var d Draft
	err := s.loop.Do(ctx, func() { d = s.draft })
	return d, err
}

// ArticleID returns the id being edited, or 0 for a new article.
func (s *Session) ArticleID(ctx context.Context) (int64, error) {
	var id int64
	err := s.loop.Do(ctx, func() { id = s.id })
	return id, err
}

// Author returns the author of the loaded article.
func (s *Session) Author(ctx context.Context) (Author, error) {
	var (
		a  Author
		ok bool
	)
	err := s.loop.Do(ctx, func() {
		if s.article != nil {
			a = Author{ID: s.article.AuthorID, Username: s.article.AuthorUsername, Email: s.article.AuthorEmail}
			ok = true
		}
	})
	if err != nil {
		return Author{}, err
	}
	if !ok {
		return Author{}, ErrNotLoaded
	}
	return a, nil
}

// Save validates the draft and publishes it: a create for a new draft, an
// update for a loaded article. On success the user is sent to the article,
// unless Begin or Load replaced the draft while the request was running; the
// saved article is then returned but the new draft keeps its identity.
// Validation failures never reach the backend.
func (s *Session) Save(ctx context.Context) (*client.Article, error) {
	var (
		id      int64
		gen     uint64
		req     client.ArticleRequest
		saveErr error
	)
	if err := s.loop.Do(ctx, func() {
		if s.saving {
			saveErr = ErrSaving
			return
		}
		if err := s.draft.validate(); err != nil {
			saveErr = err
			return
		}
		s.saving = true
		id, gen, req = s.id, s.draftGen, s.draft.request()
	}); err != nil {
		return nil, err
	}
	if saveErr != nil {
		return nil, saveErr
	}

	var (
		saved *client.Article
		err   error
	)
	if id == 0 {
		saved, err = s.api.CreateArticle(ctx, req)
	} else {
		saved, err = s.api.UpdateArticle(ctx, id, req)
	}

	// Use a fresh context so the saving flag is always reset.
	current := false
	if derr := s.loop.Do(context.Background(), func() {
		s.saving = false
		if err == nil && gen == s.draftGen {
			s.id = saved.ID
			s.article = saved
			current = true
		}
	}); derr != nil && err == nil {
		err = derr
	}
	if err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}

	log.Debug().Int64("id", saved.ID).Bool("created", id == 0).Bool("current", current).Msg("article saved")
	if current {
		s.nav.Navigate(navigate.Article(saved.ID))
	}
	return saved, nil
}

// Delete removes the loaded article and sends the user to the dashboard.
func (s *Session) Delete(ctx context.Context) error {
	id, err := s.ArticleID(ctx)
	if err != nil {
		return err
	}
	if id == 0 {
		return ErrNotLoaded
	}
	if err := s.api.DeleteArticle(ctx, id); err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	log.Debug().Int64("id", id).Msg("article deleted")
	s.nav.Navigate(navigate.Dashboard)
	return nil
}

// ------------------------- assist.Document -------------------------
//
// These run on the loop only.

// Generation identifies the draft. It changes whenever Begin or Load
// replaces it.
func (s *Session) Generation() uint64 { return s.draftGen }

// Title returns the draft title.
func (s *Session) Title() string { return s.draft.Title }

// Content returns the draft content.
func (s *Session) Content() string { return s.draft.Content }

// ReplaceContent overwrites the draft content.
func (s *Session) ReplaceContent(html string) { s.draft.Content = html }

// ReplaceTitle overwrites the draft title.
func (s *Session) ReplaceTitle(title string) { s.draft.Title = title }

// ReplaceTags overwrites the draft tags.
func (s *Session) ReplaceTags(tags string) { s.draft.Tags = tags }
