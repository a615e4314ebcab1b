// Package dashboard lists the signed-in user's own articles and deletes them.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/internal/eventloop"
)

// ErrDeleting is returned when the same article is already being deleted.
var ErrDeleting = errors.New("dashboard: article is already being deleted")

// Backend is the gateway surface the dashboard needs. *client.Client
// satisfies it.
type Backend interface {
	MyArticles(ctx context.Context) ([]client.ArticleSummary, error)
	DeleteArticle(ctx context.Context, id int64) error
}

// State is what the dashboard renders.
type State struct {
	Articles []client.ArticleSummary
	Loading  bool
	// Deleting holds the ids whose deletion is in flight.
	Deleting map[int64]bool
}

// Dashboard keeps the list on the event loop.
type Dashboard struct {
	loop *eventloop.Loop
	api  Backend

	// Loop-confined.
	articles []client.ArticleSummary
	loading  bool
	deleting map[int64]bool
}

// New returns a Dashboard that has not loaded yet.
func New(loop *eventloop.Loop, api Backend) *Dashboard {
	if loop == nil || api == nil {
		panic("dashboard: loop and backend are required")
	}
	return &Dashboard{loop: loop, api: api, loading: true, deleting: map[int64]bool{}}
}

// Load fetches the user's articles. On failure the previous list stays.
func (d *Dashboard) Load(ctx context.Context) ([]client.ArticleSummary, error) {
	items, err := d.api.MyArticles(ctx)

	var out []client.ArticleSummary
	if derr := d.loop.Do(ctx, func() {
		d.loading = false
		if err == nil {
			if items == nil {
				items = []client.ArticleSummary{}
			}
			d.articles = items
		}
		out = append([]client.ArticleSummary(nil), d.articles...)
	}); derr != nil {
		return nil, derr
	}
	if err != nil {
		return out, fmt.Errorf("load my articles: %w", err)
	}
	return out, nil
}

// Delete removes article id. The row disappears only once the backend
// confirms.
func (d *Dashboard) Delete(ctx context.Context, id int64) error {
	var busy bool
	if err := d.loop.Do(ctx, func() {
		busy = d.deleting[id]
		d.deleting[id] = true
	}); err != nil {
		return err
	}
	if busy {
		return ErrDeleting
	}

	err := d.api.DeleteArticle(ctx, id)

	if derr := d.loop.Do(context.Background(), func() {
		delete(d.deleting, id)
		if err != nil {
			return
		}
		kept := d.articles[:0:0]
		for _, a := range d.articles {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		d.articles = kept
	}); derr != nil && err == nil {
		return derr
	}
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	return nil
}

// Snapshot returns a copy of the dashboard state.
func (d *Dashboard) Snapshot(ctx context.Context) (State, error) {
	var s State
	err := d.loop.Do(ctx, func() {
		s.Articles = append([]client.ArticleSummary(nil), d.articles...)
		s.Loading = d.loading
		s.Deleting = make(map[int64]bool, len(d.deleting))
		for id := range d.deleting {
			s.Deleting[id] = true
		}
	})
	return s, err
}
