// Package navigate names the surfaces the client can send the user to. How a
// destination is shown is up to the consuming surface.
package navigate

import (
	"fmt"
	"sync"
)

// Destinations.
const (
	Home       = "/"
	Login      = "/login"
	Signup     = "/signup"
	Dashboard  = "/dashboard"
	NewArticle = "/articles/new"
)

// Article returns the detail path for an article.
func Article(id int64) string { return fmt.Sprintf("/articles/%d", id) }

// EditArticle returns the edit path for an article.
func EditArticle(id int64) string { return fmt.Sprintf("/articles/%d/edit", id) }

// Navigator moves the user to another surface.
type Navigator interface {
	Navigate(path string)
}

// Func adapts a function to a Navigator.
type Func func(path string)

func (f Func) Navigate(path string) { f(path) }

// Recorder is a Navigator that remembers every destination, most recent last.
type Recorder struct {
	mu      sync.Mutex
	history []string
}

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, path)
}

// Current returns the last destination, or "" if none.
func (r *Recorder) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return ""
	}
	return r.history[len(r.history)-1]
}

// History returns a copy of all destinations in order.
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
