package search

import "github.com/HashtagPatil/KnowledgeHub/client"

// Categories are the filter choices offered to the user. "All" means no
// category filter; see CategoryFilter.
var Categories = []string{"All", "Tech", "AI", "Backend", "Frontend", "DevOps", "Database", "Security", "Cloud"}

// CategoryFilter maps a category label to the filter value sent to the
// backend.
func CategoryFilter(label string) string {
	if label == "All" {
		return ""
	}
	return label
}

// Criteria is the effective filter. Empty fields mean no filter.
type Criteria struct {
	Query    string
	Category string
}

// State is what a list view renders.
type State struct {
	// Text is the raw query input, which may not be effective yet.
	Text     string
	Criteria Criteria
	Results  []client.ArticleSummary

	// Loading is true until the first response is shown.
	Loading bool
	// Searching is true while the most recent request is outstanding.
	Searching bool
	// Failed is true when the shown (empty) result set stems from a failure.
	Failed bool
}

// Filtered reports whether the effective criteria narrow the list. Text that
// is still debouncing does not count.
func (s State) Filtered() bool {
	return s.Criteria.Query != "" || s.Criteria.Category != ""
}

// EmptyMessage is the text shown when Results is empty. It names the criteria
// that produced the results, not the raw input.
func (s State) EmptyMessage() string {
	if !s.Filtered() {
		return "No articles yet"
	}
	term := s.Criteria.Query
	if term == "" {
		term = s.Criteria.Category
	}
	return `No articles match "` + term + `"`
}

func (s State) clone() State {
	if s.Results != nil {
		s.Results = append([]client.ArticleSummary(nil), s.Results...)
	}
	return s
}
