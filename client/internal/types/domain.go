package types

import (
	"strings"
	"time"
)

// ------------------------------
// Core Domain Entities
// ------------------------------

// ArticleSummary is the list projection of an article.
type ArticleSummary struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Summary        string    `json:"summary,omitempty"`
	Tags           string    `json:"tags,omitempty"` // comma-joined
	AuthorUsername string    `json:"authorUsername"`
	CreatedAt      Timestamp `json:"createdAt"`
}

// TagList splits the comma-joined tags, dropping blanks.
func (a ArticleSummary) TagList() []string {
	return SplitTags(a.Tags)
}

// Article is the full article as returned by the detail endpoint.
type Article struct {
	ArticleSummary
	Content     string    `json:"content"`
	AuthorEmail string    `json:"authorEmail"`
	AuthorID    int64     `json:"authorId,omitempty"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// Edited reports whether the article changed after it was created.
func (a Article) Edited() bool {
	return !a.UpdatedAt.IsZero() && !a.UpdatedAt.Equal(a.CreatedAt.Time)
}

// SplitTags splits a comma-joined tag string, trimming and dropping blanks.
func SplitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Timestamp decodes both zoned RFC 3339 times and the zone-less local date-time
// format the backend emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
