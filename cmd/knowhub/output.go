package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HashtagPatil/KnowledgeHub/client"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type printer struct {
	w      io.Writer
	format string
}

// emit writes v as JSON or YAML, or calls text for the human format.
func (p *printer) emit(v any, text func(w io.Writer) error) error {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(p.w)
	}
}

// articleRow is the machine-readable form of a list entry.
type articleRow struct {
	ID       int64    `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Category string   `json:"category" yaml:"category"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary  string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Author   string   `json:"author" yaml:"author"`
	Created  string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

func rows(items []client.ArticleSummary) []articleRow {
	out := make([]articleRow, len(items))
	for i, a := range items {
		out[i] = articleRow{
			ID:       a.ID,
			Title:    a.Title,
			Category: a.Category,
			Tags:     client.SplitTags(a.Tags),
			Summary:  a.Summary,
			Author:   a.AuthorUsername,
			Created:  formatTime(a.CreatedAt),
		}
	}
	return out
}

// articleDoc is the machine-readable form of a full article.
type articleDoc struct {
	articleRow `yaml:",inline"`
	Email      string `json:"authorEmail,omitempty" yaml:"authorEmail,omitempty"`
	Updated    string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Content    string `json:"content" yaml:"content"`
}

func doc(a *client.Article) articleDoc {
	return articleDoc{
		articleRow: rows([]client.ArticleSummary{a.ArticleSummary})[0],
		Email:      a.AuthorEmail,
		Updated:    formatTime(a.UpdatedAt),
		Content:    a.Content,
	}
}

func formatTime(t client.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// writeTable prints a list as aligned columns, or empty when there is none.
func writeTable(w io.Writer, items []client.ArticleSummary, empty string) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tAUTHOR\tTAGS")
	for _, a := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", a.ID, a.Title, a.Category, a.AuthorUsername, strings.Join(client.SplitTags(a.Tags), ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Total: %d\n", len(items))
	return err
}
