// Package catalog describes the AI writing actions: their labels, content
// requirements and user-facing messages. The data ships embedded in the binary.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed actions.yaml
var actionsYAML []byte

// Apply modes.
const (
	ApplyContent = "content"
	ApplyTitle   = "title"
	ApplyTags    = "tags"
	ApplyNone    = "none"
)

// Backend endpoints.
const (
	EndpointImprove = "improve"
	EndpointSummary = "summary"
	EndpointTags    = "tags"
)

// Entry is one action.
type Entry struct {
	Name        string `yaml:"name"`
	Endpoint    string `yaml:"endpoint"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	ResultLabel string `yaml:"result_label"`
	MinChars    int    `yaml:"min_chars"`
	Invalid     string `yaml:"invalid"`
	Failure     string `yaml:"failure"`
	Apply       string `yaml:"apply"`
}

// Catalog is the parsed action list.
type Catalog struct {
	Version string  `yaml:"version"`
	Actions []Entry `yaml:"actions"`
}

// Lookup returns the entry named name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	for _, e := range c.Actions {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns the action names in display order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.Actions))
	for i, e := range c.Actions {
		out[i] = e.Name
	}
	return out
}

// Parse decodes and validates a catalog document.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode action catalog: %w", err)
	}
	if len(c.Actions) == 0 {
		return nil, fmt.Errorf("action catalog is empty")
	}
	seen := make(map[string]bool, len(c.Actions))
	for _, e := range c.Actions {
		if e.Name == "" {
			return nil, fmt.Errorf("action without a name")
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate action %q", e.Name)
		}
		seen[e.Name] = true
		switch e.Endpoint {
		case EndpointImprove, EndpointSummary, EndpointTags:
		default:
			return nil, fmt.Errorf("action %q: unknown endpoint %q", e.Name, e.Endpoint)
		}
		switch e.Apply {
		case ApplyContent, ApplyTitle, ApplyTags, ApplyNone:
		default:
			return nil, fmt.Errorf("action %q: unknown apply mode %q", e.Name, e.Apply)
		}
		if e.MinChars < 1 || e.Invalid == "" || e.Failure == "" {
			return nil, fmt.Errorf("action %q: min_chars, invalid and failure are required", e.Name)
		}
	}
	return &c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) { return Parse(actionsYAML) })

// Default returns the embedded catalog. It panics if the embedded document is
// malformed, which the package tests rule out.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return c
}
