package assist

import (
	"fmt"
	"regexp"
	"strings"
)

// Action names one AI writing action.
type Action string

// The six actions, in display order.
const (
	Improve Action = "improve"
	Grammar Action = "grammar"
	Concise Action = "concise"
	Title   Action = "title"
	Summary Action = "summary"
	Tags    Action = "tags"
)

// Actions lists every action in display order.
var Actions = []Action{Improve, Grammar, Concise, Title, Summary, Tags}

// ParseAction accepts the wire name of an action.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// State is the orchestrator's single result slot. It is one of Idle,
// Pending, Ready or Failed.
type State interface {
	isState()
}

// Idle means nothing is running and no result is held.
type Idle struct{}

// Pending means Action is awaiting the backend.
type Pending struct {
	Action Action
}

// Ready holds the result of Action until it is applied or dismissed.
type Ready struct {
	Action  Action
	Payload Payload
}

// Failed holds the user-facing message of a failed Action.
type Failed struct {
	Action  Action
	Message string
}

func (Idle) isState()    {}
func (Pending) isState() {}
func (Ready) isState()   {}
func (Failed) isState()  {}

// Payload is an action's result. Text is the raw text for rewrite, title and
// summary actions, and the joined tags for the tags action.
type Payload struct {
	Text string
	Tags []string
}

var titleNumbering = regexp.MustCompile(`^\d+\.\s*`)

// Titles splits a title-suggestion payload into clean candidates: one per
// non-blank line, leading "1. " style numbering removed.
func (p Payload) Titles() []string {
	var out []string
	for _, line := range strings.Split(p.Text, "\n") {
		clean := strings.TrimSpace(titleNumbering.ReplaceAllString(strings.TrimSpace(line), ""))
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// View is what the assist panel renders.
type View struct {
	State State
	// Copied is true for a short while after Copy.
	Copied bool
}

// Busy reports whether an action is in flight.
func (v View) Busy() bool {
	_, ok := v.State.(Pending)
	return ok
}
