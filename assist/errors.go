package assist

import "errors"

var (
	// ErrBusy is returned by Run while another action is pending.
	ErrBusy = errors.New("assist: an action is already running")
	// ErrUnknownAction is returned for names outside the action catalog.
	ErrUnknownAction = errors.New("assist: unknown action")
	// ErrNoResult is returned when an operation needs a Ready result.
	ErrNoResult = errors.New("assist: no result available")
	// ErrNotApplicable is returned when the result cannot be applied that way.
	ErrNotApplicable = errors.New("assist: result cannot be applied here")
	// ErrNoSuchTitle is returned by ApplyTitle for an out-of-range index.
	ErrNoSuchTitle = errors.New("assist: no such title suggestion")
	// ErrNoClipboard is returned by Copy when no clipboard is configured.
	ErrNoClipboard = errors.New("assist: no clipboard available")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("assist: orchestrator closed")
)
