package llmstream

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrProtocolViolation indicates a malformed event ordering: a fragment
	// or done for an unseen index, a duplicate start, or any event after end.
	// Fatal to the aggregator instance that reported it.
	ErrProtocolViolation = errors.New("llmstream: protocol violation")

	// ErrIncompleteStream indicates Finalize was called before the terminal
	// event arrived, or while one or more tool calls remained open.
	ErrIncompleteStream = errors.New("llmstream: incomplete stream")

	// ErrInvalidArguments indicates a tool call's accumulated argument text
	// is not a valid JSON object. Recorded per call, never fatal to the stream.
	ErrInvalidArguments = errors.New("llmstream: invalid tool call arguments")

	// ErrInvalidAPIKey indicates the API key is missing or malformed.
	ErrInvalidAPIKey = errors.New("llmstream: invalid API key")

	// ErrInvalidRequest indicates the request is missing required fields.
	ErrInvalidRequest = errors.New("llmstream: invalid request")
)

// ProtocolError reports an event that violated stream ordering rules.
// The aggregator that returned it must be discarded.
type ProtocolError struct {
	EventType EventType // The offending event's type
	Index     int       // Tool call index, when the event carries one
	Reason    string    // Human-readable explanation
	Err       error     // Wrapped sentinel (ErrProtocolViolation)
}

func (e *ProtocolError) Error() string {
	if e.EventType.hasIndex() {
		return fmt.Sprintf("protocol violation on %s event (index %d): %s", e.EventType, e.Index, e.Reason)
	}
	return fmt.Sprintf("protocol violation on %s event: %s", e.EventType, e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func (t EventType) hasIndex() bool {
	switch t {
	case EventToolCallStart, EventToolCallArgumentsDelta, EventToolCallDone:
		return true
	default:
		return false
	}
}

// IncompleteStreamError reports a Finalize call on a stream that has not
// finished: the terminal event is missing, tool calls are still open, or both.
type IncompleteStreamError struct {
	MissingEnd  bool  // No end event was fed
	OpenIndexes []int // Tool calls opened but never closed, ascending
	Err         error // Wrapped sentinel (ErrIncompleteStream)
}

func (e *IncompleteStreamError) Error() string {
	parts := make([]string, 0, 2)
	if e.MissingEnd {
		parts = append(parts, "no end event received")
	}
	if len(e.OpenIndexes) > 0 {
		parts = append(parts, fmt.Sprintf("tool calls still open at indexes %v", e.OpenIndexes))
	}
	if len(parts) == 0 {
		return "incomplete stream"
	}
	return "incomplete stream: " + strings.Join(parts, "; ")
}

func (e *IncompleteStreamError) Unwrap() error {
	return e.Err
}

// ArgumentsError reports that a tool call's concatenated argument fragments
// did not form a valid JSON object. It is stored on the individual ToolCall
// so the caller can decide per call; the rest of the stream is unaffected.
type ArgumentsError struct {
	Index  int    // Tool call index within the stream
	CallID string // Provider-assigned call identifier
	Name   string // Tool name
	Raw    string // The accumulated argument text as received
	Reason string // Human-readable explanation
	Err    error  // Wrapped sentinel (ErrInvalidArguments)
}

func (e *ArgumentsError) Error() string {
	return fmt.Sprintf("tool call '%s' (index %d): %s", e.Name, e.Index, e.Reason)
}

func (e *ArgumentsError) Unwrap() error {
	return e.Err
}

// SourceError represents an error from an underlying transport or vendor API.
type SourceError struct {
	Source     string // The source name ("openai", "anthropic", ...)
	StatusCode int    // HTTP status code (if applicable)
	Message    string // Error message from the endpoint
	Err        error  // Wrapped error
}

func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("source '%s' error (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("source '%s' error: %s", e.Source, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsProtocolViolation checks if an error came from malformed event ordering.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrProtocolViolation)
}

// IsIncompleteStream checks if an error indicates the stream never finished.
// Callers seeing this decide whether to retry the underlying network stream.
func IsIncompleteStream(err error) bool {
	return errors.Is(err, ErrIncompleteStream)
}

// IsInvalidArguments checks if an error marks unparseable tool call arguments.
func IsInvalidArguments(err error) bool {
	return errors.Is(err, ErrInvalidArguments)
}
