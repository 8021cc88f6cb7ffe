package llmstream

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// DeltaCallback receives each incremental fragment (text, thinking, or tool
// call arguments) synchronously, in the exact order events are fed. No
// buffering or reordering happens between Feed and the callback, so a display
// layer can print fragments as they arrive.
//
// The callback runs on the caller's goroutine; a slow callback slows Feed.
type DeltaCallback func(ev ResponseEvent)

// pendingToolCall accumulates one in-progress tool call during streaming.
type pendingToolCall struct {
	callID   string
	name     string
	args     strings.Builder
	closed   bool
	parsed   map[string]interface{}
	parseErr error
}

// StreamAggregator consumes the ordered event sequence of one streaming chat
// completion and assembles the final message: text fragments joined in feed
// order, tool call argument fragments routed by index and concatenated per
// call.
//
// One aggregator serves exactly one stream. Create it, feed events until the
// end event, then call Finalize once; do not reuse it for another call.
// Feed is not safe for concurrent callers - the external read loop owns the
// instance (see Collect). If the transport drops before delivering the end
// event, abandon the aggregator; Finalize will report the stream incomplete.
type StreamAggregator struct {
	callback DeltaCallback
	text     strings.Builder
	thinking strings.Builder
	calls    map[int]*pendingToolCall
	order    []int // indexes in first-seen order
	usage    *Usage
	ended    bool
}

// NewStreamAggregator creates an aggregator for a single streaming call.
// callback may be nil when no live display is needed.
func NewStreamAggregator(callback DeltaCallback) *StreamAggregator {
	return &StreamAggregator{
		callback: callback,
		calls:    make(map[int]*pendingToolCall),
	}
}

// Feed consumes one event. It returns a *ProtocolError when the event
// violates stream ordering: any event after the end event, a fragment or
// done for an index that was never started, a duplicate start, or a fragment
// after the call was closed. After a protocol error the aggregator must be
// discarded.
func (a *StreamAggregator) Feed(ev ResponseEvent) error {
	if a.ended {
		return &ProtocolError{
			EventType: ev.Type,
			Index:     ev.Index,
			Reason:    "stream already ended",
			Err:       ErrProtocolViolation,
		}
	}

	switch ev.Type {
	case EventTextDelta:
		a.text.WriteString(ev.Text)
		a.emit(ev)

	case EventThinkingDelta:
		a.thinking.WriteString(ev.Text)
		a.emit(ev)

	case EventToolCallStart:
		if _, exists := a.calls[ev.Index]; exists {
			return &ProtocolError{
				EventType: ev.Type,
				Index:     ev.Index,
				Reason:    "tool call index already started",
				Err:       ErrProtocolViolation,
			}
		}
		a.calls[ev.Index] = &pendingToolCall{callID: ev.CallID, name: ev.Name}
		a.order = append(a.order, ev.Index)

	case EventToolCallArgumentsDelta:
		call, ok := a.calls[ev.Index]
		if !ok {
			return &ProtocolError{
				EventType: ev.Type,
				Index:     ev.Index,
				Reason:    "arguments fragment for unknown tool call",
				Err:       ErrProtocolViolation,
			}
		}
		if call.closed {
			return &ProtocolError{
				EventType: ev.Type,
				Index:     ev.Index,
				Reason:    "arguments fragment after tool call was closed",
				Err:       ErrProtocolViolation,
			}
		}
		call.args.WriteString(ev.Fragment)
		a.emit(ev)

	case EventToolCallDone:
		call, ok := a.calls[ev.Index]
		if !ok {
			return &ProtocolError{
				EventType: ev.Type,
				Index:     ev.Index,
				Reason:    "done for unknown tool call",
				Err:       ErrProtocolViolation,
			}
		}
		if call.closed {
			return &ProtocolError{
				EventType: ev.Type,
				Index:     ev.Index,
				Reason:    "tool call already closed",
				Err:       ErrProtocolViolation,
			}
		}
		call.closed = true
		// A decode failure here is recorded on the call, not returned:
		// one bad tool call must not abort the rest of the stream.
		call.parsed, call.parseErr = decodeArguments(ev.Index, call)

	case EventEnd:
		a.ended = true
		a.usage = ev.Usage

	default:
		return &ProtocolError{
			EventType: ev.Type,
			Reason:    "unknown event type",
			Err:       ErrProtocolViolation,
		}
	}

	return nil
}

// Ended returns true once the terminal event has been fed.
func (a *StreamAggregator) Ended() bool {
	return a.ended
}

// Finalize builds the aggregated message. It returns an
// *IncompleteStreamError if the end event was never fed or any tool call was
// opened but never closed, naming the open indexes.
func (a *StreamAggregator) Finalize() (*AggregatedMessage, error) {
	open := a.openIndexes()
	if !a.ended || len(open) > 0 {
		return nil, &IncompleteStreamError{
			MissingEnd:  !a.ended,
			OpenIndexes: open,
			Err:         ErrIncompleteStream,
		}
	}

	msg := &AggregatedMessage{
		Text:     a.text.String(),
		Thinking: a.thinking.String(),
		Usage:    a.usage,
	}

	// Tool calls come out in order of first appearance, not index value.
	for _, idx := range a.order {
		call := a.calls[idx]
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			Index:         idx,
			CallID:        call.callID,
			Name:          call.name,
			ArgumentsJSON: call.args.String(),
			Arguments:     call.parsed,
			ParseErr:      call.parseErr,
		})
	}

	return msg, nil
}

// emit forwards a delta event to the registered callback, if any.
func (a *StreamAggregator) emit(ev ResponseEvent) {
	if a.callback != nil {
		a.callback(ev)
	}
}

// openIndexes returns the indexes of tool calls that were started but never
// closed, in ascending order.
func (a *StreamAggregator) openIndexes() []int {
	var open []int
	for idx, call := range a.calls {
		if !call.closed {
			open = append(open, idx)
		}
	}
	sort.Ints(open)
	return open
}

// decodeArguments parses a closed call's accumulated argument text.
// An empty buffer is a zero-argument call, not an error.
func decodeArguments(index int, call *pendingToolCall) (map[string]interface{}, error) {
	raw := call.args.String()

	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}, nil
	}

	if !gjson.Valid(raw) {
		return nil, &ArgumentsError{
			Index:  index,
			CallID: call.callID,
			Name:   call.name,
			Raw:    raw,
			Reason: fmt.Sprintf("received malformed JSON %q", raw),
			Err:    ErrInvalidArguments,
		}
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ArgumentsError{
			Index:  index,
			CallID: call.callID,
			Name:   call.name,
			Raw:    raw,
			Reason: fmt.Sprintf("arguments are not a JSON object: %v", err),
			Err:    ErrInvalidArguments,
		}
	}

	return parsed, nil
}
