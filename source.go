package llmstream

import (
	"context"
)

// StreamEvent wraps one item on a source's event channel: either a decoded
// response event or a transport error. The channel is closed after the
// terminal event (or the error) is delivered.
type StreamEvent struct {
	// Event is the decoded response event (nil if Err is set)
	Event *ResponseEvent

	// Err is a transport or decode error (nil if Event is set)
	Err error
}

// Source is an external chat-completion client abstraction: it wraps a
// vendor API and yields decoded events from a streaming transport.
//
// Usage:
//
//	events, err := source.StreamEvents(ctx, req)
//	if err != nil { return err }
//	msg, err := llmstream.Collect(ctx, events, nil)
type Source interface {
	// StreamEvents starts a streaming chat completion and returns a channel
	// of decoded events. The channel is closed when the stream completes or
	// fails; a transport failure is delivered as a StreamEvent with Err set.
	StreamEvents(ctx context.Context, req *Request) (<-chan StreamEvent, error)

	// Name returns the source identifier (e.g., "anthropic", "openai", "lorem")
	Name() string
}

// Collect drives a fresh aggregator over a source's event channel until the
// stream ends, returning the assembled message. callback may be nil.
//
// A transport error, a protocol violation, or context cancellation abandons
// the stream and is returned as-is; the partial aggregator state is discarded
// with it. A channel closed without a terminal event surfaces as an
// *IncompleteStreamError from Finalize.
func Collect(ctx context.Context, events <-chan StreamEvent, callback DeltaCallback) (*AggregatedMessage, error) {
	agg := NewStreamAggregator(callback)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case item, ok := <-events:
			if !ok {
				return agg.Finalize()
			}
			if item.Err != nil {
				return nil, item.Err
			}
			if item.Event == nil {
				// Empty envelope, nothing to aggregate
				continue
			}
			if err := agg.Feed(*item.Event); err != nil {
				return nil, err
			}
		}
	}
}
