package llmstream

// EventType identifies the variant of a ResponseEvent.
type EventType string

// Response event types
const (
	// EventTextDelta carries an incremental fragment of assistant text.
	EventTextDelta EventType = "text_delta"

	// EventThinkingDelta carries an incremental fragment of reasoning text
	// (Claude extended thinking, reasoning models on OpenAI-compatible APIs).
	EventThinkingDelta EventType = "thinking_delta"

	// EventToolCallStart signals that a new tool call has begun.
	// Index distinguishes parallel tool calls within one response.
	EventToolCallStart EventType = "tool_call_start"

	// EventToolCallArgumentsDelta carries a fragment of the JSON-encoded
	// arguments for the tool call at Index. Fragments concatenate in
	// arrival order.
	EventToolCallArgumentsDelta EventType = "tool_call_arguments_delta"

	// EventToolCallDone signals that the tool call at Index has no more
	// argument fragments.
	EventToolCallDone EventType = "tool_call_done"

	// EventEnd is the terminal marker; no further events follow.
	// It may carry final Usage when the transport reports it.
	EventEnd EventType = "end"
)

// ResponseEvent is one unit of streamed output from a chat completion call.
// Exactly one variant applies per event, selected by Type; the constructor
// helpers below populate the fields that variant uses.
//
// Sources decode vendor transports into this type; the StreamAggregator
// consumes it. The aggregator has no opinion on transport framing,
// authentication, or model identifiers.
type ResponseEvent struct {
	// Type selects the event variant
	Type EventType `json:"type"`

	// Text is the fragment for text_delta and thinking_delta events
	Text string `json:"text,omitempty"`

	// Index identifies the tool call for tool_call_* events.
	// Index values are never reused within one streaming session.
	Index int `json:"index,omitempty"`

	// CallID is the provider-assigned call identifier (tool_call_start)
	CallID string `json:"call_id,omitempty"`

	// Name is the tool/function name being invoked (tool_call_start)
	Name string `json:"name,omitempty"`

	// Fragment is a piece of the JSON-encoded arguments
	// (tool_call_arguments_delta)
	Fragment string `json:"fragment,omitempty"`

	// Usage carries final token accounting on end events (optional)
	Usage *Usage `json:"usage,omitempty"`
}

// TextDelta creates a text fragment event.
func TextDelta(text string) ResponseEvent {
	return ResponseEvent{Type: EventTextDelta, Text: text}
}

// ThinkingDelta creates a reasoning fragment event.
func ThinkingDelta(text string) ResponseEvent {
	return ResponseEvent{Type: EventThinkingDelta, Text: text}
}

// ToolCallStart creates an event opening the tool call at index.
func ToolCallStart(index int, callID, name string) ResponseEvent {
	return ResponseEvent{Type: EventToolCallStart, Index: index, CallID: callID, Name: name}
}

// ToolCallArgumentsDelta creates an argument fragment event for the tool
// call at index.
func ToolCallArgumentsDelta(index int, fragment string) ResponseEvent {
	return ResponseEvent{Type: EventToolCallArgumentsDelta, Index: index, Fragment: fragment}
}

// ToolCallDone creates an event closing the tool call at index.
func ToolCallDone(index int) ResponseEvent {
	return ResponseEvent{Type: EventToolCallDone, Index: index}
}

// End creates the terminal event.
func End() ResponseEvent {
	return ResponseEvent{Type: EventEnd}
}

// EndWithUsage creates the terminal event carrying final token accounting.
func EndWithUsage(usage *Usage) ResponseEvent {
	return ResponseEvent{Type: EventEnd, Usage: usage}
}

// IsDelta returns true if this event carries an incremental fragment
// (text, thinking, or tool call arguments). Delta events are the ones
// forwarded to a registered DeltaCallback.
func (ev ResponseEvent) IsDelta() bool {
	switch ev.Type {
	case EventTextDelta, EventThinkingDelta, EventToolCallArgumentsDelta:
		return true
	default:
		return false
	}
}

// IsToolCallEvent returns true if this event addresses a tool call by index.
func (ev ResponseEvent) IsToolCallEvent() bool {
	switch ev.Type {
	case EventToolCallStart, EventToolCallArgumentsDelta, EventToolCallDone:
		return true
	default:
		return false
	}
}

// IsEnd returns true if this is the terminal event.
func (ev ResponseEvent) IsEnd() bool {
	return ev.Type == EventEnd
}

// Usage contains final token accounting for one streamed response.
// Availability depends on the transport: Anthropic always reports it,
// OpenAI-compatible endpoints only with stream_options.include_usage.
type Usage struct {
	// Model is the model that served the request (may differ if aliased)
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// InputTokens is the number of tokens in the prompt
	InputTokens int `json:"input_tokens,omitempty" yaml:"input_tokens,omitempty"`

	// OutputTokens is the number of tokens generated
	OutputTokens int `json:"output_tokens,omitempty" yaml:"output_tokens,omitempty"`

	// StopReason indicates why generation stopped
	// (e.g., "end_turn", "max_tokens", "tool_use")
	StopReason string `json:"stop_reason,omitempty" yaml:"stop_reason,omitempty"`
}
