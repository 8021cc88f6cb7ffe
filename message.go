package llmstream

// ToolCall is one fully-assembled tool/function invocation from a streamed
// response.
type ToolCall struct {
	// Index is the call's position discriminator within the stream
	Index int `json:"index"`

	// CallID is the provider-assigned call identifier (e.g., "toolu_...")
	CallID string `json:"call_id"`

	// Name is the tool/function name the model asked to invoke
	Name string `json:"name"`

	// ArgumentsJSON is the raw argument text, concatenated in arrival order
	ArgumentsJSON string `json:"arguments_json"`

	// Arguments is the decoded argument object.
	// Nil when ParseErr is set; empty map for zero-argument calls.
	Arguments map[string]interface{} `json:"arguments,omitempty"`

	// ParseErr records a per-call decode failure (*ArgumentsError).
	// A call with bad arguments still appears in the result; the caller
	// decides what to do with it.
	ParseErr error `json:"-"`
}

// ArgumentsValid returns true if the call's arguments decoded cleanly.
func (c *ToolCall) ArgumentsValid() bool {
	return c.ParseErr == nil
}

// AggregatedMessage is the immutable result of one streamed chat completion:
// all text fragments joined in feed order plus the fully-assembled tool calls
// ordered by first appearance.
type AggregatedMessage struct {
	// Text is the concatenation of all text fragments
	Text string `json:"text"`

	// Thinking is the concatenation of all reasoning fragments
	Thinking string `json:"thinking,omitempty"`

	// ToolCalls are the assembled calls, ordered by first-seen index
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Usage is the final token accounting, when the transport reported one
	Usage *Usage `json:"usage,omitempty"`
}

// IsEmpty returns true if the stream produced no text, no thinking, and no
// tool calls. An empty message is a valid outcome.
func (m *AggregatedMessage) IsEmpty() bool {
	return m.Text == "" && m.Thinking == "" && len(m.ToolCalls) == 0
}

// HasToolCalls returns true if the model requested at least one tool
// invocation.
func (m *AggregatedMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ToolCallByName returns the first assembled call with the given tool name.
func (m *AggregatedMessage) ToolCallByName(name string) (*ToolCall, bool) {
	for i := range m.ToolCalls {
		if m.ToolCalls[i].Name == name {
			return &m.ToolCalls[i], true
		}
	}
	return nil, false
}
