package llmstream

import "fmt"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single text message in the conversation.
type Message struct {
	// Role is either "user" or "assistant"
	Role string `json:"role"`

	// Text is the message content
	Text string `json:"text"`
}

// UserMessage creates a user-role message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage creates an assistant-role message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// Request contains the parameters for a streaming chat completion.
// Sources translate it to their vendor's wire format.
type Request struct {
	// Model is the model identifier. Sources pass it through untouched;
	// the endpoint is the authority on which models exist.
	Model string `json:"model"`

	// Messages is the conversation history
	Messages []Message `json:"messages"`

	// MaxTokens caps generation length (0 means source default)
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (nil means endpoint default)
	Temperature *float64 `json:"temperature,omitempty"`

	// System is an optional system prompt
	System *string `json:"system,omitempty"`

	// Tools the model may invoke
	Tools []Tool `json:"tools,omitempty"`

	// ParallelToolCalls allows multiple concurrent tool calls in one
	// response (OpenAI-compatible endpoints only)
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`
}

// Validate checks that the request has the fields every source needs.
func (r *Request) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidRequest)
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: at least one message is required", ErrInvalidRequest)
	}
	for i, msg := range r.Messages {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidRequest, i, msg.Role)
		}
	}
	for i, tool := range r.Tools {
		if err := tool.Validate(); err != nil {
			return fmt.Errorf("tool %d: %w", i, err)
		}
	}
	return nil
}

// EffectiveMaxTokens returns MaxTokens, or def when unset.
func (r *Request) EffectiveMaxTokens(def int) int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return def
}
