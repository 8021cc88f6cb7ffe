package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/sxhxliang/llmstream"
)

// eventTranslator converts Anthropic streaming events to llmstream events.
// It remembers each content block's type so a content_block_stop can be
// mapped to a tool-call close only when the block was a tool_use.
//
// Anthropic stream events:
//   - message_start: message metadata (id, model, role) - skipped
//   - content_block_start: new block at an index (text, thinking, tool_use)
//   - content_block_delta: text_delta, thinking_delta, input_json_delta
//   - content_block_stop: block at an index finished
//   - message_delta: stop_reason updates - folded into final usage
//   - message_stop: stream complete - terminal event emitted by the caller
type eventTranslator struct {
	blockKinds map[int]string // block index -> content block type
}

func newEventTranslator() *eventTranslator {
	return &eventTranslator{
		blockKinds: make(map[int]string),
	}
}

// translate decodes one SDK event into zero or more llmstream events.
func (t *eventTranslator) translate(event anthropic.MessageStreamEventUnion) []llmstream.ResponseEvent {
	switch e := event.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		index := int(e.Index)
		t.blockKinds[index] = string(e.ContentBlock.Type)

		if e.ContentBlock.Type == "tool_use" {
			return []llmstream.ResponseEvent{
				llmstream.ToolCallStart(index, e.ContentBlock.ID, e.ContentBlock.Name),
			}
		}
		return nil

	case anthropic.ContentBlockDeltaEvent:
		index := int(e.Index)

		switch e.Delta.Type {
		case "text_delta":
			return []llmstream.ResponseEvent{llmstream.TextDelta(e.Delta.Text)}

		case "thinking_delta":
			return []llmstream.ResponseEvent{llmstream.ThinkingDelta(e.Delta.Thinking)}

		case "input_json_delta":
			return []llmstream.ResponseEvent{
				llmstream.ToolCallArgumentsDelta(index, e.Delta.PartialJSON),
			}
		}
		// signature_delta and unknown delta types carry nothing we aggregate
		return nil

	case anthropic.ContentBlockStopEvent:
		index := int(e.Index)
		if t.blockKinds[index] == "tool_use" {
			return []llmstream.ResponseEvent{llmstream.ToolCallDone(index)}
		}
		return nil

	default:
		// message_start, message_delta, message_stop: metadata only
		return nil
	}
}
