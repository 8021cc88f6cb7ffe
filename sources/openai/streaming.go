package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sxhxliang/llmstream"
)

// streamEvents reads SSE lines, decodes chunks, and emits llmstream events.
func (s *Source) streamEvents(ctx context.Context, body io.Reader, eventChan chan<- llmstream.StreamEvent) error {
	scanner := bufio.NewScanner(body)
	translator := newChunkTranslator()

	for scanner.Scan() {
		line := scanner.Text()

		// Skip empty lines and SSE comments
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			break
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Check for an in-stream error payload
			var errResp struct {
				Error struct {
					Code    int    `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if json.Unmarshal([]byte(data), &errResp) == nil && errResp.Error.Message != "" {
				return &llmstream.SourceError{
					Source:  s.Name(),
					Message: errResp.Error.Message,
				}
			}
			// Ignore unparseable chunks (keep-alives and vendor extras)
			continue
		}

		for _, ev := range translator.translate(&chunk) {
			if err := send(ctx, eventChan, ev); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}

	for _, ev := range translator.finish() {
		if err := send(ctx, eventChan, ev); err != nil {
			return err
		}
	}

	return nil
}

func send(ctx context.Context, eventChan chan<- llmstream.StreamEvent, ev llmstream.ResponseEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case eventChan <- llmstream.StreamEvent{Event: &ev}:
		return nil
	}
}

// chunkTranslator converts chat completion chunks to llmstream events.
//
// The OpenAI wire format opens a tool call implicitly: the first tool_calls
// fragment for an index carries the call id and function name, later
// fragments only argument text. There is no per-call close on the wire, so
// calls stay open until the stream finishes and are closed in first-seen
// order by finish().
type chunkTranslator struct {
	started map[int]bool // wire index -> start emitted
	order   []int        // wire indexes in first-seen order
	usage   llmstream.Usage
}

func newChunkTranslator() *chunkTranslator {
	return &chunkTranslator{
		started: make(map[int]bool),
	}
}

// translate decodes one chunk into zero or more llmstream events.
func (t *chunkTranslator) translate(chunk *ChatCompletionChunk) []llmstream.ResponseEvent {
	var events []llmstream.ResponseEvent

	if chunk.Model != "" {
		t.usage.Model = chunk.Model
	}

	// Usage arrives on a trailing chunk with no choices when
	// stream_options.include_usage is set
	if chunk.Usage != nil {
		t.usage.InputTokens = chunk.Usage.PromptTokens
		t.usage.OutputTokens = chunk.Usage.CompletionTokens
	}

	if len(chunk.Choices) == 0 {
		return events
	}

	choice := chunk.Choices[0]
	delta := choice.Delta

	if delta.Reasoning != nil && *delta.Reasoning != "" {
		events = append(events, llmstream.ThinkingDelta(*delta.Reasoning))
	}

	if delta.Content != nil && *delta.Content != "" {
		events = append(events, llmstream.TextDelta(*delta.Content))
	}

	for _, tc := range delta.ToolCalls {
		if !t.started[tc.Index] {
			t.started[tc.Index] = true
			t.order = append(t.order, tc.Index)
			events = append(events, llmstream.ToolCallStart(tc.Index, tc.ID, tc.Function.Name))
		}
		if tc.Function.Arguments != "" {
			events = append(events, llmstream.ToolCallArgumentsDelta(tc.Index, tc.Function.Arguments))
		}
	}

	if choice.FinishReason != nil {
		t.usage.StopReason = mapFinishReason(*choice.FinishReason)
	}

	return events
}

// finish closes all open tool calls and emits the terminal event.
func (t *chunkTranslator) finish() []llmstream.ResponseEvent {
	events := make([]llmstream.ResponseEvent, 0, len(t.order)+1)

	for _, idx := range t.order {
		events = append(events, llmstream.ToolCallDone(idx))
	}

	usage := t.usage
	events = append(events, llmstream.EndWithUsage(&usage))

	return events
}

// mapFinishReason maps the wire finish_reason to the library stop reason.
func mapFinishReason(finishReason string) string {
	switch finishReason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	case "tool_calls":
		return "tool_use"
	case "content_filter":
		return "stop_sequence"
	default:
		return finishReason
	}
}
