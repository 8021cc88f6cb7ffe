// Package lorem is a mock event source that streams lorem ipsum text and
// fabricated tool calls. Used for examples and development without API keys.
package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"github.com/sxhxliang/llmstream"
)

// Source generates synthetic response event streams.
type Source struct {
	generator *loremgen.Lorem
}

// NewSource creates a lorem source.
func NewSource() *Source {
	return &Source{
		generator: loremgen.New(),
	}
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return "lorem"
}

// streamDelay returns the pause between fragments based on the model name.
//   - lorem-slow: 2 fragments/second
//   - lorem-fast: 30 fragments/second
//   - anything else: 10 fragments/second
func streamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// StreamEvents streams a sentence of lorem text word by word. When the
// request carries tools, it follows with one fabricated call per tool,
// streaming the argument JSON in small fragments. Ends with estimated usage.
func (s *Source) StreamEvents(ctx context.Context, req *llmstream.Request) (<-chan llmstream.StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	delay := streamDelay(req.Model)

	eventChan := make(chan llmstream.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		outputTokens := 0

		sentence := s.generator.Sentence(8, 14)
		for _, word := range strings.Fields(sentence) {
			if err := send(ctx, eventChan, llmstream.TextDelta(word+" "), delay); err != nil {
				return
			}
			outputTokens++
		}

		for i, tool := range req.Tools {
			callID := fmt.Sprintf("call_%s_%d", tool.Function.Name, i)
			if err := send(ctx, eventChan, llmstream.ToolCallStart(i, callID, tool.Function.Name), delay); err != nil {
				return
			}

			argJSON, err := json.Marshal(s.fabricateArguments(&tool))
			if err != nil {
				eventChan <- llmstream.StreamEvent{Err: fmt.Errorf("failed to marshal tool arguments: %w", err)}
				return
			}

			// Stream the JSON in small fragments, simulating incremental
			// argument assembly
			for _, fragment := range splitFragments(string(argJSON), 8) {
				if err := send(ctx, eventChan, llmstream.ToolCallArgumentsDelta(i, fragment), delay/4); err != nil {
					return
				}
			}
			outputTokens += len(argJSON) / 4

			if err := send(ctx, eventChan, llmstream.ToolCallDone(i), 0); err != nil {
				return
			}
		}

		stopReason := "end_turn"
		if len(req.Tools) > 0 {
			stopReason = "tool_use"
		}

		end := llmstream.EndWithUsage(&llmstream.Usage{
			Model:        req.Model,
			InputTokens:  estimateInputTokens(req.Messages),
			OutputTokens: outputTokens,
			StopReason:   stopReason,
		})
		eventChan <- llmstream.StreamEvent{Event: &end}
	}()

	return eventChan, nil
}

// fabricateArguments builds a plausible argument object for a tool: every
// declared string property gets a lorem word, in stable property order.
func (s *Source) fabricateArguments(tool *llmstream.Tool) map[string]interface{} {
	args := make(map[string]interface{})

	properties, ok := tool.Function.Parameters["properties"].(map[string]interface{})
	if !ok {
		return args
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		args[name] = s.generator.Word(3, 10)
	}

	return args
}

func send(ctx context.Context, eventChan chan<- llmstream.StreamEvent, ev llmstream.ResponseEvent, delay time.Duration) error {
	select {
	case <-ctx.Done():
		eventChan <- llmstream.StreamEvent{Err: ctx.Err()}
		return ctx.Err()
	case eventChan <- llmstream.StreamEvent{Event: &ev}:
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return nil
}

// splitFragments cuts s into chunks of at most size bytes.
func splitFragments(s string, size int) []string {
	var fragments []string
	for len(s) > size {
		fragments = append(fragments, s[:size])
		s = s[size:]
	}
	if len(s) > 0 {
		fragments = append(fragments, s)
	}
	return fragments
}

// estimateInputTokens approximates prompt tokens by word count.
func estimateInputTokens(messages []llmstream.Message) int {
	total := 0
	for _, msg := range messages {
		total += len(strings.Fields(msg.Text))
	}
	return total
}
