// Package anthropic adapts the Anthropic Messages streaming API to
// llmstream response events.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sxhxliang/llmstream"
)

// Source streams chat completions from an Anthropic-compatible endpoint.
type Source struct {
	client *anthropic.Client
}

// NewSource creates an Anthropic source with the given API key.
func NewSource(apiKey string) (*Source, error) {
	if apiKey == "" {
		return nil, llmstream.ErrInvalidAPIKey
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Source{client: &client}, nil
}

// NewSourceWithBaseURL creates an Anthropic source against a custom endpoint,
// such as a local gateway that speaks the Messages API.
func NewSourceWithBaseURL(apiKey, baseURL string) (*Source, error) {
	if apiKey == "" {
		return nil, llmstream.ErrInvalidAPIKey
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)

	return &Source{client: &client}, nil
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return "anthropic"
}

// StreamEvents starts a streaming message call and decodes the SDK's event
// union into llmstream response events. The terminal event carries usage
// from the SDK's accumulated message.
func (s *Source) StreamEvents(ctx context.Context, req *llmstream.Request) (<-chan llmstream.StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	apiParams, err := buildMessageParams(req)
	if err != nil {
		return nil, err
	}

	eventChan := make(chan llmstream.StreamEvent, 10) // Buffered to prevent blocking

	go func() {
		defer close(eventChan)

		stream := s.client.Messages.NewStreaming(ctx, apiParams)

		// Accumulator for final usage metadata
		message := anthropic.Message{}

		translator := newEventTranslator()

		for stream.Next() {
			event := stream.Current()

			if err := message.Accumulate(event); err != nil {
				eventChan <- llmstream.StreamEvent{
					Err: fmt.Errorf("failed to accumulate message: %w", err),
				}
				return
			}

			decoded := translator.translate(event)
			for i := range decoded {
				ev := decoded[i]
				select {
				case <-ctx.Done():
					eventChan <- llmstream.StreamEvent{Err: ctx.Err()}
					return
				case eventChan <- llmstream.StreamEvent{Event: &ev}:
				}
			}
		}

		if err := stream.Err(); err != nil {
			eventChan <- llmstream.StreamEvent{
				Err: &llmstream.SourceError{
					Source:  s.Name(),
					Message: "streaming failed",
					Err:     err,
				},
			}
			return
		}

		end := llmstream.EndWithUsage(&llmstream.Usage{
			Model:        string(message.Model),
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			StopReason:   string(message.StopReason),
		})
		eventChan <- llmstream.StreamEvent{Event: &end}
	}()

	return eventChan, nil
}
