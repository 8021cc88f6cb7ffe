// Package openai streams chat completions from any OpenAI-compatible
// endpoint and decodes the SSE chunks into llmstream response events.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sxhxliang/llmstream"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Source streams chat completions over the OpenAI wire format.
type Source struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSource creates a source against the official OpenAI endpoint.
func NewSource(apiKey string) (*Source, error) {
	return NewSourceWithBaseURL(apiKey, defaultBaseURL)
}

// NewSourceWithBaseURL creates a source against any OpenAI-compatible
// endpoint (a proxy, OpenRouter, a local server). baseURL is the prefix
// before /chat/completions.
func NewSourceWithBaseURL(apiKey, baseURL string) (*Source, error) {
	if apiKey == "" {
		return nil, llmstream.ErrInvalidAPIKey
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Source{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return "openai"
}

// StreamEvents starts a streaming chat completion and returns decoded events.
func (s *Source) StreamEvents(ctx context.Context, req *llmstream.Request) (<-chan llmstream.StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := buildChatRequest(req)

	httpReq, err := s.buildHTTPRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, s.handleErrorResponse(resp)
	}

	eventChan := make(chan llmstream.StreamEvent, 10) // Buffered to prevent blocking

	go func() {
		defer close(eventChan)
		defer resp.Body.Close()

		if err := s.streamEvents(ctx, resp.Body, eventChan); err != nil {
			eventChan <- llmstream.StreamEvent{Err: err}
		}
	}()

	return eventChan, nil
}

// buildChatRequest converts a Request to the OpenAI request body.
// Usage reporting is always requested so the terminal event can carry it.
func buildChatRequest(req *llmstream.Request) *chatCompletionRequest {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.System != nil {
		messages = append(messages, chatMessage{Role: "system", Content: *req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Text})
	}

	body := &chatCompletionRequest{
		Model:             req.Model,
		Messages:          messages,
		MaxTokens:         req.MaxTokens,
		Temperature:       req.Temperature,
		ParallelToolCalls: req.ParallelToolCalls,
		Stream:            true,
		StreamOptions:     &streamOptions{IncludeUsage: true},
	}

	if len(req.Tools) > 0 {
		body.Tools = make([]requestTool, 0, len(req.Tools))
		for _, tool := range req.Tools {
			body.Tools = append(body.Tools, requestTool{
				Type: tool.Type,
				Function: requestFunction{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  tool.Function.Parameters,
				},
			})
		}
		body.ToolChoice = "auto"
	}

	return body
}

func (s *Source) buildHTTPRequest(ctx context.Context, body *chatCompletionRequest) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	return httpReq, nil
}

// handleErrorResponse converts a non-200 response to a SourceError.
func (s *Source) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	sourceErr := &llmstream.SourceError{
		Source:     s.Name(),
		StatusCode: resp.StatusCode,
		Message:    message,
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		sourceErr.Err = llmstream.ErrInvalidAPIKey
	}

	return sourceErr
}
