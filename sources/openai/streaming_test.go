package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sxhxliang/llmstream"
)

func strPtr(s string) *string {
	return &s
}

func TestChunkTranslator_TextDeltas(t *testing.T) {
	translator := newChunkTranslator()

	events := translator.translate(&ChatCompletionChunk{
		Model: "deepseek-v3.1",
		Choices: []ChunkChoice{
			{Delta: Delta{Content: strPtr("Hello")}},
		},
	})

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != llmstream.EventTextDelta || events[0].Text != "Hello" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestChunkTranslator_ReasoningBecomesThinking(t *testing.T) {
	translator := newChunkTranslator()

	events := translator.translate(&ChatCompletionChunk{
		Choices: []ChunkChoice{
			{Delta: Delta{Reasoning: strPtr("step 1"), Content: strPtr("answer")}},
		},
	})

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != llmstream.EventThinkingDelta || events[0].Text != "step 1" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Type != llmstream.EventTextDelta {
		t.Errorf("second event = %+v", events[1])
	}
}

func TestChunkTranslator_ToolCallLifecycle(t *testing.T) {
	translator := newChunkTranslator()

	// First fragment opens the call and may already carry argument text
	events := translator.translate(&ChatCompletionChunk{
		Choices: []ChunkChoice{
			{Delta: Delta{ToolCalls: []ToolCallDelta{
				{Index: 0, ID: "call_1", Function: FunctionCallDelta{Name: "get_current_weather", Arguments: `{"loc`}},
			}}},
		},
	})

	if len(events) != 2 {
		t.Fatalf("expected start + fragment, got %d events", len(events))
	}
	if events[0].Type != llmstream.EventToolCallStart ||
		events[0].Index != 0 || events[0].CallID != "call_1" || events[0].Name != "get_current_weather" {
		t.Errorf("start event = %+v", events[0])
	}
	if events[1].Type != llmstream.EventToolCallArgumentsDelta || events[1].Fragment != `{"loc` {
		t.Errorf("fragment event = %+v", events[1])
	}

	// Later fragments route by index without reopening the call
	events = translator.translate(&ChatCompletionChunk{
		Choices: []ChunkChoice{
			{Delta: Delta{ToolCalls: []ToolCallDelta{
				{Index: 0, Function: FunctionCallDelta{Arguments: `ation":"Paris"}`}},
			}}},
		},
	})
	if len(events) != 1 || events[0].Type != llmstream.EventToolCallArgumentsDelta {
		t.Fatalf("expected 1 fragment event, got %+v", events)
	}

	// finish closes open calls in first-seen order, then ends the stream
	final := translator.finish()
	if len(final) != 2 {
		t.Fatalf("expected done + end, got %d events", len(final))
	}
	if final[0].Type != llmstream.EventToolCallDone || final[0].Index != 0 {
		t.Errorf("done event = %+v", final[0])
	}
	if final[1].Type != llmstream.EventEnd {
		t.Errorf("end event = %+v", final[1])
	}
}

func TestChunkTranslator_ParallelToolCalls(t *testing.T) {
	translator := newChunkTranslator()

	translator.translate(&ChatCompletionChunk{
		Choices: []ChunkChoice{
			{Delta: Delta{ToolCalls: []ToolCallDelta{
				{Index: 0, ID: "call_a", Function: FunctionCallDelta{Name: "f"}},
				{Index: 1, ID: "call_b", Function: FunctionCallDelta{Name: "g"}},
			}}},
		},
	})

	final := translator.finish()
	if len(final) != 3 {
		t.Fatalf("expected 2 dones + end, got %d events", len(final))
	}
	if final[0].Index != 0 || final[1].Index != 1 {
		t.Errorf("done order = %d, %d, want 0, 1", final[0].Index, final[1].Index)
	}
}

func TestChunkTranslator_UsageAndFinishReason(t *testing.T) {
	translator := newChunkTranslator()

	translator.translate(&ChatCompletionChunk{
		Model: "deepseek-v3.1",
		Choices: []ChunkChoice{
			{Delta: Delta{}, FinishReason: strPtr("tool_calls")},
		},
	})
	translator.translate(&ChatCompletionChunk{
		Usage: &ChunkUsage{PromptTokens: 20, CompletionTokens: 9, TotalTokens: 29},
	})

	final := translator.finish()
	end := final[len(final)-1]
	if end.Usage == nil {
		t.Fatal("end event has no usage")
	}
	if end.Usage.Model != "deepseek-v3.1" || end.Usage.InputTokens != 20 ||
		end.Usage.OutputTokens != 9 || end.Usage.StopReason != "tool_use" {
		t.Errorf("usage = %+v", end.Usage)
	}
}

func TestMapFinishReason(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"stop", "end_turn"},
		{"length", "max_tokens"},
		{"tool_calls", "tool_use"},
		{"content_filter", "stop_sequence"},
		{"weird_vendor_reason", "weird_vendor_reason"},
	}

	for _, tt := range tests {
		if got := mapFinishReason(tt.in); got != tt.want {
			t.Errorf("mapFinishReason(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSource_StreamEvents_SSE(t *testing.T) {
	transcript := []string{
		`{"id":"1","object":"chat.completion.chunk","model":"deepseek-v3.1","choices":[{"index":0,"delta":{"role":"assistant","content":"Hello"}}]}`,
		`{"choices":[{"index":0,"delta":{"content":" there."}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"get_current_weather","arguments":""}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"location\":"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Paris\"}"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
		`{"choices":[],"usage":{"prompt_tokens":20,"completion_tokens":9,"total_tokens":29}}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range transcript {
			fmt.Fprintf(w, "data: %s\n\n", line)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	source, err := NewSourceWithBaseURL("test-key", server.URL)
	if err != nil {
		t.Fatalf("NewSourceWithBaseURL() error = %v", err)
	}

	req := &llmstream.Request{
		Model:    "deepseek-v3.1",
		Messages: []llmstream.Message{llmstream.UserMessage("What's the weather in Paris?")},
	}

	events, err := source.StreamEvents(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamEvents() error = %v", err)
	}

	msg, err := llmstream.Collect(context.Background(), events, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if msg.Text != "Hello there." {
		t.Errorf("Text = %q", msg.Text)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(msg.ToolCalls))
	}

	call := msg.ToolCalls[0]
	if call.CallID != "call_1" || call.Name != "get_current_weather" {
		t.Errorf("call = (%s, %s)", call.CallID, call.Name)
	}
	if loc, _ := call.Arguments["location"].(string); loc != "Paris" {
		t.Errorf("location = %q, want Paris", loc)
	}

	if msg.Usage == nil || msg.Usage.InputTokens != 20 || msg.Usage.StopReason != "tool_use" {
		t.Errorf("Usage = %+v", msg.Usage)
	}
}

func TestSource_StreamEvents_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"auth"}}`)
	}))
	defer server.Close()

	source, err := NewSourceWithBaseURL("bad-key", server.URL)
	if err != nil {
		t.Fatalf("NewSourceWithBaseURL() error = %v", err)
	}

	req := &llmstream.Request{
		Model:    "m",
		Messages: []llmstream.Message{llmstream.UserMessage("hi")},
	}

	_, err = source.StreamEvents(context.Background(), req)
	if err == nil {
		t.Fatal("StreamEvents() expected error for 401")
	}

	var srcErr *llmstream.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error is not *SourceError: %T", err)
	}
	if srcErr.StatusCode != http.StatusUnauthorized || srcErr.Message != "invalid api key" {
		t.Errorf("SourceError = %+v", srcErr)
	}
}

func TestNewSource_RequiresAPIKey(t *testing.T) {
	if _, err := NewSource(""); err == nil {
		t.Error("NewSource() expected error for empty API key")
	}
}
