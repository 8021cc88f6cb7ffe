package llmstream

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/scripts/weather.yaml
var weatherScriptYAML []byte

// Script is a declarative, transport-free event sequence. Scripts replay
// recorded or hand-written streams deterministically: tests exercise
// interleavings without a network, and demos run without credentials.
type Script struct {
	Version     string        `yaml:"version"`     // Semantic version (e.g., "1.0.0")
	Description string        `yaml:"description"` // What the script demonstrates
	Events      []ScriptEvent `yaml:"events"`
}

// ScriptEvent is one scripted event. Type selects the variant; the other
// fields mirror ResponseEvent.
type ScriptEvent struct {
	Type     string `yaml:"type"`
	Text     string `yaml:"text,omitempty"`
	Index    int    `yaml:"index,omitempty"`
	CallID   string `yaml:"call_id,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Fragment string `yaml:"fragment,omitempty"`
	Usage    *Usage `yaml:"usage,omitempty"`
}

// ParseScript decodes a YAML script and checks every event type is known.
func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if len(script.Events) == 0 {
		return nil, fmt.Errorf("script contains no events")
	}

	for i, ev := range script.Events {
		if _, err := ev.responseEvent(); err != nil {
			return nil, fmt.Errorf("script event %d: %w", i, err)
		}
	}

	return &script, nil
}

// LoadScriptFromFile reads and parses a YAML script from disk.
func LoadScriptFromFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return ParseScript(data)
}

// WeatherScript returns the embedded demo script: a narrated response with
// two interleaved parallel get_current_weather calls.
func WeatherScript() (*Script, error) {
	return ParseScript(weatherScriptYAML)
}

// responseEvent converts one scripted event to its runtime form.
func (ev ScriptEvent) responseEvent() (ResponseEvent, error) {
	switch EventType(ev.Type) {
	case EventTextDelta:
		return TextDelta(ev.Text), nil
	case EventThinkingDelta:
		return ThinkingDelta(ev.Text), nil
	case EventToolCallStart:
		return ToolCallStart(ev.Index, ev.CallID, ev.Name), nil
	case EventToolCallArgumentsDelta:
		return ToolCallArgumentsDelta(ev.Index, ev.Fragment), nil
	case EventToolCallDone:
		return ToolCallDone(ev.Index), nil
	case EventEnd:
		return EndWithUsage(ev.Usage), nil
	default:
		return ResponseEvent{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// ResponseEvents converts the whole script to runtime events.
func (s *Script) ResponseEvents() ([]ResponseEvent, error) {
	events := make([]ResponseEvent, 0, len(s.Events))
	for i, ev := range s.Events {
		re, err := ev.responseEvent()
		if err != nil {
			return nil, fmt.Errorf("script event %d: %w", i, err)
		}
		events = append(events, re)
	}
	return events, nil
}

// Name returns the source identifier for scripted replay.
func (s *Script) Name() string {
	return "replay"
}

// StreamEvents replays the script on a channel, ignoring the request.
// It lets a Script stand in for a live Source.
func (s *Script) StreamEvents(ctx context.Context, _ *Request) (<-chan StreamEvent, error) {
	events, err := s.ResponseEvents()
	if err != nil {
		return nil, err
	}

	eventChan := make(chan StreamEvent, 10)

	go func() {
		defer close(eventChan)
		for i := range events {
			ev := events[i]
			select {
			case <-ctx.Done():
				eventChan <- StreamEvent{Err: ctx.Err()}
				return
			case eventChan <- StreamEvent{Event: &ev}:
			}
		}
	}()

	return eventChan, nil
}
