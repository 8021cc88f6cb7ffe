package llmstream

import "testing"

func TestTool_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tool    Tool
		wantErr bool
	}{
		{
			name: "valid function tool",
			tool: Tool{
				Type: "function",
				Function: FunctionDetails{
					Name:       "get_weather",
					Parameters: map[string]interface{}{"type": "object"},
				},
			},
		},
		{
			name:    "missing type",
			tool:    Tool{Function: FunctionDetails{Name: "x", Parameters: map[string]interface{}{}}},
			wantErr: true,
		},
		{
			name: "unsupported type",
			tool: Tool{
				Type:     "retrieval",
				Function: FunctionDetails{Name: "x", Parameters: map[string]interface{}{}},
			},
			wantErr: true,
		},
		{
			name:    "missing name",
			tool:    Tool{Type: "function", Function: FunctionDetails{Parameters: map[string]interface{}{}}},
			wantErr: true,
		},
		{
			name:    "missing parameters",
			tool:    Tool{Type: "function", Function: FunctionDetails{Name: "x"}},
			wantErr: true,
		},
		{
			name: "non-object schema",
			tool: Tool{
				Type: "function",
				Function: FunctionDetails{
					Name:       "x",
					Parameters: map[string]interface{}{"type": "array"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tool.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCustomTool(t *testing.T) {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
		},
		"required": []string{"query"},
	}

	tool, err := NewCustomTool("search", "Search for things", params)
	if err != nil {
		t.Fatalf("NewCustomTool() error = %v", err)
	}
	if tool.Type != "function" || tool.Function.Name != "search" {
		t.Errorf("tool = %+v", tool)
	}

	if _, err := NewCustomTool("", "d", params); err == nil {
		t.Error("NewCustomTool() expected error for empty name")
	}
	if _, err := NewCustomTool("n", "", params); err == nil {
		t.Error("NewCustomTool() expected error for empty description")
	}
	if _, err := NewCustomTool("n", "d", nil); err == nil {
		t.Error("NewCustomTool() expected error for nil parameters")
	}
}

func TestNewWeatherTool(t *testing.T) {
	tool, err := NewWeatherTool()
	if err != nil {
		t.Fatalf("NewWeatherTool() error = %v", err)
	}
	if tool.Function.Name != "get_current_weather" {
		t.Errorf("Name = %q, want get_current_weather", tool.Function.Name)
	}

	properties, ok := tool.Function.Parameters["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("parameters have no properties object")
	}
	if _, ok := properties["location"]; !ok {
		t.Error("weather tool is missing the location property")
	}
}

func TestRequest_Validate(t *testing.T) {
	valid := Request{
		Model:       "gpt-4o-mini",
		Messages:    []Message{UserMessage("hi")},
		Temperature: float64Ptr(0.7),
		System:      stringPtr("Be brief."),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v for valid request", err)
	}

	tests := []struct {
		name string
		req  Request
	}{
		{"missing model", Request{Messages: []Message{UserMessage("hi")}}},
		{"no messages", Request{Model: "m"}},
		{"bad role", Request{Model: "m", Messages: []Message{{Role: "system", Text: "x"}}}},
		{
			"invalid tool",
			Request{
				Model:    "m",
				Messages: []Message{UserMessage("hi")},
				Tools:    []Tool{{Type: "function"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}

func TestRequest_EffectiveMaxTokens(t *testing.T) {
	req := Request{}
	if got := req.EffectiveMaxTokens(4096); got != 4096 {
		t.Errorf("EffectiveMaxTokens() = %d, want default 4096", got)
	}

	req.MaxTokens = 512
	if got := req.EffectiveMaxTokens(4096); got != 512 {
		t.Errorf("EffectiveMaxTokens() = %d, want 512", got)
	}
}
