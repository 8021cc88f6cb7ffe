package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/sxhxliang/llmstream"
)

const defaultMaxTokens = 4096

// buildMessageParams constructs Anthropic API parameters from a Request.
func buildMessageParams(req *llmstream.Request) (anthropic.MessageNewParams, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		block := anthropic.NewTextBlock(msg.Text)
		switch msg.Role {
		case llmstream.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(block))
		case llmstream.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(block))
		}
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(req.EffectiveMaxTokens(defaultMaxTokens)),
	}

	if req.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*req.Temperature)
	}

	if req.System != nil {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: *req.System,
			},
		}
	}

	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		apiParams.Tools = tools
	}

	return apiParams, nil
}

// convertTools converts universal function tools to the Anthropic format:
// the JSON Schema in Function.Parameters becomes input_schema.
func convertTools(tools []llmstream.Tool) ([]anthropic.ToolUnionParam, error) {
	result := make([]anthropic.ToolUnionParam, 0, len(tools))

	for i, tool := range tools {
		converted, err := convertTool(&tool)
		if err != nil {
			return nil, fmt.Errorf("tool %d (%s): %w", i, tool.Function.Name, err)
		}
		result = append(result, converted)
	}

	return result, nil
}

func convertTool(tool *llmstream.Tool) (anthropic.ToolUnionParam, error) {
	if err := tool.Validate(); err != nil {
		return anthropic.ToolUnionParam{}, err
	}

	properties := tool.Function.Parameters["properties"]

	// Type can be elided (zero value) - it marshals as "object"
	schema := anthropic.ToolInputSchemaParam{
		Properties:  properties,
		ExtraFields: make(map[string]any),
	}

	switch required := tool.Function.Parameters["required"].(type) {
	case []string:
		schema.Required = required
	case []interface{}:
		schema.Required = make([]string, 0, len(required))
		for _, v := range required {
			if str, ok := v.(string); ok {
				schema.Required = append(schema.Required, str)
			}
		}
	}

	for key, value := range tool.Function.Parameters {
		if key != "type" && key != "properties" && key != "required" {
			schema.ExtraFields[key] = value
		}
	}

	toolParam := anthropic.ToolUnionParamOfTool(schema, tool.Function.Name)

	if tool.Function.Description != "" {
		if toolParam.OfTool == nil {
			toolParam.OfTool = &anthropic.ToolParam{}
		}
		toolParam.OfTool.Description = anthropic.String(tool.Function.Description)
	}

	return toolParam, nil
}
