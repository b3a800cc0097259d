package ai

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// CompletionNodeFactory creates CompletionNode instances.
type CompletionNodeFactory struct{}

// Create creates a new CompletionNode instance.
func (f *CompletionNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewCompletionNode(id, config)
}

// ID returns the factory ID.
func (f *CompletionNodeFactory) ID() string {
	return "ai"
}

// Name returns the factory name.
func (f *CompletionNodeFactory) Name() string {
	return "AI Completion"
}

// Description returns the factory description.
func (f *CompletionNodeFactory) Description() string {
	return "Requests a chat completion with a templated prompt"
}

// Schema returns the JSON schema for AI node configuration.
func (f *CompletionNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "User prompt. Supports template placeholders.",
			},
			"system": map[string]any{
				"type":        "string",
				"description": "Optional system prompt.",
			},
			"model": map[string]any{
				"type":    "string",
				"default": defaultModel,
			},
			"api_key": map[string]any{
				"type":        "string",
				"description": "Overrides the OPENAI_API_KEY environment variable.",
			},
		},
		"required": []string{"prompt"},
	}
}

// NewCompletionNodeFactory creates a new factory instance.
func NewCompletionNodeFactory() protocol.NodeFactory {
	return &CompletionNodeFactory{}
}
