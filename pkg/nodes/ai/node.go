// Package ai provides the AI completion node for workflow graph execution.
// It is the canonical external-call node with named input ports: edges can
// route upstream outputs to the "model", "memory" and "tool" handles.
package ai

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/fluxohq/fluxo/pkg/template"
)

const defaultModel = openai.GPT4oMini

// completionClient is the slice of the OpenAI client the node uses,
// extracted so tests can stub the API.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CompletionNode implements the Node interface for chat completions.
type CompletionNode struct {
	id       string
	prompt   string
	system   string
	model    string
	client   completionClient
	resolver *template.Resolver
}

// NewCompletionNode creates a new AI completion node. The API key comes
// from config or the OPENAI_API_KEY environment variable.
func NewCompletionNode(id string, config map[string]any) (*CompletionNode, error) {
	prompt, ok := config["prompt"].(string)
	if !ok || prompt == "" {
		return nil, protocol.NewConfigError(id, "prompt", "missing required field")
	}

	apiKey, _ := config["api_key"].(string)
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, protocol.NewConfigError(id, "api_key", "missing api key: set config api_key or OPENAI_API_KEY")
	}

	model := defaultModel
	if m, ok := config["model"].(string); ok && m != "" {
		model = m
	}

	system, _ := config["system"].(string)

	return &CompletionNode{
		id:       id,
		prompt:   prompt,
		system:   system,
		model:    model,
		client:   openai.NewClient(apiKey),
		resolver: template.NewResolver(),
	}, nil
}

// ID returns the node ID.
func (n *CompletionNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *CompletionNode) Type() string {
	return "ai"
}

// Execute resolves the prompt template and requests a completion. Edges
// routed to the "model" handle can override the configured model at run
// time.
func (n *CompletionNode) Execute(ctx context.Context, ec models.ExecutionContext, input map[string]any) (map[string]any, error) {
	templateCtx := ec.TemplateContext(input)

	prompt, err := n.resolver.Resolve(n.prompt, templateCtx)
	if err != nil {
		return nil, fmt.Errorf("node %s: failed to resolve prompt template: %w", n.id, err)
	}

	model := n.model
	if port, ok := input["model"].(map[string]any); ok {
		if override, ok := port["model"].(string); ok && override != "" {
			model = override
		}
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if n.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: n.system,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return map[string]any{
			"success": false,
			"error":   fmt.Sprintf("completion failed: %v", err),
		}, nil
	}

	if len(resp.Choices) == 0 {
		return map[string]any{
			"success": false,
			"error":   "completion returned no choices",
		}, nil
	}

	return map[string]any{
		"success":  true,
		"response": resp.Choices[0].Message.Content,
		"model":    resp.Model,
		"usage": map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}, nil
}
