package ai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/fluxohq/fluxo/pkg/template"
)

type stubClient struct {
	request  openai.ChatCompletionRequest
	response openai.ChatCompletionResponse
	err      error
}

func (s *stubClient) CreateChatCompletion(_ context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.request = request

	return s.response, s.err
}

func newStubbedNode(stub *stubClient, prompt, system string) *CompletionNode {
	return &CompletionNode{
		id:       "a1",
		prompt:   prompt,
		system:   system,
		model:    defaultModel,
		client:   stub,
		resolver: template.NewResolver(),
	}
}

func TestNewCompletionNode_RequiresPrompt(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	_, err := NewCompletionNode("a1", map[string]any{})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestNewCompletionNode_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewCompletionNode("a1", map[string]any{"prompt": "hello"})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestExecute_ResolvesPromptAndReturnsCompletion(t *testing.T) {
	stub := &stubClient{
		response: openai.ChatCompletionResponse{
			Model: defaultModel,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "classified: urgent"}},
			},
			Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
		},
	}

	node := newStubbedNode(stub, "Classify this ticket: {{subject}}", "You are a support triager.")

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"subject": "server down",
	})
	require.NoError(t, err)

	assert.Equal(t, true, output["success"])
	assert.Equal(t, "classified: urgent", output["response"])

	require.Len(t, stub.request.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, stub.request.Messages[0].Role)
	assert.Equal(t, "Classify this ticket: server down", stub.request.Messages[1].Content)
}

func TestExecute_ModelPortOverridesConfiguredModel(t *testing.T) {
	stub := &stubClient{
		response: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "ok"}},
			},
		},
	}

	node := newStubbedNode(stub, "hello", "")

	_, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"model": map[string]any{"model": "gpt-4o"},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", stub.request.Model)
}

func TestExecute_APIFailureIsStructuredErrorPayload(t *testing.T) {
	stub := &stubClient{err: errors.New("rate limited")}

	node := newStubbedNode(stub, "hello", "")

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, nil)
	require.NoError(t, err)

	assert.Equal(t, false, output["success"])
	assert.Contains(t, output["error"], "rate limited")
}
