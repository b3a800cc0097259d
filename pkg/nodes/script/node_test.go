package script

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

func TestNewScriptNode_RequiresCode(t *testing.T) {
	_, err := NewScriptNode("s1", map[string]any{})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestNewScriptNode_SyntaxErrorIsViolation(t *testing.T) {
	_, err := NewScriptNode("s1", map[string]any{"code": "input.price *"})
	require.Error(t, err)
	assert.True(t, protocol.IsSandboxViolation(err))
}

func TestNewScriptNode_TimeoutIsClamped(t *testing.T) {
	node, err := NewScriptNode("s1", map[string]any{
		"code":            "1 + 1",
		"timeout_seconds": 3600,
	})
	require.NoError(t, err)
	assert.Equal(t, MaxTimeout, node.timeout)
}

func TestExecute_EvaluatesAgainstInput(t *testing.T) {
	node, err := NewScriptNode("s1", map[string]any{
		"code": "{total: input.a + input.b}",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"a": 2, "b": 3,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(5), output["total"])
}

func TestExecute_ScalarResultIsWrapped(t *testing.T) {
	node, err := NewScriptNode("s1", map[string]any{"code": `"hi " + input.name`})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"name": "Ada",
	})
	require.NoError(t, err)

	assert.Equal(t, "hi Ada", output["result"])
}

func TestExecute_MutationDoesNotEscapeSandbox(t *testing.T) {
	input := map[string]any{"items": []any{"a"}}

	node, err := NewScriptNode("s1", map[string]any{
		// The script gets its own copy of the environment.
		"code": "len(input.items)",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, input)
	require.NoError(t, err)

	assert.Equal(t, 1, output["result"])
	assert.Equal(t, []any{"a"}, input["items"])
}

func TestExecute_TimeoutIsDistinguished(t *testing.T) {
	node, err := NewScriptNode("s1", map[string]any{
		"code":            "all(1..10000, {all(1..10000, {# >= 0})})",
		"timeout_seconds": 0.05,
	})
	require.NoError(t, err)

	start := time.Now()

	_, err = node.Execute(context.Background(), models.ExecutionContext{}, nil)
	require.Error(t, err)

	assert.True(t, protocol.IsSandboxTimeout(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}
