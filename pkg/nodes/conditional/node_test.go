package conditional

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

func TestNewConditionalNode_RequiresCondition(t *testing.T) {
	_, err := NewConditionalNode("c1", map[string]any{})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestNewConditionalNode_RejectsInvalidExpression(t *testing.T) {
	_, err := NewConditionalNode("c1", map[string]any{"condition": "input.a >"})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestExecute_TrueBranch(t *testing.T) {
	node, err := NewConditionalNode("c1", map[string]any{
		"condition": "input.status_code >= 200 && input.status_code < 300",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"status_code": 204,
	})
	require.NoError(t, err)

	assert.Equal(t, true, output["condition_result"])
	assert.Equal(t, 204, output["status_code"])
}

func TestExecute_FalseBranch(t *testing.T) {
	node, err := NewConditionalNode("c1", map[string]any{
		"condition": "input.success",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"success": false,
	})
	require.NoError(t, err)

	assert.Equal(t, false, output["condition_result"])
}

func TestExecute_NonBooleanResultsAreCoerced(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		input     map[string]any
		want      bool
	}{
		{"non-empty string", "input.name", map[string]any{"name": "Ada"}, true},
		{"empty string", "input.name", map[string]any{"name": ""}, false},
		{"non-empty list", "input.items", map[string]any{"items": []any{1}}, true},
		{"zero", "input.count", map[string]any{"count": 0}, false},
		{"missing field", "input.absent", map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewConditionalNode("c1", map[string]any{"condition": tt.condition})
			require.NoError(t, err)

			output, err := node.Execute(context.Background(), models.ExecutionContext{}, tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.want, output["condition_result"])
		})
	}
}
