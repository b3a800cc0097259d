package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

func TestNewTransformNode_RequiresExpression(t *testing.T) {
	_, err := NewTransformNode("t1", map[string]any{})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestNewTransformNode_RejectsInvalidExpression(t *testing.T) {
	_, err := NewTransformNode("t1", map[string]any{"expression": ".foo | | bar"})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestExecute_ObjectConstruction(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"expression": `{user_id: .user.id, active: true}`,
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"user": map[string]any{"id": "u-1", "name": "Ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", output["user_id"])
	assert.Equal(t, true, output["active"])
}

func TestExecute_ScalarResultIsWrapped(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"expression": ".items | length",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"items": []any{"a", "b", "c"},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(3), output["result"])
}

func TestExecute_DivideByZeroIsNodeLocalError(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"expression": ".total / .count",
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"total": 10,
		"count": 0,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transformation failed")
}

func TestExecute_IntInputsAreNormalized(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"expression": ".total / .count",
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"total": 10,
		"count": 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 2.5, output["result"])
}

func TestExecute_ResultsAreNormalizedToJSONTypes(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"expression": `{sum: (.a + .b), items: [.a, .b]}`,
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"a": 1,
		"b": 2,
	})
	require.NoError(t, err)

	// Integer arithmetic comes back as float64, same as decoded JSON.
	assert.Equal(t, float64(3), output["sum"])
	assert.Equal(t, []any{float64(1), float64(2)}, output["items"])
}

func TestExecute_TemplatedExpression(t *testing.T) {
	node, err := NewTransformNode("t1", map[string]any{
		"expression": `{greeting: "hello {{name}}"}`,
	})
	require.NoError(t, err)

	input := map[string]any{"name": "Ada"}

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, input)
	require.NoError(t, err)

	assert.Equal(t, "hello Ada", output["greeting"])
}
