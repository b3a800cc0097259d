package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowNodeByID(t *testing.T) {
	workflow := &Workflow{
		Nodes: []*WorkflowNode{
			{ID: "a", Type: "trigger:manual"},
			{ID: "b", Type: "transform"},
		},
	}

	node := workflow.NodeByID("b")
	require.NotNil(t, node)
	assert.Equal(t, "transform", node.Type)

	assert.Nil(t, workflow.NodeByID("missing"))
}

func TestTemplateContext(t *testing.T) {
	ec := ExecutionContext{
		ID:           "exec-1",
		WorkflowID:   "wf-1",
		TriggerInput: map[string]any{"source": "webhook"},
		Variables:    map[string]any{"env": "test"},
	}

	input := map[string]any{"name": "Ada"}
	ctx := ec.TemplateContext(input)

	assert.Equal(t, "Ada", ctx["name"])
	assert.Equal(t, input, ctx["input"])
	assert.Equal(t, input, ctx["json"])
	assert.Equal(t, ec.TriggerInput, ctx["trigger"])
	assert.Equal(t, ec.Variables, ctx["vars"])

	execution, ok := ctx["execution"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "exec-1", execution["id"])
	assert.Equal(t, "wf-1", execution["workflow_id"])
}

func TestTemplateContextDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"name": "Ada"}

	ec := ExecutionContext{ID: "exec-1", WorkflowID: "wf-1"}
	ec.TemplateContext(input)

	assert.Equal(t, map[string]any{"name": "Ada"}, input)
}
