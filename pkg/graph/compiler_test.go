package graph

import (
	"testing"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, nodeType string) *models.WorkflowNode {
	return &models.WorkflowNode{ID: id, Type: nodeType, Name: id}
}

func edge(source, target string) *models.Edge {
	return &models.Edge{ID: source + "-" + target, Source: source, Target: target}
}

func orderIDs(result Result) []string {
	ids := make([]string, len(result.Order))
	for i, n := range result.Order {
		ids[i] = n.ID
	}

	return ids
}

func TestCompile_Chain(t *testing.T) {
	result := Compile(
		[]*models.WorkflowNode{node("A", "transform"), node("B", "transform"), node("C", "transform")},
		[]*models.Edge{edge("A", "B"), edge("B", "C")},
	)

	assert.Equal(t, []string{"A", "B", "C"}, orderIDs(result))
	assert.Empty(t, result.Unscheduled)
}

func TestCompile_Diamond(t *testing.T) {
	result := Compile(
		[]*models.WorkflowNode{node("A", "t"), node("B", "t"), node("C", "t"), node("D", "t")},
		[]*models.Edge{edge("A", "B"), edge("A", "C"), edge("B", "D"), edge("C", "D")},
	)

	ids := orderIDs(result)
	require.Len(t, ids, 4)
	assert.Equal(t, "A", ids[0])
	assert.Equal(t, "D", ids[3])
}

func TestCompile_TiesFollowNodeListOrder(t *testing.T) {
	result := Compile(
		[]*models.WorkflowNode{node("X", "t"), node("A", "t"), node("M", "t")},
		nil,
	)

	assert.Equal(t, []string{"X", "A", "M"}, orderIDs(result))
}

func TestCompile_ErrorHandlersAreSeparated(t *testing.T) {
	result := Compile(
		[]*models.WorkflowNode{node("A", "t"), node("onerr", ErrorTriggerNodeType)},
		nil,
	)

	assert.Equal(t, []string{"A"}, orderIDs(result))
	require.Len(t, result.ErrorHandlers, 1)
	assert.Equal(t, "onerr", result.ErrorHandlers[0].ID)
}

func TestCompile_CycleLeavesNodesUnscheduled(t *testing.T) {
	result := Compile(
		[]*models.WorkflowNode{node("A", "t"), node("B", "t"), node("C", "t")},
		[]*models.Edge{edge("A", "B"), edge("B", "C"), edge("C", "B")},
	)

	assert.Equal(t, []string{"A"}, orderIDs(result))
	assert.ElementsMatch(t, []string{"B", "C"}, result.Unscheduled)
}

func TestCompile_EdgeFromUnknownNodeDoesNotBlock(t *testing.T) {
	result := Compile(
		[]*models.WorkflowNode{node("A", "t")},
		[]*models.Edge{edge("ghost", "A")},
	)

	assert.Equal(t, []string{"A"}, orderIDs(result))
	assert.Empty(t, result.Unscheduled)
}

func TestIncomingEdges_PreservesOrder(t *testing.T) {
	edges := []*models.Edge{edge("B", "D"), edge("C", "D"), edge("A", "B")}

	incoming := IncomingEdges(edges)
	require.Len(t, incoming["D"], 2)
	assert.Equal(t, "B", incoming["D"][0].Source)
	assert.Equal(t, "C", incoming["D"][1].Source)
}
