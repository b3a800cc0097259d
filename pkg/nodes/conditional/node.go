// Package conditional provides conditional branching node implementation
// for workflow graph execution.
package conditional

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

// ConditionalNode implements the Node interface for conditional branching.
// It evaluates an expression against the run's data and passes the input
// through annotated with the verdict, so downstream nodes can route on it.
type ConditionalNode struct {
	id      string
	raw     string
	program *vm.Program
}

// NewConditionalNode creates a new conditional branching node.
func NewConditionalNode(id string, config map[string]any) (*ConditionalNode, error) {
	condition, ok := config["condition"].(string)
	if !ok || condition == "" {
		return nil, protocol.NewConfigError(id, "condition", "missing required field")
	}

	program, err := expr.Compile(condition, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, protocol.NewConfigError(id, "condition", fmt.Sprintf("invalid expression: %v", err))
	}

	return &ConditionalNode{
		id:      id,
		raw:     condition,
		program: program,
	}, nil
}

// ID returns the node ID.
func (n *ConditionalNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *ConditionalNode) Type() string {
	return "conditional"
}

// Execute evaluates the condition and annotates the input with the result.
func (n *ConditionalNode) Execute(_ context.Context, ec models.ExecutionContext, input map[string]any) (map[string]any, error) {
	value, err := expr.Run(n.program, ec.TemplateContext(input))
	if err != nil {
		return nil, fmt.Errorf("node %s: condition evaluation failed: %w", n.id, err)
	}

	verdict := truthy(value)

	output := make(map[string]any, len(input)+2)
	for key, val := range input {
		output[key] = val
	}

	output["condition_result"] = verdict
	output["evaluated_value"] = value

	return output, nil
}

// truthy converts the expression result to a branching verdict.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case nil:
		return false
	default:
		return false
	}
}
