// Package transform provides data transformation node implementation for
// workflow graph execution.
package transform

import (
	"context"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/fluxohq/fluxo/pkg/template"
)

// TransformNode implements the Node interface for data transformation. The
// expression is a jq program evaluated against the node's resolved input;
// template placeholders in the expression are resolved first.
type TransformNode struct {
	id       string
	query    *gojq.Query
	raw      string
	resolver *template.Resolver
}

// NewTransformNode creates a new data transformation node.
func NewTransformNode(id string, config map[string]any) (*TransformNode, error) {
	expression, ok := config["expression"].(string)
	if !ok || expression == "" {
		return nil, protocol.NewConfigError(id, "expression", "missing required field")
	}

	node := &TransformNode{
		id:       id,
		raw:      expression,
		resolver: template.NewResolver(),
	}

	// Expressions without placeholders are parsed once at construction.
	if !template.HasPlaceholders(expression) {
		query, err := gojq.Parse(expression)
		if err != nil {
			return nil, protocol.NewConfigError(id, "expression", fmt.Sprintf("invalid jq expression: %v", err))
		}

		node.query = query
	}

	return node, nil
}

// ID returns the node ID.
func (n *TransformNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *TransformNode) Type() string {
	return "transform"
}

// Execute runs the jq program against the resolved input.
func (n *TransformNode) Execute(ctx context.Context, ec models.ExecutionContext, input map[string]any) (map[string]any, error) {
	query := n.query

	if query == nil {
		resolved, err := n.resolver.Resolve(n.raw, ec.TemplateContext(input))
		if err != nil {
			return nil, fmt.Errorf("node %s: failed to resolve expression template: %w", n.id, err)
		}

		query, err = gojq.Parse(resolved)
		if err != nil {
			return nil, protocol.NewConfigError(n.id, "expression", fmt.Sprintf("invalid jq expression: %v", err))
		}
	}

	iter := query.RunWithContext(ctx, normalize(input))

	var results []any

	for {
		value, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := value.(error); isErr {
			return nil, fmt.Errorf("node %s: transformation failed: %w", n.id, err)
		}

		// gojq yields int for integer arithmetic; downstream nodes and
		// templates expect JSON-typed values, same as the input side.
		results = append(results, normalizeValue(value))
	}

	return wrapResult(results), nil
}

// wrapResult shapes jq output as a node output map. A single object result
// is passed through as-is so downstream nodes see its fields directly.
func wrapResult(results []any) map[string]any {
	switch len(results) {
	case 0:
		return map[string]any{"result": nil}
	case 1:
		if m, ok := results[0].(map[string]any); ok {
			return m
		}

		return map[string]any{"result": results[0]}
	default:
		return map[string]any{"result": results}
	}
}

// normalize makes the input acceptable to gojq, which only takes the JSON
// type universe (map[string]any, []any, string, float64, bool, nil).
func normalize(input map[string]any) any {
	return normalizeValue(input)
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = normalizeValue(val)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeValue(val)
		}

		return out
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case nil, bool, string, float64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
