// Package script provides sandboxed user-code execution for workflow graph
// execution. Scripts are expr-lang expressions evaluated against a
// deep-copied view of the run's data: no file system, process, or network
// access, and mutations never escape the sandbox.
package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-json"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

const (
	// DefaultTimeout bounds scripts that do not ask for one.
	DefaultTimeout = 5 * time.Second
	// MaxTimeout is the hard ceiling; larger requested timeouts are clamped.
	MaxTimeout = 30 * time.Second
)

// ScriptNode implements the Node interface for sandboxed script execution.
type ScriptNode struct {
	id      string
	program *vm.Program
	timeout time.Duration
}

// NewScriptNode creates a new script node.
func NewScriptNode(id string, config map[string]any) (*ScriptNode, error) {
	code, ok := config["code"].(string)
	if !ok || code == "" {
		return nil, protocol.NewConfigError(id, "code", "missing required field")
	}

	program, err := expr.Compile(code, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, &protocol.SandboxViolationError{
			NodeID: id,
			Detail: fmt.Sprintf("script does not compile: %v", err),
		}
	}

	timeout := DefaultTimeout

	if seconds, ok := asFloat(config["timeout_seconds"]); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	return &ScriptNode{
		id:      id,
		program: program,
		timeout: timeout,
	}, nil
}

// ID returns the node ID.
func (n *ScriptNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *ScriptNode) Type() string {
	return "script"
}

// Execute runs the script against a deep copy of the template context. The
// copy is the sandbox boundary: whatever the script does to its view of the
// data is discarded.
func (n *ScriptNode) Execute(ctx context.Context, ec models.ExecutionContext, input map[string]any) (map[string]any, error) {
	env, err := deepCopy(ec.TemplateContext(input))
	if err != nil {
		return nil, fmt.Errorf("node %s: failed to snapshot script environment: %w", n.id, err)
	}

	type runResult struct {
		value any
		err   error
	}

	done := make(chan runResult, 1)

	go func() {
		value, runErr := expr.Run(n.program, env)
		done <- runResult{value: value, err: runErr}
	}()

	timer := time.NewTimer(n.timeout)
	defer timer.Stop()

	select {
	case result := <-done:
		if result.err != nil {
			return nil, n.classify(result.err)
		}

		return wrapResult(result.value), nil
	case <-timer.C:
		return nil, &protocol.SandboxTimeoutError{NodeID: n.id, Timeout: n.timeout.String()}
	case <-ctx.Done():
		return nil, fmt.Errorf("node %s: script aborted: %w", n.id, ctx.Err())
	}
}

// classify separates sandbox violations (reaching for something the
// environment does not provide) from ordinary script errors.
func (n *ScriptNode) classify(err error) error {
	message := err.Error()

	if strings.Contains(message, "cannot fetch") ||
		strings.Contains(message, "cannot get") ||
		strings.Contains(message, "unknown name") ||
		strings.Contains(message, "cannot call") {
		return &protocol.SandboxViolationError{NodeID: n.id, Detail: message}
	}

	return fmt.Errorf("node %s: script failed: %w", n.id, err)
}

func wrapResult(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}

	return map[string]any{"result": value}
}

// deepCopy snapshots the environment through a serialization round trip, so
// the script only ever sees JSON-typed data it owns.
func deepCopy(source map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(source)
	if err != nil {
		return nil, err
	}

	var copied map[string]any
	if err := json.Unmarshal(encoded, &copied); err != nil {
		return nil, err
	}

	return copied, nil
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}
