// Package log provides logging node implementation for workflow graph
// execution.
package log

import (
	"context"
	"log/slog"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/fluxohq/fluxo/pkg/template"
)

// LogNode implements the Node interface for logging messages. It passes its
// input through unchanged so it can be dropped anywhere in a graph.
type LogNode struct {
	id       string
	message  string
	level    string
	logger   *slog.Logger
	resolver *template.Resolver
}

// NewLogNode creates a new logging node.
func NewLogNode(id string, config map[string]any, logger *slog.Logger) (*LogNode, error) {
	message, ok := config["message"].(string)
	if !ok {
		return nil, protocol.NewConfigError(id, "message", "missing required field")
	}

	level := "info"
	if lvl, ok := config["level"].(string); ok && lvl != "" {
		level = lvl
	}

	return &LogNode{
		id:       id,
		message:  message,
		level:    level,
		logger:   logger,
		resolver: template.NewResolver(),
	}, nil
}

// ID returns the node ID.
func (n *LogNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *LogNode) Type() string {
	return "log"
}

// Execute logs the templated message and passes the input through.
func (n *LogNode) Execute(_ context.Context, ec models.ExecutionContext, input map[string]any) (map[string]any, error) {
	message, err := n.resolver.Resolve(n.message, ec.TemplateContext(input))
	if err != nil {
		return nil, err
	}

	logger := n.logger.With("node_id", n.id, "execution_id", ec.ID)

	switch n.level {
	case "debug":
		logger.Debug(message)
	case "warn":
		logger.Warn(message)
	case "error":
		logger.Error(message)
	default:
		logger.Info(message)
	}

	return input, nil
}
