package log

import (
	"context"
	"log/slog"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// LogNodeFactory creates LogNode instances bound to the engine's logger.
type LogNodeFactory struct {
	logger *slog.Logger
}

// Create creates a new LogNode instance.
func (f *LogNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewLogNode(id, config, f.logger)
}

// ID returns the factory ID.
func (f *LogNodeFactory) ID() string {
	return "log"
}

// Name returns the factory name.
func (f *LogNodeFactory) Name() string {
	return "Log"
}

// Description returns the factory description.
func (f *LogNodeFactory) Description() string {
	return "Logs a templated message and passes the input through"
}

// Schema returns the JSON schema for log node configuration.
func (f *LogNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message to log. Supports template placeholders.",
			},
			"level": map[string]any{
				"type":    "string",
				"enum":    []string{"debug", "info", "warn", "error"},
				"default": "info",
			},
		},
		"required": []string{"message"},
	}
}

// NewLogNodeFactory creates a new factory instance.
func NewLogNodeFactory(logger *slog.Logger) protocol.NodeFactory {
	return &LogNodeFactory{logger: logger}
}
