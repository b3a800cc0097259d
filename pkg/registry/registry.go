// Package registry provides instance-scoped registration of node types.
// Each engine instance constructs its own registry, so tests and
// multi-tenant hosts never share state through package globals.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger        *slog.Logger
	nodeFactories map[string]protocol.NodeFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:        logger,
		nodeFactories: make(map[string]protocol.NodeFactory),
	}
}

// RegisterNode registers a node factory under its type id. Adding a new
// connector means registering a new factory, not touching the coordinator.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.nodeFactories[factory.ID()] = factory
}

// CreateNode validates the configuration against the factory's JSON schema
// and instantiates the node.
func (r *Registry) CreateNode(ctx context.Context, nodeType, id string, config map[string]any) (protocol.Node, error) {
	factory, ok := r.nodeFactories[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type '%s' not registered", nodeType)
	}

	if err := r.validateConfig(factory, id, config); err != nil {
		return nil, err
	}

	return factory.Create(ctx, id, config)
}

// IsRegistered reports whether a node type has a factory.
func (r *Registry) IsRegistered(nodeType string) bool {
	_, ok := r.nodeFactories[nodeType]

	return ok
}

// NodeTypes returns all registered node type ids.
func (r *Registry) NodeTypes() []string {
	types := make([]string, 0, len(r.nodeFactories))
	for nodeType := range r.nodeFactories {
		types = append(types, nodeType)
	}

	return types
}

// Factory returns the registered factory for a node type.
func (r *Registry) Factory(nodeType string) (protocol.NodeFactory, bool) {
	factory, ok := r.nodeFactories[nodeType]

	return factory, ok
}

func (r *Registry) validateConfig(factory protocol.NodeFactory, id string, config map[string]any) error {
	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(config))
	if err != nil {
		// A broken schema is a factory bug, not a user error; log and let
		// the node's own constructor validation decide.
		r.logger.Warn("Failed to validate node config against schema",
			"node_type", factory.ID(), "node_id", id, "error", err)

		return nil
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}

	return protocol.NewConfigError(id, factory.ID(), strings.Join(details, "; "))
}
