package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

type fakeNode struct {
	id string
}

func (n *fakeNode) ID() string   { return n.id }
func (n *fakeNode) Type() string { return "fake" }

func (n *fakeNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	return input, nil
}

type fakeFactory struct {
	schema map[string]any
}

func (f *fakeFactory) Create(_ context.Context, id string, _ map[string]any) (protocol.Node, error) {
	return &fakeNode{id: id}, nil
}

func (f *fakeFactory) ID() string             { return "fake" }
func (f *fakeFactory) Name() string           { return "Fake" }
func (f *fakeFactory) Description() string    { return "Fake node for tests" }
func (f *fakeFactory) Schema() map[string]any { return f.schema }

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.DiscardHandler))
}

func TestRegisterAndCreateNode(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterNode(&fakeFactory{})

	assert.True(t, reg.IsRegistered("fake"))
	assert.False(t, reg.IsRegistered("unknown"))

	node, err := reg.CreateNode(context.Background(), "fake", "node-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "node-1", node.ID())
}

func TestCreateNodeUnregisteredType(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.CreateNode(context.Background(), "missing", "node-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestCreateNodeValidatesSchema(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterNode(&fakeFactory{schema: map[string]any{
		"type":     "object",
		"required": []string{"url"},
		"properties": map[string]any{
			"url": map[string]any{"type": "string"},
		},
	}})

	_, err := reg.CreateNode(context.Background(), "fake", "node-1", map[string]any{})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))

	node, err := reg.CreateNode(context.Background(), "fake", "node-1", map[string]any{"url": "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "node-1", node.ID())
}

func TestNodeTypes(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterNode(&fakeFactory{})

	assert.Contains(t, reg.NodeTypes(), "fake")

	factory, ok := reg.Factory("fake")
	require.True(t, ok)
	assert.Equal(t, "Fake", factory.Name())
}

func TestRegisterDefaultNodes(t *testing.T) {
	reg := newTestRegistry()
	reg.RegisterDefaultNodes()

	for _, nodeType := range []string{
		"transform", "http_request", "script", "conditional", "form",
		"log", "ai", "error_trigger",
		"trigger:manual", "trigger:webhook", "trigger:schedule",
	} {
		assert.True(t, reg.IsRegistered(nodeType), "expected %s to be registered", nodeType)
	}
}
