package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

func TestNewLogNode_RequiresMessage(t *testing.T) {
	_, err := NewLogNode("l1", map[string]any{}, slog.Default())
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestExecute_LogsTemplatedMessageAndPassesInputThrough(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))

	node, err := NewLogNode("l1", map[string]any{
		"message": "processed order {{order_id}}",
		"level":   "warn",
	}, logger)
	require.NoError(t, err)

	input := map[string]any{"order_id": "o-42"}

	output, err := node.Execute(context.Background(), models.ExecutionContext{ID: "exec-1"}, input)
	require.NoError(t, err)

	assert.Equal(t, input, output)
	assert.Contains(t, buf.String(), "processed order o-42")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "exec-1")
}
