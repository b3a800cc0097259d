package trigger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

func TestManualTrigger_MergesDefaultsUnderInput(t *testing.T) {
	node, err := NewManualTriggerNode("t1", map[string]any{
		"defaults": map[string]any{"source": "default", "env": "prod"},
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"source": "caller",
	})
	require.NoError(t, err)

	// Caller input wins on conflicts; defaults fill the gaps.
	assert.Equal(t, "caller", output["source"])
	assert.Equal(t, "prod", output["env"])
	assert.Equal(t, "manual", output["triggered_by"])
}

func TestWebhookTrigger_AnnotatesPath(t *testing.T) {
	node, err := NewWebhookTriggerNode("t1", map[string]any{"path": "/hooks/orders"})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, map[string]any{
		"order_id": "o-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "o-1", output["order_id"])
	assert.Equal(t, "webhook", output["triggered_by"])
	assert.Equal(t, "/hooks/orders", output["webhook_path"])
}

func TestScheduleTrigger_RequiresValidCron(t *testing.T) {
	_, err := NewScheduleTriggerNode("t1", map[string]any{})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))

	_, err = NewScheduleTriggerNode("t1", map[string]any{"cron": "not a cron"})
	require.Error(t, err)
	assert.True(t, protocol.IsConfigError(err))
}

func TestScheduleTrigger_AnnotatesNextRun(t *testing.T) {
	node, err := NewScheduleTriggerNode("t1", map[string]any{"cron": "*/5 * * * *"})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), models.ExecutionContext{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "schedule", output["triggered_by"])
	assert.Equal(t, "*/5 * * * *", output["cron"])
	assert.NotEmpty(t, output["next_run_at"])
}
