// Package trigger provides the workflow entry-point nodes. Triggers perform
// no computation: they merge their configured metadata with the run's
// initial input and pass the result downstream.
package trigger

import (
	"context"
	"fmt"
	"time"

	"dario.cat/mergo"
	"github.com/robfig/cron/v3"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
)

// passThrough merges trigger metadata over the run input. The input wins on
// key conflicts so callers can override configured defaults.
func passThrough(input, metadata map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(input)+len(metadata))

	if err := mergo.Merge(&merged, metadata); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&merged, input, mergo.WithOverride); err != nil {
		return nil, err
	}

	return merged, nil
}

// ManualTriggerNode starts a run from a direct API call.
type ManualTriggerNode struct {
	id       string
	metadata map[string]any
}

// NewManualTriggerNode creates a new manual trigger node.
func NewManualTriggerNode(id string, config map[string]any) (*ManualTriggerNode, error) {
	metadata, _ := config["defaults"].(map[string]any)

	return &ManualTriggerNode{id: id, metadata: metadata}, nil
}

// ID returns the node ID.
func (n *ManualTriggerNode) ID() string { return n.id }

// Type returns the node type.
func (n *ManualTriggerNode) Type() string { return "trigger:manual" }

// Execute merges configured defaults with the caller's input.
func (n *ManualTriggerNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	return passThrough(input, withTriggerMetadata(n.metadata, "manual"))
}

// WebhookTriggerNode starts a run from an inbound webhook delivery.
type WebhookTriggerNode struct {
	id       string
	path     string
	metadata map[string]any
}

// NewWebhookTriggerNode creates a new webhook trigger node.
func NewWebhookTriggerNode(id string, config map[string]any) (*WebhookTriggerNode, error) {
	path, _ := config["path"].(string)
	metadata, _ := config["defaults"].(map[string]any)

	return &WebhookTriggerNode{id: id, path: path, metadata: metadata}, nil
}

// ID returns the node ID.
func (n *WebhookTriggerNode) ID() string { return n.id }

// Type returns the node type.
func (n *WebhookTriggerNode) Type() string { return "trigger:webhook" }

// Execute merges webhook metadata with the delivered payload.
func (n *WebhookTriggerNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	metadata := withTriggerMetadata(n.metadata, "webhook")
	if n.path != "" {
		metadata["webhook_path"] = n.path
	}

	return passThrough(input, metadata)
}

// ScheduleTriggerNode starts a run on a cron schedule. The engine does not
// run the scheduler itself; the node validates the expression and annotates
// the run with the schedule's next fire time.
type ScheduleTriggerNode struct {
	id       string
	cronExpr string
	schedule cron.Schedule
	metadata map[string]any
}

// NewScheduleTriggerNode creates a new schedule trigger node.
func NewScheduleTriggerNode(id string, config map[string]any) (*ScheduleTriggerNode, error) {
	cronExpr, ok := config["cron"].(string)
	if !ok || cronExpr == "" {
		return nil, protocol.NewConfigError(id, "cron", "missing required field")
	}

	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, protocol.NewConfigError(id, "cron", fmt.Sprintf("invalid cron expression: %v", err))
	}

	metadata, _ := config["defaults"].(map[string]any)

	return &ScheduleTriggerNode{
		id:       id,
		cronExpr: cronExpr,
		schedule: schedule,
		metadata: metadata,
	}, nil
}

// ID returns the node ID.
func (n *ScheduleTriggerNode) ID() string { return n.id }

// Type returns the node type.
func (n *ScheduleTriggerNode) Type() string { return "trigger:schedule" }

// Execute annotates the run with cron metadata and passes the input through.
func (n *ScheduleTriggerNode) Execute(_ context.Context, _ models.ExecutionContext, input map[string]any) (map[string]any, error) {
	metadata := withTriggerMetadata(n.metadata, "schedule")
	metadata["cron"] = n.cronExpr
	metadata["next_run_at"] = n.schedule.Next(time.Now().UTC()).Format(time.RFC3339)

	return passThrough(input, metadata)
}

func withTriggerMetadata(defaults map[string]any, triggeredBy string) map[string]any {
	metadata := make(map[string]any, len(defaults)+1)
	for key, value := range defaults {
		metadata[key] = value
	}

	metadata["triggered_by"] = triggeredBy

	return metadata
}
