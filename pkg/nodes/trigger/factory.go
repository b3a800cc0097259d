package trigger

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// ManualTriggerNodeFactory creates ManualTriggerNode instances.
type ManualTriggerNodeFactory struct{}

func (f *ManualTriggerNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewManualTriggerNode(id, config)
}

func (f *ManualTriggerNodeFactory) ID() string   { return "trigger:manual" }
func (f *ManualTriggerNodeFactory) Name() string { return "Manual Trigger" }

func (f *ManualTriggerNodeFactory) Description() string {
	return "Starts a run from a direct API call"
}

func (f *ManualTriggerNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"defaults": map[string]any{
				"type":        "object",
				"description": "Default values merged under the caller's input.",
			},
		},
	}
}

// NewManualTriggerNodeFactory creates a new factory instance.
func NewManualTriggerNodeFactory() protocol.NodeFactory {
	return &ManualTriggerNodeFactory{}
}

// WebhookTriggerNodeFactory creates WebhookTriggerNode instances.
type WebhookTriggerNodeFactory struct{}

func (f *WebhookTriggerNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewWebhookTriggerNode(id, config)
}

func (f *WebhookTriggerNodeFactory) ID() string   { return "trigger:webhook" }
func (f *WebhookTriggerNodeFactory) Name() string { return "Webhook Trigger" }

func (f *WebhookTriggerNodeFactory) Description() string {
	return "Starts a run from an inbound webhook delivery"
}

func (f *WebhookTriggerNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Webhook path the delivery arrived on.",
			},
			"defaults": map[string]any{
				"type": "object",
			},
		},
	}
}

// NewWebhookTriggerNodeFactory creates a new factory instance.
func NewWebhookTriggerNodeFactory() protocol.NodeFactory {
	return &WebhookTriggerNodeFactory{}
}

// ScheduleTriggerNodeFactory creates ScheduleTriggerNode instances.
type ScheduleTriggerNodeFactory struct{}

func (f *ScheduleTriggerNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewScheduleTriggerNode(id, config)
}

func (f *ScheduleTriggerNodeFactory) ID() string   { return "trigger:schedule" }
func (f *ScheduleTriggerNodeFactory) Name() string { return "Schedule Trigger" }

func (f *ScheduleTriggerNodeFactory) Description() string {
	return "Starts a run on a cron schedule"
}

func (f *ScheduleTriggerNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cron": map[string]any{
				"type":        "string",
				"description": "Standard five-field cron expression.",
				"examples":    []string{"*/5 * * * *", "0 9 * * MON-FRI"},
			},
			"defaults": map[string]any{
				"type": "object",
			},
		},
		"required": []string{"cron"},
	}
}

// NewScheduleTriggerNodeFactory creates a new factory instance.
func NewScheduleTriggerNodeFactory() protocol.NodeFactory {
	return &ScheduleTriggerNodeFactory{}
}
