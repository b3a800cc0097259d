package registry

import (
	"github.com/fluxohq/fluxo/pkg/nodes/ai"
	"github.com/fluxohq/fluxo/pkg/nodes/conditional"
	"github.com/fluxohq/fluxo/pkg/nodes/errortrigger"
	"github.com/fluxohq/fluxo/pkg/nodes/form"
	"github.com/fluxohq/fluxo/pkg/nodes/httprequest"
	lognode "github.com/fluxohq/fluxo/pkg/nodes/log"
	"github.com/fluxohq/fluxo/pkg/nodes/script"
	"github.com/fluxohq/fluxo/pkg/nodes/transform"
	"github.com/fluxohq/fluxo/pkg/nodes/trigger"
)

// RegisterDefaultNodes registers all built-in node factories.
func (r *Registry) RegisterDefaultNodes() {
	r.RegisterNode(transform.NewTransformNodeFactory())
	r.RegisterNode(httprequest.NewHTTPRequestNodeFactory())
	r.RegisterNode(script.NewScriptNodeFactory())
	r.RegisterNode(conditional.NewConditionalNodeFactory())
	r.RegisterNode(form.NewFormNodeFactory())
	r.RegisterNode(errortrigger.NewErrorTriggerNodeFactory())
	r.RegisterNode(lognode.NewLogNodeFactory(r.logger))
	r.RegisterNode(ai.NewCompletionNodeFactory())

	r.RegisterNode(trigger.NewManualTriggerNodeFactory())
	r.RegisterNode(trigger.NewWebhookTriggerNodeFactory())
	r.RegisterNode(trigger.NewScheduleTriggerNodeFactory())
}
