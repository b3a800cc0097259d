package httprequest

import (
	"context"

	"github.com/fluxohq/fluxo/pkg/protocol"
)

// HTTPRequestNodeFactory creates HTTPRequestNode instances.
type HTTPRequestNodeFactory struct{}

// Create creates a new HTTPRequestNode instance.
func (f *HTTPRequestNodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewHTTPRequestNode(id, config)
}

// ID returns the factory ID.
func (f *HTTPRequestNodeFactory) ID() string {
	return "http_request"
}

// Name returns the factory name.
func (f *HTTPRequestNodeFactory) Name() string {
	return "HTTP Request"
}

// Description returns the factory description.
func (f *HTTPRequestNodeFactory) Description() string {
	return "Calls an external HTTP endpoint with templated url, headers and body"
}

// Schema returns the JSON schema for HTTP request node configuration.
func (f *HTTPRequestNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Request URL. Supports template placeholders.",
			},
			"method": map[string]any{
				"type":    "string",
				"enum":    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
				"default": "GET",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers. Values support template placeholders.",
			},
			"body": map[string]any{
				"description": "Request body, a string or an object encoded as JSON.",
			},
			"timeout_seconds": map[string]any{
				"type":    "number",
				"default": 30,
			},
		},
		"required": []string{"url"},
	}
}

// NewHTTPRequestNodeFactory creates a new factory instance.
func NewHTTPRequestNodeFactory() protocol.NodeFactory {
	return &HTTPRequestNodeFactory{}
}
