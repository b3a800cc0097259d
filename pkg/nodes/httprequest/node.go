// Package httprequest provides HTTP request node implementation for
// workflow graph execution.
package httprequest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fluxohq/fluxo/pkg/models"
	"github.com/fluxohq/fluxo/pkg/protocol"
	"github.com/fluxohq/fluxo/pkg/template"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 10 << 20 // 10 MiB
)

// HTTPRequestNode implements the Node interface for external HTTP calls.
// Failures are returned as structured error data rather than failing the
// run, so conditional nodes can route around them.
type HTTPRequestNode struct {
	id       string
	url      string
	method   string
	headers  map[string]any
	body     any
	timeout  time.Duration
	client   *http.Client
	resolver *template.Resolver
}

// NewHTTPRequestNode creates a new HTTP request node.
func NewHTTPRequestNode(id string, config map[string]any) (*HTTPRequestNode, error) {
	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, protocol.NewConfigError(id, "url", "missing required field")
	}

	method := http.MethodGet
	if m, ok := config["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	headers, _ := config["headers"].(map[string]any)

	timeout := defaultTimeout
	if seconds, ok := asFloat(config["timeout_seconds"]); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	return &HTTPRequestNode{
		id:       id,
		url:      url,
		method:   method,
		headers:  headers,
		body:     config["body"],
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		resolver: template.NewResolver(),
	}, nil
}

// ID returns the node ID.
func (n *HTTPRequestNode) ID() string {
	return n.id
}

// Type returns the node type.
func (n *HTTPRequestNode) Type() string {
	return "http_request"
}

// Execute issues the request. Network errors and non-2xx responses come
// back as an error payload with success=false, not as a node failure.
func (n *HTTPRequestNode) Execute(ctx context.Context, ec models.ExecutionContext, input map[string]any) (map[string]any, error) {
	templateCtx := ec.TemplateContext(input)

	url, err := n.resolver.Resolve(n.url, templateCtx)
	if err != nil {
		return nil, fmt.Errorf("node %s: failed to resolve url template: %w", n.id, err)
	}

	bodyReader, contentType, err := n.buildBody(templateCtx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, n.method, url, bodyReader)
	if err != nil {
		return nil, protocol.NewConfigError(n.id, "url", err.Error())
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for key, value := range n.headers {
		resolved, err := n.resolver.Resolve(fmt.Sprintf("%v", value), templateCtx)
		if err != nil {
			return nil, fmt.Errorf("node %s: failed to resolve header '%s': %w", n.id, key, err)
		}

		req.Header.Set(key, resolved)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return errorPayload(0, fmt.Sprintf("request failed: %v", err)), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errorPayload(resp.StatusCode, fmt.Sprintf("failed to read response body: %v", err)), nil
	}

	body := parseBody(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload := errorPayload(resp.StatusCode, fmt.Sprintf("unexpected status %d", resp.StatusCode))
		payload["body"] = body

		return payload, nil
	}

	return map[string]any{
		"success":     true,
		"status_code": resp.StatusCode,
		"headers":     flattenHeaders(resp.Header),
		"body":        body,
	}, nil
}

func (n *HTTPRequestNode) buildBody(templateCtx map[string]any) (io.Reader, string, error) {
	switch body := n.body.(type) {
	case nil:
		return nil, "", nil
	case string:
		resolved, err := n.resolver.Resolve(body, templateCtx)
		if err != nil {
			return nil, "", fmt.Errorf("node %s: failed to resolve body template: %w", n.id, err)
		}

		return strings.NewReader(resolved), "text/plain", nil
	case map[string]any:
		resolved, err := n.resolver.ResolveConfig(body, templateCtx)
		if err != nil {
			return nil, "", fmt.Errorf("node %s: failed to resolve body template: %w", n.id, err)
		}

		encoded, err := json.Marshal(resolved)
		if err != nil {
			return nil, "", fmt.Errorf("node %s: failed to encode request body: %w", n.id, err)
		}

		return strings.NewReader(string(encoded)), "application/json", nil
	default:
		return nil, "", protocol.NewConfigError(n.id, "body", "must be a string or an object")
	}
}

func parseBody(raw []byte) any {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		return decoded
	}

	return string(raw)
}

func errorPayload(statusCode int, message string) map[string]any {
	return map[string]any{
		"success":     false,
		"status_code": statusCode,
		"error":       message,
	}
}

func flattenHeaders(headers http.Header) map[string]any {
	flat := make(map[string]any, len(headers))
	for key, values := range headers {
		flat[key] = strings.Join(values, ", ")
	}

	return flat
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}
