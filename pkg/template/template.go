// Package template resolves {{expression}} placeholders in node
// configuration against the current run's data. Expressions are tried as a
// current-input path, then as a flattened-context key, then as a dotted path
// over the full context. Unresolved placeholders are left untouched unless
// strict mode is enabled, so templates degrade gracefully at runtime.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// The current-input alias comes in two dialects; both root at the same data.
var inputAliases = []string{"input", "json"}

// HasPlaceholders reports whether the string contains any {{expression}}
// placeholder.
func HasPlaceholders(s string) bool {
	return placeholderPattern.MatchString(s)
}

// UnresolvedError reports an expression that resolved to nothing in strict
// mode, with the closest known field names to aid debugging.
type UnresolvedError struct {
	Expression  string
	Suggestions []string
}

func (e *UnresolvedError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("template expression '%s' did not resolve to a value", e.Expression)
	}

	return fmt.Sprintf("template expression '%s' did not resolve to a value (closest fields: %s)",
		e.Expression, strings.Join(e.Suggestions, ", "))
}

// Resolver substitutes placeholders in templates. The zero value is usable:
// non-strict, with suggestions enabled.
type Resolver struct {
	strict      bool
	suggestions bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStrict makes unresolved expressions an error instead of passing
// through unchanged.
func WithStrict() Option {
	return func(r *Resolver) { r.strict = true }
}

// WithSuggestions toggles closest-field suggestions on unresolved
// expressions. Disabled in production to avoid scanning the context.
func WithSuggestions(enabled bool) Option {
	return func(r *Resolver) { r.suggestions = enabled }
}

// NewResolver creates a resolver. Suggestions default to on.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{suggestions: true}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve substitutes every {{expression}} occurrence in the template. The
// context is typically built by ExecutionContext.TemplateContext.
func (r *Resolver) Resolve(templateStr string, context map[string]any) (string, error) {
	var firstErr error

	result := placeholderPattern.ReplaceAllStringFunc(templateStr, func(match string) string {
		expression := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])

		value, ok := r.lookup(expression, context)
		if !ok {
			if r.strict && firstErr == nil {
				firstErr = &UnresolvedError{
					Expression:  expression,
					Suggestions: r.suggest(expression, context),
				}
			}

			return match
		}

		return formatValue(value)
	})

	if firstErr != nil {
		return "", firstErr
	}

	return result, nil
}

// ResolveConfig resolves every string value in a configuration map,
// returning a copy. Nested maps and string slices are resolved recursively.
func (r *Resolver) ResolveConfig(config map[string]any, context map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(config))

	for key, value := range config {
		out, err := r.resolveValue(value, context)
		if err != nil {
			return nil, fmt.Errorf("config field '%s': %w", key, err)
		}

		resolved[key] = out
	}

	return resolved, nil
}

func (r *Resolver) resolveValue(value any, context map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return r.Resolve(v, context)
	case map[string]any:
		return r.ResolveConfig(v, context)
	case []any:
		out := make([]any, len(v))

		for i, item := range v {
			resolved, err := r.resolveValue(item, context)
			if err != nil {
				return nil, err
			}

			out[i] = resolved
		}

		return out, nil
	default:
		return value, nil
	}
}

func (r *Resolver) lookup(expression string, context map[string]any) (any, bool) {
	// (a) dotted path rooted at the current-input alias.
	for _, alias := range inputAliases {
		if expression == alias {
			if value, ok := context["input"]; ok && value != nil {
				return value, true
			}
		}

		if rest, ok := strings.CutPrefix(expression, alias+"."); ok {
			if input, exists := context["input"]; exists {
				if value, found := traversePath(input, rest); found {
					return value, true
				}
			}
		}
	}

	// (b) direct key in the flattened context.
	if value, ok := flatten(context)[expression]; ok && value != nil {
		return value, true
	}

	// (c) general dotted-path traversal over the full context.
	if value, ok := traversePath(context, expression); ok {
		return value, true
	}

	return nil, false
}

func (r *Resolver) suggest(expression string, context map[string]any) []string {
	if !r.suggestions {
		return nil
	}

	known := make([]string, 0, len(context)*2)
	for key := range flatten(context) {
		known = append(known, key)
	}

	return closestFields(expression, known)
}

// flatten exposes nested objects one level deep under both parent_child and
// parent.child keys, alongside the top-level keys.
func flatten(context map[string]any) map[string]any {
	flat := make(map[string]any, len(context)*2)

	for key, value := range context {
		flat[key] = value

		nested, ok := value.(map[string]any)
		if !ok {
			continue
		}

		for childKey, childValue := range nested {
			flat[key+"_"+childKey] = childValue
			flat[key+"."+childKey] = childValue
		}
	}

	return flat
}

// traversePath walks a dotted path through nested maps and slices. Numeric
// segments index into slices.
func traversePath(root any, path string) (any, bool) {
	current := root

	for segment := range strings.SplitSeq(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}

			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}

			current = node[index]
		default:
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}

	return current, true
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
