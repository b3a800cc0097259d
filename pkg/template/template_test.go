package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DirectKey(t *testing.T) {
	resolver := NewResolver()

	result, err := resolver.Resolve("{{a}}", map[string]any{"a": float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "1", result)
}

func TestResolve_MissingKeyPassesThrough(t *testing.T) {
	resolver := NewResolver()

	result, err := resolver.Resolve("{{missing}}", map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{{missing}}", result)
}

func TestResolve_StrictModeRaises(t *testing.T) {
	resolver := NewResolver(WithStrict())

	_, err := resolver.Resolve("{{missing}}", map[string]any{"a": 1})
	require.Error(t, err)

	var unresolved *UnresolvedError

	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "missing", unresolved.Expression)
}

func TestResolve_InputAliases(t *testing.T) {
	context := map[string]any{
		"input": map[string]any{"name": "ada"},
	}

	resolver := NewResolver()

	for _, tmpl := range []string{"{{input.name}}", "{{json.name}}"} {
		result, err := resolver.Resolve(tmpl, context)
		require.NoError(t, err)
		assert.Equal(t, "ada", result, tmpl)
	}
}

func TestResolve_BareInputAliasRendersWholeInput(t *testing.T) {
	context := map[string]any{
		"input": map[string]any{"x": float64(1)},
	}

	resolver := NewResolver()

	result, err := resolver.Resolve("{{input}}", context)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, result)
}

func TestResolve_FlattenedKeys(t *testing.T) {
	context := map[string]any{
		"user": map[string]any{"email": "a@b.c"},
	}

	resolver := NewResolver()

	for _, tmpl := range []string{"{{user_email}}", "{{user.email}}"} {
		result, err := resolver.Resolve(tmpl, context)
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", result, tmpl)
	}
}

func TestResolve_DeepDottedPath(t *testing.T) {
	context := map[string]any{
		"trigger": map[string]any{
			"payload": map[string]any{
				"items": []any{
					map[string]any{"sku": "A-1"},
				},
			},
		},
	}

	resolver := NewResolver()

	result, err := resolver.Resolve("{{trigger.payload.items.0.sku}}", context)
	require.NoError(t, err)
	assert.Equal(t, "A-1", result)
}

func TestResolve_MultiplePlaceholders(t *testing.T) {
	context := map[string]any{"a": "x", "b": "y"}

	resolver := NewResolver()

	result, err := resolver.Resolve("{{a}}-{{b}}-{{c}}", context)
	require.NoError(t, err)
	assert.Equal(t, "x-y-{{c}}", result)
}

func TestResolve_NullValueDoesNotResolve(t *testing.T) {
	resolver := NewResolver()

	result, err := resolver.Resolve("{{a}}", map[string]any{"a": nil})
	require.NoError(t, err)
	assert.Equal(t, "{{a}}", result)
}

func TestResolveConfig_ResolvesNestedStrings(t *testing.T) {
	context := map[string]any{"host": "api.example.com"}

	resolver := NewResolver()

	resolved, err := resolver.ResolveConfig(map[string]any{
		"url": "https://{{host}}/v1",
		"headers": map[string]any{
			"X-Host": "{{host}}",
		},
		"timeout": float64(30),
	}, context)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", resolved["url"])
	assert.Equal(t, float64(30), resolved["timeout"])

	headers, ok := resolved["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "api.example.com", headers["X-Host"])
}

func TestSuggestions_RankClosestFields(t *testing.T) {
	resolver := NewResolver(WithStrict())

	_, err := resolver.Resolve("{{user_emial}}", map[string]any{
		"user": map[string]any{"email": "a@b.c", "name": "ada"},
	})
	require.Error(t, err)

	var unresolved *UnresolvedError

	require.True(t, errors.As(err, &unresolved))
	assert.Contains(t, unresolved.Suggestions, "user_email")
}

func TestSuggestions_Disabled(t *testing.T) {
	resolver := NewResolver(WithStrict(), WithSuggestions(false))

	_, err := resolver.Resolve("{{user_emial}}", map[string]any{
		"user": map[string]any{"email": "a@b.c"},
	})
	require.Error(t, err)

	var unresolved *UnresolvedError

	require.True(t, errors.As(err, &unresolved))
	assert.Empty(t, unresolved.Suggestions)
}

func TestClosestFields_ExactBeatsPrefix(t *testing.T) {
	fields := closestFields("user", []string{"user", "user_email", "username"})
	require.NotEmpty(t, fields)
	assert.Equal(t, "user", fields[0])
}
