package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyTool records whether Execute ran, so tests can prove validation happens
// before any side effect.
type spyTool struct {
	name     string
	schema   Schema
	executed bool
	lastArgs map[string]any
	output   *Output
	err      error
}

func (s *spyTool) Name() string        { return s.name }
func (s *spyTool) Description() string { return "spy" }
func (s *spyTool) Schema() Schema      { return s.schema }
func (s *spyTool) Execute(_ context.Context, args map[string]any) (*Output, error) {
	s.executed = true
	s.lastArgs = args
	if s.output == nil && s.err == nil {
		return JSONOutput(map[string]any{"ok": true}), nil
	}
	return s.output, s.err
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	spy := &spyTool{name: "known"}
	require.NoError(t, r.Register(spy))

	_, err := r.Execute(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
	assert.False(t, spy.executed)
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&spyTool{name: "dup"}))
	assert.Error(t, r.Register(&spyTool{name: "dup"}))
}

func TestRegistryValidationRunsBeforeHandler(t *testing.T) {
	r := NewRegistry()
	spy := &spyTool{
		name: "needs_url",
		schema: ObjectSchema(map[string]any{
			"url": map[string]any{"type": "string"},
		}, []string{"url"}),
	}
	require.NoError(t, r.Register(spy))

	_, err := r.Execute(context.Background(), "needs_url", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field: url")
	assert.False(t, spy.executed, "handler must not run on validation failure")
}

func TestRegistryTypeMismatchRejected(t *testing.T) {
	r := NewRegistry()
	spy := &spyTool{
		name: "typed",
		schema: ObjectSchema(map[string]any{
			"limit": map[string]any{"type": "number"},
		}, nil),
	}
	require.NoError(t, r.Register(spy))

	_, err := r.Execute(context.Background(), "typed", map[string]any{"limit": "twenty"})
	require.Error(t, err)
	assert.False(t, spy.executed)
}

func TestRegistryAppliesDefaults(t *testing.T) {
	r := NewRegistry()
	spy := &spyTool{
		name: "defaulted",
		schema: ObjectSchema(map[string]any{
			"tone": map[string]any{"type": "string", "default": "professional"},
		}, nil),
	}
	require.NoError(t, r.Register(spy))

	_, err := r.Execute(context.Background(), "defaulted", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "professional", spy.lastArgs["tone"])
}

func TestRegistryListOrderIsStable(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(&spyTool{name: "b"}, &spyTool{name: "a"}, &spyTool{name: "c"})

	var names []string
	for _, tool := range r.List() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestDecodeArgs(t *testing.T) {
	var input struct {
		URL   string  `json:"url"`
		Limit float64 `json:"limit"`
	}
	err := DecodeArgs(map[string]any{"url": "https://x.com", "limit": 5.0}, &input)
	require.NoError(t, err)
	assert.Equal(t, "https://x.com", input.URL)
	assert.Equal(t, 5.0, input.Limit)
}

func TestApplyDefaultsDoesNotOverride(t *testing.T) {
	schema := ObjectSchema(map[string]any{
		"tone": map[string]any{"type": "string", "default": "professional"},
	}, nil)
	out := ApplyDefaults(map[string]any{"tone": "casual"}, schema)
	assert.Equal(t, "casual", out["tone"])
}
