package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

func newToolRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	err := r.RegisterTool(protocol.Tool{
		Name: "echo",
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: map[string]protocol.ToolProperty{"text": {Type: "string"}},
			Required:   []string{"text"},
		},
	}, func(args map[string]any) (registry.HandlerReturn, error) {
		return registry.HandlerReturn{Text: args["text"].(string)}, nil
	})
	require.NoError(t, err, "setup")

	err = r.RegisterTool(protocol.Tool{Name: "boom"}, func(args map[string]any) (registry.HandlerReturn, error) {
		return registry.HandlerReturn{}, errors.New("kaboom")
	})
	require.NoError(t, err, "setup")
	return r
}

func TestToolEngineCallSuccess(t *testing.T) {
	e := NewToolEngine(newToolRegistry(t))
	res, err := e.Call("echo", map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.False(t, res.IsError, "did not expect isError result")
	require.Len(t, res.Content, 1)

	tc, ok := res.Content[0].(protocol.TextContent)
	require.True(t, ok, "content[0] = %+v", res.Content[0])
	assert.Equal(t, "hi", tc.Text)
}

func TestToolEngineCallMissingRequiredArg(t *testing.T) {
	e := NewToolEngine(newToolRegistry(t))
	_, err := e.Call("echo", map[string]any{})
	assert.ErrorIs(t, err, protocol.ErrMissingArgument)
}

func TestToolEngineCallUnknownTool(t *testing.T) {
	e := NewToolEngine(newToolRegistry(t))
	_, err := e.Call("nope", nil)
	assert.ErrorIs(t, err, protocol.ErrToolUnknown)
}

func TestToolEngineHandlerErrorBecomesIsErrorResult(t *testing.T) {
	e := NewToolEngine(newToolRegistry(t))
	res, err := e.Call("boom", nil)
	require.NoError(t, err, "handler errors should not surface as protocol errors")
	assert.True(t, res.IsError, "expected isError result, got %+v", res)
}

func TestToolEngineAppliesDefaults(t *testing.T) {
	r := registry.New()
	var captured map[string]any
	err := r.RegisterTool(protocol.Tool{
		Name: "greet",
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: map[string]protocol.ToolProperty{"lang": {Type: "string", Default: "en"}},
		},
	}, func(args map[string]any) (registry.HandlerReturn, error) {
		captured = args
		return registry.HandlerReturn{Text: "ok"}, nil
	})
	require.NoError(t, err, "setup")

	e := NewToolEngine(r)
	_, err = e.Call("greet", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "en", captured["lang"], "expected default lang=en to be applied")
}
