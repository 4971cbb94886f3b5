package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-mcp/corekit/pkg/engine"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	r := registry.New()
	err := r.RegisterTool(protocol.Tool{
		Name:        "echo",
		InputSchema: protocol.InputSchema{Type: "object", Required: []string{"text"}, Properties: map[string]protocol.ToolProperty{"text": {Type: "string"}}},
	}, func(args map[string]any) (registry.HandlerReturn, error) {
		return registry.HandlerReturn{Text: args["text"].(string)}, nil
	})
	require.NoError(t, err, "setup")
	return New(engine.NewToolEngine(r), engine.NewResourceEngine(r), engine.NewPromptEngine(r), nil, "test-server", "0.1.0")
}

func decodeAndDispatch(t *testing.T, d *Dispatcher, sess *Session, raw string) *protocol.JsonRpcResponse {
	t.Helper()
	req, rpcErr := protocol.Decode([]byte(raw))
	require.Nil(t, rpcErr, "decode failed")
	return d.Dispatch(sess, req)
}

func TestDispatchRejectsCallsBeforeInitialize(t *testing.T) {
	d := newTestDispatcher(t)
	sess := &Session{}
	resp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrNotInitialized, resp.Error.Code)
}

func TestDispatchInitializeThenToolsList(t *testing.T) {
	d := newTestDispatcher(t)
	sess := &Session{}
	initResp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"x","version":"1"}},"id":1}`)
	require.Nil(t, initResp.Error)
	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(initResp.Result, &result))
	assert.Equal(t, protocol.ProtocolVersion, result.ProtocolVersion)

	listResp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"tools/list","id":2}`)
	require.Nil(t, listResp.Error)
	var tools protocol.ToolsListResult
	require.NoError(t, json.Unmarshal(listResp.Result, &tools))
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "echo", tools.Tools[0].Name)
}

func TestDispatchNotificationReturnsNil(t *testing.T) {
	d := newTestDispatcher(t)
	sess := &Session{Initialized: true}
	resp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Nil(t, resp, "expected nil response for notification")
}

func TestDispatchUnknownMethod(t *testing.T) {
	d := newTestDispatcher(t)
	sess := &Session{Initialized: true}
	resp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"nope","id":1}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrMethodUnknown, resp.Error.Code)
}

func TestDispatchToolsCallMissingRequiredArg(t *testing.T) {
	d := newTestDispatcher(t)
	sess := &Session{Initialized: true}
	resp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"echo","arguments":{}},"id":1}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrBadParams, resp.Error.Code)
}

func TestDispatchInitializeRejectsWrongProtocolVersion(t *testing.T) {
	d := newTestDispatcher(t)
	sess := &Session{}
	resp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-01-01","capabilities":{},"clientInfo":{"name":"x","version":"1"}},"id":1}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrBadParams, resp.Error.Code)
	assert.False(t, sess.Initialized, "a rejected initialize must not mark the session initialized")
	data, ok := resp.Error.Data.(map[string]any)
	require.True(t, ok, "expected error data to carry the supported version, got %#v", resp.Error.Data)
	assert.Equal(t, []string{protocol.ProtocolVersion}, data["supported"])
}

func TestDispatchPing(t *testing.T) {
	d := newTestDispatcher(t)
	sess := &Session{Initialized: true}
	resp := decodeAndDispatch(t, d, sess, `{"jsonrpc":"2.0","method":"ping","id":1}`)
	assert.Nil(t, resp.Error)
}
