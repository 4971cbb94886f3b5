package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValidRequest(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"tools/list","params":{},"id":1}`)
	req, rpcErr := Decode(raw)
	require.Nil(t, rpcErr, "decoding a well-formed request should not fail")
	assert.Equal(t, "tools/list", req.Method)
	assert.False(t, req.IsNotification(), "request with id should not be a notification")
}

func TestDecodeNotification(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	req, rpcErr := Decode(raw)
	require.Nil(t, rpcErr)
	assert.True(t, req.IsNotification(), "request without id should be a notification")
}

func TestDecodeRejectsBatch(t *testing.T) {
	raw := []byte(`[{"jsonrpc":"2.0","method":"ping","id":1}]`)
	_, rpcErr := Decode(raw)
	require.NotNil(t, rpcErr, "expected batching to be rejected")
	assert.Equal(t, ErrInvalidReq, rpcErr.Code)
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	raw := []byte(`{"jsonrpc":"1.0","method":"ping","id":1}`)
	_, rpcErr := Decode(raw)
	require.NotNil(t, rpcErr)
	assert.Equal(t, ErrInvalidReq, rpcErr.Code)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, rpcErr := Decode([]byte(`{not json`))
	require.NotNil(t, rpcErr)
	assert.Equal(t, ErrParse, rpcErr.Code)
}

func TestDecodeExtractsProgressToken(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"tools/call","params":{"_meta":{"progressToken":"abc"}},"id":1}`)
	req, rpcErr := Decode(raw)
	require.Nil(t, rpcErr)
	require.NotNil(t, req.Meta, "progress token not extracted")
	assert.Equal(t, "abc", req.Meta.ProgressToken)
}

func TestNewResponseRoundTrips(t *testing.T) {
	resp, err := NewResponse(map[string]string{"ok": "yes"}, float64(7))
	require.NoError(t, err)
	b, err := Encode(resp)
	require.NoError(t, err, "encode")
	var decoded JsonRpcResponse
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, float64(7), decoded.ID)
}

func TestAsJsonRpcErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{ErrToolUnknown, ErrToolNotFound},
		{ErrResourceUnknown, ErrResourceNotFound},
		{ErrPromptUnknown, ErrPromptNotFound},
		{ErrMissingArgument, ErrBadParams},
	}
	for _, c := range cases {
		got := AsJsonRpcError(c.err)
		assert.Equal(t, c.code, got.Code, "AsJsonRpcError(%v)", c.err)
	}
}
