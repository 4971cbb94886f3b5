package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-mcp/corekit/pkg/mcptime"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

func TestHTTPTransportInitializeMintsSession(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	body := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"c","version":"1"}},"id":1}`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		tr.echo.ServeHTTP(rec, req)
		close(done)
	}()

	select {
	case inReq := <-tr.Inbound():
		resp, _ := protocol.NewResponse(protocol.InitializeResult{ProtocolVersion: protocol.ProtocolVersion}, inReq.ID)
		require.NoError(t, tr.Send(req.Context(), resp))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for inbound request")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for HTTP response")
	}

	assert.NotEmpty(t, rec.Header().Get(headerSessionID), "expected %s header to be set on initialize response", headerSessionID)
	assert.Equal(t, 200, rec.Code, "body = %s", rec.Body.String())
}

func TestHTTPTransportRejectsUnknownSession(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	body := `{"jsonrpc":"2.0","method":"tools/list","id":2}`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerSessionID, "does-not-exist")
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
	var resp protocol.JsonRpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrInvalidSession, resp.Error.Code)
}

func TestHTTPTransportRejectsBatch(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	body := `[{"jsonrpc":"2.0","method":"ping","id":1}]`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	var resp protocol.JsonRpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrInvalidReq, resp.Error.Code)
	assert.Equal(t, "Invalid Request: batching not supported", resp.Error.Message)
}

func TestHTTPTransportNotificationReturnsAccepted(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	body := `{"jsonrpc":"2.0","method":"notifications/initialized"}`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		tr.echo.ServeHTTP(rec, req)
		close(done)
	}()

	select {
	case <-tr.Inbound():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for inbound notification")
	}
	<-done

	assert.Equal(t, 202, rec.Code)
}

func TestHTTPTransportSSEOpensWithConnectionEvent(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})
	sess := tr.sess.create()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest("GET", "/mcp", nil).WithContext(ctx)
	req.Header.Set(headerSessionID, sess.id)
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "event: connection\nid: 1\ndata: "), "expected stream to open with a connection event, got %q", body)
	assert.Contains(t, body, `"status":"connected"`)
}

func TestHTTPTransportRejectsWrongContentType(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	body := `{"jsonrpc":"2.0","method":"ping","id":1}`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	assert.Equal(t, 415, rec.Code)
}

func TestHTTPTransportRejectsIncompleteAccept(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	body := `{"jsonrpc":"2.0","method":"ping","id":1}`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	assert.Equal(t, 406, rec.Code)
}

func TestHTTPTransportRejectsProtocolVersionHeaderMismatch(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	body := `{"jsonrpc":"2.0","method":"ping","id":1}`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerProtocolVer, "2024-01-01")
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
	var resp protocol.JsonRpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ErrBadParams, resp.Error.Code)
}

func TestHTTPTransportRejectsDisallowedOrigin(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{}, WithAllowedOrigins("https://allowed.example"))

	body := `{"jsonrpc":"2.0","method":"ping","id":1}`
	req := httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	assert.Equal(t, 403, rec.Code)
}

func TestHTTPTransportGetRejectsMissingEventStreamAccept(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})
	sess := tr.sess.create()

	req := httptest.NewRequest("GET", "/mcp", nil)
	req.Header.Set(headerSessionID, sess.id)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	tr.echo.ServeHTTP(rec, req)

	assert.Equal(t, 406, rec.Code)
}

func TestHTTPTransportSessionStableAcrossInitializeCalls(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})

	first := tr.sess.create()
	second := tr.sess.create()

	assert.Equal(t, first.id, second.id, "session id must remain constant across repeated initialize calls")
	assert.Equal(t, 1, tr.sess.count())
}

func TestHTTPTransportDeleteEndsSession(t *testing.T) {
	tr := NewHTTPTransport(":0", "/mcp", nil, mcptime.System{})
	sess := tr.sess.create()

	req := httptest.NewRequest("DELETE", "/mcp", nil)
	req.Header.Set(headerSessionID, sess.id)
	rec := httptest.NewRecorder()
	tr.echo.ServeHTTP(rec, req)

	require.Equal(t, 204, rec.Code)
	_, ok := tr.sess.get(sess.id)
	assert.False(t, ok, "expected session to be removed")
}
