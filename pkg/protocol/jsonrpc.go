// Package protocol implements the JSON-RPC 2.0 message codec used by the
// MCP server core: request/response/error envelopes, the standard and
// domain error taxonomy, and decoding of raw wire bytes into typed
// messages.
//
// https://modelcontextprotocol.info/specification/draft/basic/lifecycle/
// Flow:
//
//	client sends {"jsonrpc":"2.0","method":"initialize","params":{...},"id":0}
//	server responds {"jsonrpc":"2.0","id":0,"result":{"protocolVersion":"2025-06-18",...}}
//	client sends the "notifications/initialized" notification (no id, no response)
//	client sends {"jsonrpc":"2.0","method":"tools/list","params":{},"id":1}
//	server responds with the tool list
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JsonRpcVersion is the only accepted value of the "jsonrpc" field.
const JsonRpcVersion = "2.0"

// MethodType names the JSON-RPC methods this server core understands.
type MethodType string

const (
	MethodInitialize    MethodType = "initialize"
	MethodInitialized   MethodType = "notifications/initialized"
	MethodPing          MethodType = "ping"
	MethodToolsList     MethodType = "tools/list"
	MethodToolsCall     MethodType = "tools/call"
	MethodResourcesList MethodType = "resources/list"
	MethodResourcesRead MethodType = "resources/read"
	MethodPromptsList   MethodType = "prompts/list"
	MethodPromptsGet    MethodType = "prompts/get"
)

// JsonRpcRequest represents a JSON-RPC 2.0 request or notification object.
// A notification is a request whose ID field is absent.
type JsonRpcRequest struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
	Meta    *RequestMeta    `json:"-"`
}

// RequestMeta carries the optional `_meta` envelope extracted from params.
type RequestMeta struct {
	ProgressToken any `json:"progressToken,omitempty"`
}

type metaParams struct {
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// IsNotification reports whether this message carries no id and therefore
// expects no response.
func (r *JsonRpcRequest) IsNotification() bool {
	return r.ID == nil
}

// JsonRpcResponse represents a JSON-RPC 2.0 response object, success or error.
type JsonRpcResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JsonRpcError   `json:"error,omitempty"`
	ID      any             `json:"id"`
}

// JsonRpcError represents a JSON-RPC 2.0 error object.
type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JsonRpcError) Error() string {
	return fmt.Sprintf("jsonrpc error: code=%d message=%s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes.
const (
	ErrParse         = -32700
	ErrInvalidReq    = -32600
	ErrMethodUnknown = -32601
	ErrBadParams     = -32602
	ErrInternal      = -32603
)

// NewRequest builds a request with the given id. A nil id produces a notification.
func NewRequest(method string, params any, id any) (*JsonRpcRequest, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &JsonRpcRequest{JsonRPC: JsonRpcVersion, Method: method, Params: raw, ID: id}, nil
}

// NewNotification builds a request with no id.
func NewNotification(method string, params any) (*JsonRpcRequest, error) {
	return NewRequest(method, params, nil)
}

// NewResponse builds a success response.
func NewResponse(result any, id any) (*JsonRpcResponse, error) {
	raw, err := marshalParams(result)
	if err != nil {
		return nil, err
	}
	return &JsonRpcResponse{JsonRPC: JsonRpcVersion, Result: raw, ID: id}, nil
}

// NewErrorResponse builds an error response.
func NewErrorResponse(code int, message string, data any, id any) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Error:   &JsonRpcError{Code: code, Message: message, Data: data},
		ID:      id,
	}
}

func marshalParams(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Decode parses raw wire bytes into a request/notification.
//
// Per spec, a top-level JSON array is rejected as "batching not
// supported" before any attempt to unmarshal its elements, and a
// missing or wrong "jsonrpc" field is rejected as an invalid request.
func Decode(raw []byte) (*JsonRpcRequest, *JsonRpcError) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, &JsonRpcError{Code: ErrInvalidReq, Message: "Invalid Request: batching not supported"}
	}

	var req JsonRpcRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, &JsonRpcError{Code: ErrParse, Message: "Parse error: " + err.Error()}
	}
	if req.JsonRPC != JsonRpcVersion {
		return nil, &JsonRpcError{Code: ErrInvalidReq, Message: fmt.Sprintf("Invalid Request: jsonrpc must be %q", JsonRpcVersion)}
	}
	if req.Method == "" {
		return nil, &JsonRpcError{Code: ErrInvalidReq, Message: "Invalid Request: method is required"}
	}

	if len(req.Params) > 0 {
		var mp metaParams
		if err := json.Unmarshal(req.Params, &mp); err == nil && mp.Meta != nil {
			req.Meta = mp.Meta
		}
	}

	return &req, nil
}

// Encode serializes a response to wire bytes.
func Encode(resp *JsonRpcResponse) ([]byte, error) {
	return json.Marshal(resp)
}

// String returns an indented JSON rendering, used for diagnostics/logging.
func (r *JsonRpcRequest) String() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unmarshalable request: %v>", err)
	}
	return string(b)
}

func (r *JsonRpcResponse) String() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unmarshalable response: %v>", err)
	}
	return string(b)
}
