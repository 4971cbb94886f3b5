// Package dispatch routes decoded JSON-RPC requests to the right
// capability engine and turns their results back into JsonRpcResponse
// values. The teacher's equivalent was a single large switch statement
// on a singleton server; this generalizes that into a per-method route
// table bound to an explicit set of dependencies (registry, engines,
// logger, clock) so a server can be constructed more than once, e.g.
// once per test.
package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/kestrel-mcp/corekit/pkg/engine"
	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// Session tracks per-connection initialization state. The stdio
// transport uses one Session for its whole lifetime; the HTTP
// transport creates one per Mcp-Session-Id.
type Session struct {
	Initialized bool
	ClientInfo  protocol.ClientInfo
}

// Dispatcher routes requests to engines and renders JSON-RPC responses.
type Dispatcher struct {
	tools        *engine.ToolEngine
	resources    *engine.ResourceEngine
	prompts      *engine.PromptEngine
	log          mcplog.Logger
	name         string
	version      string
	instructions string
	capabilities map[string]protocol.CapabilityDescriptor
}

// New builds a Dispatcher wired to the given engines. serverName and
// serverVersion populate the initialize response's serverInfo.
func New(tools *engine.ToolEngine, resources *engine.ResourceEngine, prompts *engine.PromptEngine, log mcplog.Logger, serverName, serverVersion string) *Dispatcher {
	if log == nil {
		log = mcplog.Noop{}
	}
	return &Dispatcher{tools: tools, resources: resources, prompts: prompts, log: log, name: serverName, version: serverVersion}
}

// WithInstructions sets the free-form usage text returned in the
// initialize result, and returns d for chaining.
func (d *Dispatcher) WithInstructions(instructions string) *Dispatcher {
	d.instructions = instructions
	return d
}

// WithCapabilities overrides the per-feature capability descriptors
// reported by initialize, and returns d for chaining. A nil or empty
// map leaves the built-in defaults (tools/resources/prompts all
// supported, none list-changed) in place.
func (d *Dispatcher) WithCapabilities(capabilities map[string]protocol.CapabilityDescriptor) *Dispatcher {
	d.capabilities = capabilities
	return d
}

func defaultCapabilities() map[string]protocol.CapabilityDescriptor {
	return map[string]protocol.CapabilityDescriptor{
		"tools":     {Supported: true},
		"resources": {Supported: true},
		"prompts":   {Supported: true},
	}
}

// Dispatch routes one decoded request against session state and
// returns the response to write back, or nil if the request was a
// notification and expects none.
func (d *Dispatcher) Dispatch(sess *Session, req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	d.log.Debug("dispatching method=%s id=%v", req.Method, req.ID)

	if req.Method != string(protocol.MethodInitialize) && !sess.Initialized && !req.IsNotification() {
		return protocol.NewErrorResponse(protocol.ErrNotInitialized, "server has not been initialized", nil, req.ID)
	}

	result, err := d.route(sess, req)
	if req.IsNotification() {
		if err != nil {
			d.log.Warn("notification %s failed: %v", req.Method, err)
		}
		return nil
	}
	if err != nil {
		rpcErr := toRPCError(err)
		return protocol.NewErrorResponse(rpcErr.Code, rpcErr.Message, rpcErr.Data, req.ID)
	}
	resp, encErr := protocol.NewResponse(result, req.ID)
	if encErr != nil {
		return protocol.NewErrorResponse(protocol.ErrInternal, encErr.Error(), nil, req.ID)
	}
	return resp
}

func toRPCError(err error) *protocol.JsonRpcError {
	if rpcErr, ok := err.(*protocol.JsonRpcError); ok {
		return rpcErr
	}
	return protocol.AsJsonRpcError(err)
}

func (d *Dispatcher) route(sess *Session, req *protocol.JsonRpcRequest) (any, error) {
	switch req.Method {
	case string(protocol.MethodInitialize):
		return d.handleInitialize(sess, req.Params)
	case string(protocol.MethodInitialized):
		return nil, nil
	case string(protocol.MethodPing):
		return struct{}{}, nil
	case string(protocol.MethodToolsList):
		return d.tools.List(parseCursor(req.Params)), nil
	case string(protocol.MethodToolsCall):
		return d.handleToolsCall(req.Params)
	case string(protocol.MethodResourcesList):
		return d.resources.List(parseCursor(req.Params)), nil
	case string(protocol.MethodResourcesRead):
		return d.handleResourcesRead(req.Params)
	case string(protocol.MethodPromptsList):
		return d.prompts.List(parseCursor(req.Params)), nil
	case string(protocol.MethodPromptsGet):
		return d.handlePromptsGet(req.Params)
	default:
		return nil, &protocol.JsonRpcError{Code: protocol.ErrMethodUnknown, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func (d *Dispatcher) handleInitialize(sess *Session, raw json.RawMessage) (protocol.InitializeResult, error) {
	var params protocol.InitializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return protocol.InitializeResult{}, &protocol.JsonRpcError{Code: protocol.ErrBadParams, Message: err.Error()}
		}
	}
	if params.ProtocolVersion != protocol.ProtocolVersion {
		return protocol.InitializeResult{}, &protocol.JsonRpcError{
			Code:    protocol.ErrBadParams,
			Message: fmt.Sprintf("unsupported protocolVersion %q", params.ProtocolVersion),
			Data:    map[string]any{"supported": []string{protocol.ProtocolVersion}},
		}
	}

	sess.Initialized = true
	sess.ClientInfo = params.ClientInfo

	capabilities := d.capabilities
	if len(capabilities) == 0 {
		capabilities = defaultCapabilities()
	}

	return protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolVersion,
		Capabilities:    capabilities,
		ServerInfo:      protocol.ServerInfo{Name: d.name, Version: d.version},
		Instructions:    d.instructions,
	}, nil
}

func (d *Dispatcher) handleToolsCall(raw json.RawMessage) (protocol.ToolCallResult, error) {
	var params protocol.ToolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.ToolCallResult{}, &protocol.JsonRpcError{Code: protocol.ErrBadParams, Message: err.Error()}
	}
	if params.Name == "" {
		return protocol.ToolCallResult{}, &protocol.JsonRpcError{Code: protocol.ErrBadParams, Message: "tools/call requires a name"}
	}
	return d.tools.Call(params.Name, params.Arguments)
}

func (d *Dispatcher) handleResourcesRead(raw json.RawMessage) (protocol.ResourceReadResult, error) {
	var params protocol.ResourceReadParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.ResourceReadResult{}, &protocol.JsonRpcError{Code: protocol.ErrBadParams, Message: err.Error()}
	}
	if params.URI == "" {
		return protocol.ResourceReadResult{}, &protocol.JsonRpcError{Code: protocol.ErrBadParams, Message: "resources/read requires a uri"}
	}
	return d.resources.Read(params.URI)
}

// parseCursor reads the opaque cursor param a list method may carry.
// Missing or malformed params are treated as no cursor, matching how
// Dispatch already lets a nil params object stand in for the default
// (empty) parameter record on list methods.
func parseCursor(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var p protocol.ListParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	return p.Cursor
}

func (d *Dispatcher) handlePromptsGet(raw json.RawMessage) (protocol.PromptGetResult, error) {
	var params protocol.PromptGetParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.PromptGetResult{}, &protocol.JsonRpcError{Code: protocol.ErrBadParams, Message: err.Error()}
	}
	if params.Name == "" {
		return protocol.PromptGetResult{}, &protocol.JsonRpcError{Code: protocol.ErrBadParams, Message: "prompts/get requires a name"}
	}
	return d.prompts.Get(params.Name, params.Arguments)
}
