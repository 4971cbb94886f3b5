// Package engine implements the capability engines: the logic that sits
// between the dispatcher and the registry, turning a tools/call,
// resources/read, or prompts/get request into a wire result. This is
// where registry.HandlerReturn values become protocol.Content, where
// resource URIs get resolved to bytes, and where prompt templates get
// rendered against caller-supplied arguments.
package engine

import (
	"fmt"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

// ToolEngine invokes registered tools and converts their handler return
// value into a wire-ready ToolCallResult.
type ToolEngine struct {
	registry *registry.Registry
}

// NewToolEngine builds a ToolEngine backed by the given registry.
func NewToolEngine(r *registry.Registry) *ToolEngine {
	return &ToolEngine{registry: r}
}

// List returns the wire description of every registered tool. cursor
// is opaque and echoed back unchanged as NextCursor; this engine
// never pages, it only passes the token through.
func (e *ToolEngine) List(cursor string) protocol.ToolsListResult {
	return protocol.ToolsListResult{Tools: e.registry.ListTools(), NextCursor: cursor}
}

// Call looks up a tool by name, validates that every input schema
// property marked required is present, invokes the handler, and
// converts its HandlerReturn into wire content. A handler error or a
// HandlerReturn with IsError set both surface as isError:true results
// rather than JSON-RPC errors, per the MCP convention that tool
// execution failures are part of the result, not protocol failures.
func (e *ToolEngine) Call(name string, args map[string]any) (protocol.ToolCallResult, error) {
	tool, err := e.registry.GetTool(name)
	if err != nil {
		return protocol.ToolCallResult{}, err
	}
	if err := validateRequired(tool.Definition.InputSchema, args); err != nil {
		return protocol.ToolCallResult{}, err
	}
	if tool.Handler == nil {
		return protocol.ToolCallResult{}, fmt.Errorf("%w: %s has no handler", protocol.ErrToolUnknown, name)
	}

	ret, callErr := tool.Handler(withDefaults(tool.Definition.InputSchema, args))
	if callErr != nil {
		return protocol.ToolCallResult{
			Content: []protocol.Content{protocol.TextContent{Text: callErr.Error()}},
			IsError: true,
		}, nil
	}
	return handlerReturnToResult(ret), nil
}

func validateRequired(schema protocol.InputSchema, args map[string]any) error {
	for _, req := range schema.Required {
		if _, ok := args[req]; !ok {
			return fmt.Errorf("%w: %s", protocol.ErrMissingArgument, req)
		}
	}
	return nil
}

// withDefaults merges declared property defaults into args for any
// property the caller omitted.
func withDefaults(schema protocol.InputSchema, args map[string]any) map[string]any {
	if len(schema.Properties) == 0 {
		return args
	}
	merged := make(map[string]any, len(args))
	for k, v := range args {
		merged[k] = v
	}
	for name, prop := range schema.Properties {
		if _, ok := merged[name]; !ok && prop.Default != nil {
			merged[name] = prop.Default
		}
	}
	return merged
}

func handlerReturnToResult(ret registry.HandlerReturn) protocol.ToolCallResult {
	var content []protocol.Content
	if ret.Text != "" {
		content = append(content, protocol.TextContent{Text: ret.Text})
	}
	if ret.Image != nil {
		content = append(content, protocol.ImageContent{Data: ret.Image.Data, MimeType: ret.Image.MimeType})
	}
	for _, rc := range ret.Resources {
		content = append(content, protocol.EmbeddedResource{Resource: rc})
	}
	return protocol.ToolCallResult{Content: content, IsError: ret.IsError}
}
