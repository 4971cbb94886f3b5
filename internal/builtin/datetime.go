package builtin

import (
	"time"

	"github.com/kestrel-mcp/corekit/pkg/mcptime"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

// DateTimeTool is the wire definition for the get_datetime handler.
func DateTimeTool() protocol.Tool {
	return protocol.Tool{
		Name:        "get_datetime",
		Description: "Returns the current date and time",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"format": {
					Type:        "string",
					Description: "A Go reference-time layout, such as 2006-01-02T15:04:05Z07:00",
					Default:     time.RFC3339,
				},
			},
			Required: []string{},
		},
	}
}

// NewDateTimeHandler returns a get_datetime handler reading the current
// time from clock instead of time.Now, so a server under test can pin
// what "now" means.
func NewDateTimeHandler(clock mcptime.Clock) registry.ToolHandler {
	return func(args map[string]any) (registry.HandlerReturn, error) {
		format := time.RFC3339
		if f, ok := args["format"].(string); ok && f != "" {
			format = f
		}
		return registry.HandlerReturn{Text: clock.Now().Format(format)}, nil
	}
}
