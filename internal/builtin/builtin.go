package builtin

import (
	"github.com/kestrel-mcp/corekit/pkg/autoload"
	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/mcptime"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

// Register adds every built-in tool directly to r, mirroring the
// teacher's registerTools pattern of one definition-plus-handler pair
// per call.
func Register(r *registry.Registry, clock mcptime.Clock, log mcplog.Logger) error {
	if err := r.RegisterTool(CalculatorTool(), HandleCalculator); err != nil {
		return err
	}
	if err := r.RegisterTool(DateTimeTool(), NewDateTimeHandler(clock)); err != nil {
		return err
	}
	if err := r.RegisterTool(FetchURLTool(), NewFetchURLHandler(log)); err != nil {
		return err
	}
	return nil
}

// Catalog builds a HandlerCatalog exposing the built-in handlers under
// the names an autoload manifest would reference them by, for servers
// that declare their tools as JSON manifests instead of registering
// them directly.
func Catalog(clock mcptime.Clock, log mcplog.Logger) *autoload.HandlerCatalog {
	return autoload.NewHandlerCatalog().
		AddTool("calculator", HandleCalculator).
		AddTool("get_datetime", NewDateTimeHandler(clock)).
		AddTool("fetch_url", NewFetchURLHandler(log))
}
