package autoload

import "github.com/kestrel-mcp/corekit/pkg/registry"

// HandlerCatalog maps the "handler"/"provider" names used in manifest
// files to the Go functions that actually implement them. The
// embedding program builds one of these from its internal/builtin
// package (or any other source) and hands it to a Loader; manifests
// name behavior, the catalog supplies it.
type HandlerCatalog struct {
	tools     map[string]registry.ToolHandler
	resources map[string]registry.ResourceProvider
}

// NewHandlerCatalog builds an empty catalog.
func NewHandlerCatalog() *HandlerCatalog {
	return &HandlerCatalog{
		tools:     make(map[string]registry.ToolHandler),
		resources: make(map[string]registry.ResourceProvider),
	}
}

// AddTool registers a named tool handler in the catalog.
func (c *HandlerCatalog) AddTool(name string, handler registry.ToolHandler) *HandlerCatalog {
	c.tools[name] = handler
	return c
}

// AddResource registers a named resource provider in the catalog.
func (c *HandlerCatalog) AddResource(name string, provider registry.ResourceProvider) *HandlerCatalog {
	c.resources[name] = provider
	return c
}

func (c *HandlerCatalog) tool(name string) (registry.ToolHandler, bool) {
	h, ok := c.tools[name]
	return h, ok
}

func (c *HandlerCatalog) resource(name string) (registry.ResourceProvider, bool) {
	p, ok := c.resources[name]
	return p, ok
}
