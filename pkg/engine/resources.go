package engine

import (
	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

// ResourceEngine reads registered resources on demand via their
// provider functions; nothing is cached, so a provider backed by a
// changing file or live data source always returns current contents.
type ResourceEngine struct {
	registry *registry.Registry
}

// NewResourceEngine builds a ResourceEngine backed by the given registry.
func NewResourceEngine(r *registry.Registry) *ResourceEngine {
	return &ResourceEngine{registry: r}
}

// List returns the wire description of every registered resource.
// cursor is opaque and echoed back unchanged as NextCursor; this
// engine never pages, it only passes the token through.
func (e *ResourceEngine) List(cursor string) protocol.ResourcesListResult {
	return protocol.ResourcesListResult{Resources: e.registry.ListResources(), NextCursor: cursor}
}

// Read normalizes the requested URI and, on success, invokes the
// matching resource's provider. A URI that fails RFC 3986 parsing
// never reaches the registry lookup: it surfaces as
// protocol.ErrInvalidURI rather than protocol.ErrResourceUnknown.
func (e *ResourceEngine) Read(uri string) (protocol.ResourceReadResult, error) {
	res, err := e.registry.GetResource(uri)
	if err != nil {
		return protocol.ResourceReadResult{}, err
	}
	if res.Provider == nil {
		return protocol.ResourceReadResult{
			Contents: []protocol.ResourceContents{
				protocol.TextResourceContents{URI: res.Definition.URI, MimeType: res.Definition.MimeType},
			},
		}, nil
	}
	contents, err := res.Provider(res.Definition.URI)
	if err != nil {
		return protocol.ResourceReadResult{}, err
	}
	return protocol.ResourceReadResult{Contents: []protocol.ResourceContents{contents}}, nil
}
