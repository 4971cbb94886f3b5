// Package registry holds the in-memory collections of tools, resources,
// and prompts a server exposes. The teacher this descends from kept
// these as plain slices on a process-wide singleton; here they are
// RWMutex-guarded collections on a per-server Registry value so that
// multiple servers (or repeated test instances) never share state and
// concurrent readers never block each other.
package registry

import (
	"sync"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// ToolHandler executes a tool call and produces its result content.
type ToolHandler func(args map[string]any) (HandlerReturn, error)

// HandlerReturn is what a tool handler hands back before the engine
// layer turns it into wire content. Using a tagged struct instead of
// `any` keeps callers from having to type-switch on unknown shapes.
type HandlerReturn struct {
	Text      string
	Image     *ImagePayload
	Resources []protocol.ResourceContents
	IsError   bool
}

// ImagePayload is the raw bytes of an image a tool handler returns.
type ImagePayload struct {
	Data     []byte
	MimeType string
}

// ResourceProvider reads a resource's current contents on demand.
type ResourceProvider func(uri string) (protocol.ResourceContents, error)

// RegisteredTool pairs a tool's wire description with its handler.
type RegisteredTool struct {
	Definition protocol.Tool
	Handler    ToolHandler
}

// RegisteredResource pairs a resource's wire description with its
// content provider.
type RegisteredResource struct {
	Definition protocol.Resource
	Provider   ResourceProvider
}

// RegisteredPrompt pairs a prompt's wire description with its message
// template.
type RegisteredPrompt struct {
	Definition protocol.Prompt
	Template   []TemplateMessage
}

// TemplateMessage is one message of a prompt template, with {name} and
// {?name?...} placeholders not yet rendered.
type TemplateMessage struct {
	Role string
	Text string
}

// Registry is the set of tools, resources, and prompts one server
// instance exposes. All methods are safe for concurrent use; reads take
// a shared lock and never block each other, writes take an exclusive
// lock.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]RegisteredTool
	resources map[string]RegisteredResource
	prompts   map[string]RegisteredPrompt
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{
		tools:     make(map[string]RegisteredTool),
		resources: make(map[string]RegisteredResource),
		prompts:   make(map[string]RegisteredPrompt),
	}
}
