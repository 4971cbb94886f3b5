package registry

import (
	"fmt"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// RegisterTool adds a tool. Registering a name that already exists
// returns protocol.ErrDuplicateTool; the original registration is left
// untouched.
func (r *Registry) RegisterTool(def protocol.Tool, handler ToolHandler) error {
	if def.Name == "" {
		return fmt.Errorf("registry: tool name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", protocol.ErrDuplicateTool, def.Name)
	}
	r.tools[def.Name] = RegisteredTool{Definition: def, Handler: handler}
	return nil
}

// GetTool looks up a tool by exact name.
func (r *Registry) GetTool(name string) (RegisteredTool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return RegisteredTool{}, fmt.Errorf("%w: %s", protocol.ErrToolUnknown, name)
	}
	return t, nil
}

// ListTools returns a snapshot of every registered tool's wire
// description, sorted by registration is not guaranteed; callers that
// need a stable order should sort the result themselves.
func (r *Registry) ListTools() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Definition)
	}
	return out
}

// RemoveTool deletes a tool by name. Removing a name that does not
// exist is a no-op, mirroring map delete semantics.
func (r *Registry) RemoveTool(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// ToolCount reports how many tools are registered.
func (r *Registry) ToolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
