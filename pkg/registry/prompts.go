package registry

import (
	"fmt"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// RegisterPrompt adds a prompt. Registering a name that already exists
// returns protocol.ErrDuplicatePrompt.
func (r *Registry) RegisterPrompt(def protocol.Prompt, template []TemplateMessage) error {
	if def.Name == "" {
		return fmt.Errorf("registry: prompt name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.prompts[def.Name]; exists {
		return fmt.Errorf("%w: %s", protocol.ErrDuplicatePrompt, def.Name)
	}
	r.prompts[def.Name] = RegisteredPrompt{Definition: def, Template: template}
	return nil
}

// GetPrompt looks up a prompt by exact name.
func (r *Registry) GetPrompt(name string) (RegisteredPrompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prompts[name]
	if !ok {
		return RegisteredPrompt{}, fmt.Errorf("%w: %s", protocol.ErrPromptUnknown, name)
	}
	return p, nil
}

// ListPrompts returns a snapshot of every registered prompt's wire
// description.
func (r *Registry) ListPrompts() []protocol.Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.Prompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		out = append(out, p.Definition)
	}
	return out
}

// RemovePrompt deletes a prompt by name.
func (r *Registry) RemovePrompt(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.prompts, name)
}

// PromptCount reports how many prompts are registered.
func (r *Registry) PromptCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}
