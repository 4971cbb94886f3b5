package engine

import (
	"fmt"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

// PromptEngine renders registered prompt templates against caller
// arguments.
type PromptEngine struct {
	registry *registry.Registry
}

// NewPromptEngine builds a PromptEngine backed by the given registry.
func NewPromptEngine(r *registry.Registry) *PromptEngine {
	return &PromptEngine{registry: r}
}

// List returns the wire description of every registered prompt.
// cursor is opaque and echoed back unchanged as NextCursor; this
// engine never pages, it only passes the token through.
func (e *PromptEngine) List(cursor string) protocol.PromptsListResult {
	return protocol.PromptsListResult{Prompts: e.registry.ListPrompts(), NextCursor: cursor}
}

// Get looks up a prompt, validates that every declared required
// argument was supplied, and renders its message templates.
func (e *PromptEngine) Get(name string, args map[string]string) (protocol.PromptGetResult, error) {
	p, err := e.registry.GetPrompt(name)
	if err != nil {
		return protocol.PromptGetResult{}, err
	}

	var required []string
	for _, a := range p.Definition.Arguments {
		if a.Required {
			required = append(required, a.Name)
		}
	}
	if missing := missingRequired(required, args); len(missing) > 0 {
		return protocol.PromptGetResult{}, fmt.Errorf("%w: %v", protocol.ErrMissingArgument, missing)
	}

	messages := make([]protocol.PromptMessage, 0, len(p.Template))
	for _, tm := range p.Template {
		rendered := renderTemplate(tm.Text, args)
		messages = append(messages, protocol.PromptMessage{
			Role:    tm.Role,
			Content: []protocol.Content{protocol.TextContent{Text: rendered}},
		})
	}

	return protocol.PromptGetResult{Description: p.Definition.Description, Messages: messages}, nil
}
