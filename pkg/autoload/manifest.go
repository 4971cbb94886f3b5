// Package autoload implements the directory-tree auto-registration the
// teacher's prompt registry did for prompts alone, generalized to
// tools, resources, and prompts. Go has no runtime eval, so a
// component's declarative shape (name, description, schema) lives in a
// JSON manifest file, while its executable behavior is looked up by
// name from a HandlerCatalog the embedding program supplies at
// construction time. A tool or resource manifest whose handler or
// provider name has no catalog entry is skipped with a warning rather
// than failing the whole load.
package autoload

import "github.com/kestrel-mcp/corekit/pkg/protocol"

// ToolManifest is the on-disk declarative shape of one tool under
// <root>/tools/*.json. Handler names the catalog entry that supplies
// its executable behavior.
type ToolManifest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	InputSchema protocol.InputSchema `json:"inputSchema"`
	Handler     string              `json:"handler"`
}

// ResourceManifest is the on-disk declarative shape of one resource
// under <root>/resources/*.json.
type ResourceManifest struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
	Provider    string `json:"provider"`
}

// PromptManifest is the on-disk declarative shape of one prompt under
// <root>/prompts/*.json. Unlike tools and resources, a prompt's behavior
// (its message templates) is itself fully declarative and needs no
// catalog entry.
type PromptManifest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Arguments   []protocol.PromptArgument `json:"arguments"`
	Messages    []PromptMessageManifest   `json:"messages"`
}

// PromptMessageManifest is one templated message of a prompt manifest.
type PromptMessageManifest struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
