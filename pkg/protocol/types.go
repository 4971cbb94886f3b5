package protocol

import "encoding/json"

// ProtocolVersion is the single MCP protocol revision this server core
// speaks. Initialize negotiation and the HTTP transport's
// MCP-Protocol-Version header both check against this exact string.
const ProtocolVersion = "2025-06-18"

// ToolProperty describes one property of a tool's JSON-Schema-like input
// schema.
type ToolProperty struct {
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Enum        []string       `json:"enum,omitempty"`
	Items       *ToolProperty  `json:"items,omitempty"`
	Default     any            `json:"default,omitempty"`
	Properties  map[string]ToolProperty `json:"properties,omitempty"`
}

// InputSchema is the JSON-Schema-like object describing a tool's arguments.
type InputSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolProperty `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

// Tool is the wire-level description of a registered tool, as returned by
// tools/list.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema InputSchema `json:"inputSchema"`
}

// ListParams is the decoded params shared by tools/list, resources/list
// and prompts/list. Cursor is opaque: this server core does not page
// its in-memory registry, so a supplied cursor is simply echoed back
// as the result's nextCursor rather than advancing any real offset.
type ListParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// ToolsListResult is the result payload of a tools/list call.
type ToolsListResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// ToolCallParams is the decoded params of a tools/call request.
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolCallResult is the result payload of a tools/call request.
type ToolCallResult struct {
	Content []Content `json:"-"`
	IsError bool      `json:"isError,omitempty"`
}

// MarshalJSON renders the content list alongside the isError flag.
func (r ToolCallResult) MarshalJSON() ([]byte, error) {
	content, err := MarshalContentList(r.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Content json.RawMessage `json:"content"`
		IsError bool            `json:"isError"`
	}{Content: content, IsError: r.IsError})
}

// ResourceAnnotations hints to a client how a resource should be
// weighted: which roles it's meant for, and how important it is
// relative to other resources surfaced in the same list.
type ResourceAnnotations struct {
	Audience []string `json:"audience"`
	Priority float64  `json:"priority"`
}

// DefaultResourceAnnotations is applied to a resource registered
// without explicit annotations.
func DefaultResourceAnnotations() ResourceAnnotations {
	return ResourceAnnotations{Audience: []string{"assistant"}, Priority: 0.0}
}

// Resource is the wire-level description of a registered resource, as
// returned by resources/list.
type Resource struct {
	URI         string              `json:"uri"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	MimeType    string              `json:"mimeType,omitempty"`
	Annotations ResourceAnnotations `json:"annotations"`
}

// ResourcesListResult is the result payload of a resources/list call.
type ResourcesListResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// ResourceReadParams is the decoded params of a resources/read request.
type ResourceReadParams struct {
	URI string `json:"uri"`
}

// ResourceReadResult is the result payload of a resources/read request.
type ResourceReadResult struct {
	Contents []ResourceContents `json:"-"`
}

// MarshalJSON renders the resource contents list.
func (r ResourceReadResult) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(r.Contents))
	for _, c := range r.Contents {
		b, err := MarshalResourceContents(c)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(struct {
		Contents []json.RawMessage `json:"contents"`
	}{Contents: out})
}

// PromptArgument describes one argument a prompt template accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt is the wire-level description of a registered prompt, as returned
// by prompts/list.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptsListResult is the result payload of a prompts/list call.
type PromptsListResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// PromptGetParams is the decoded params of a prompts/get request.
type PromptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

// PromptMessage is one message in a rendered prompt.
type PromptMessage struct {
	Role    string    `json:"role"`
	Content []Content `json:"-"`
}

// MarshalJSON renders a prompt message's content list.
func (m PromptMessage) MarshalJSON() ([]byte, error) {
	content, err := MarshalContentList(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}{Role: m.Role, Content: content})
}

// PromptGetResult is the result payload of a prompts/get request.
type PromptGetResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// InitializeParams is the decoded params of an initialize request.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      ClientInfo     `json:"clientInfo"`
}

// ClientInfo identifies the connecting client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo identifies this server in the initialize response.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CapabilityDescriptor reports one feature family's support and
// whether the server emits list-changed notifications for it. This
// server core never emits those notifications, so ListChanged is
// always false; the field still round-trips through the wire shape a
// client expects.
type CapabilityDescriptor struct {
	Supported   bool `json:"supported"`
	ListChanged bool `json:"listChanged"`
}

// InitializeResult is the result payload of an initialize request.
type InitializeResult struct {
	ProtocolVersion string                          `json:"protocolVersion"`
	Capabilities    map[string]CapabilityDescriptor `json:"capabilities"`
	ServerInfo      ServerInfo                      `json:"serverInfo"`
	Instructions    string                          `json:"instructions,omitempty"`
}
