package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Content is the sum type returned by tool calls and carried in prompt
// messages. Exactly one of the concrete variants below is active at a
// time; the concrete Go type discriminates which.
type Content interface {
	contentType() string
}

// TextContent is plain text content.
type TextContent struct {
	Text string
}

// ImageContent is base64-encoded binary image data with a MIME type.
type ImageContent struct {
	Data     []byte
	MimeType string
}

// EmbeddedResource wraps a resource's contents inline in a content list.
type EmbeddedResource struct {
	Resource ResourceContents
}

// ResourceLink points at a resource by URI without embedding its
// contents. Annotations and Meta are opaque passthrough, carried as
// raw JSON since this server core never inspects their shape.
type ResourceLink struct {
	Href        string
	Title       string
	Annotations json.RawMessage
	Meta        json.RawMessage
}

func (TextContent) contentType() string     { return "text" }
func (ImageContent) contentType() string     { return "image" }
func (EmbeddedResource) contentType() string { return "resource" }
func (ResourceLink) contentType() string     { return "link" }

type wireContent struct {
	Type        string          `json:"type"`
	Text        string          `json:"text,omitempty"`
	Data        string          `json:"data,omitempty"`
	MimeType    string          `json:"mimeType,omitempty"`
	Resource    json.RawMessage `json:"resource,omitempty"`
	Href        string          `json:"href,omitempty"`
	Title       string          `json:"title,omitempty"`
	Annotations json.RawMessage `json:"annotations,omitempty"`
	Meta        json.RawMessage `json:"_meta,omitempty"`
}

// MarshalContent renders a Content variant to its wire representation.
func MarshalContent(c Content) ([]byte, error) {
	switch v := c.(type) {
	case TextContent:
		return json.Marshal(wireContent{Type: "text", Text: v.Text})
	case ImageContent:
		return json.Marshal(wireContent{
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(v.Data),
			MimeType: v.MimeType,
		})
	case EmbeddedResource:
		rc, err := MarshalResourceContents(v.Resource)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireContent{Type: "resource", Resource: rc})
	case ResourceLink:
		return json.Marshal(wireContent{
			Type:        "link",
			Href:        v.Href,
			Title:       v.Title,
			Annotations: v.Annotations,
			Meta:        v.Meta,
		})
	default:
		return nil, fmt.Errorf("protocol: unknown content variant %T", c)
	}
}

// MarshalContentList renders a slice of Content to a JSON array.
func MarshalContentList(items []Content) (json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(items))
	for _, c := range items {
		b, err := MarshalContent(c)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}

// ResourceContents is the sum type held by a resource read result: either
// Text (UTF-8 text bodies) or Blob (base64 binary bodies).
type ResourceContents interface {
	resourceContentsType() string
}

// TextResourceContents is a UTF-8 text resource body.
type TextResourceContents struct {
	URI      string
	MimeType string
	Text     string
}

// BlobResourceContents is a base64-encoded binary resource body.
type BlobResourceContents struct {
	URI      string
	MimeType string
	Blob     []byte
}

func (TextResourceContents) resourceContentsType() string { return "text" }
func (BlobResourceContents) resourceContentsType() string { return "blob" }

type wireResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// MarshalResourceContents renders a ResourceContents variant to wire bytes.
func MarshalResourceContents(rc ResourceContents) ([]byte, error) {
	switch v := rc.(type) {
	case TextResourceContents:
		return json.Marshal(wireResourceContents{URI: v.URI, MimeType: v.MimeType, Text: v.Text})
	case BlobResourceContents:
		return json.Marshal(wireResourceContents{
			URI:      v.URI,
			MimeType: v.MimeType,
			Blob:     base64.StdEncoding.EncodeToString(v.Blob),
		})
	default:
		return nil, fmt.Errorf("protocol: unknown resource contents variant %T", rc)
	}
}
