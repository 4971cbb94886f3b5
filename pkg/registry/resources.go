package registry

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// normalizeURI parses uri per RFC 3986 and returns its canonical
// string form, used as the lookup key so equivalent URIs (differing
// only by a trailing slash on a non-root path) match the same
// registration. Any parse failure is reported as protocol.ErrInvalidURI.
func normalizeURI(uri string) (string, error) {
	trimmed := strings.TrimSpace(uri)
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %s", protocol.ErrInvalidURI, err)
	}
	s := parsed.String()
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		s = strings.TrimSuffix(s, "/")
	}
	return s, nil
}

// RegisterResource adds a resource keyed by its normalized URI.
// Registering a URI that already exists (under normalization) returns
// protocol.ErrDuplicateResource. A resource registered without
// explicit annotations gets the spec's default audience/priority.
func (r *Registry) RegisterResource(def protocol.Resource, provider ResourceProvider) error {
	if def.URI == "" {
		return fmt.Errorf("registry: resource uri must not be empty")
	}
	key, err := normalizeURI(def.URI)
	if err != nil {
		return err
	}
	if def.Annotations.Audience == nil {
		def.Annotations = protocol.DefaultResourceAnnotations()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[key]; exists {
		return fmt.Errorf("%w: %s", protocol.ErrDuplicateResource, def.URI)
	}
	r.resources[key] = RegisteredResource{Definition: def, Provider: provider}
	return nil
}

// GetResource looks up a resource by URI under the same normalization
// used at registration time. A uri that fails RFC 3986 parsing
// returns protocol.ErrInvalidURI rather than ErrResourceUnknown.
func (r *Registry) GetResource(uri string) (RegisteredResource, error) {
	key, err := normalizeURI(uri)
	if err != nil {
		return RegisteredResource{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[key]
	if !ok {
		return RegisteredResource{}, fmt.Errorf("%w: %s", protocol.ErrResourceUnknown, uri)
	}
	return res, nil
}

// ListResources returns a snapshot of every registered resource's wire
// description.
func (r *Registry) ListResources() []protocol.Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.Resource, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, res.Definition)
	}
	return out
}

// RemoveResource deletes a resource by URI. A URI that fails to parse
// matches nothing, so the call is a no-op rather than an error.
func (r *Registry) RemoveResource(uri string) {
	key, err := normalizeURI(uri)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resources, key)
}

// ResourceCount reports how many resources are registered.
func (r *Registry) ResourceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}
