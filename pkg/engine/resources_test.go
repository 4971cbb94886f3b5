package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
)

func TestResourceEngineReadsViaProvider(t *testing.T) {
	r := registry.New()
	err := r.RegisterResource(protocol.Resource{URI: "mem://greeting"}, func(uri string) (protocol.ResourceContents, error) {
		return protocol.TextResourceContents{URI: uri, Text: "hello"}, nil
	})
	require.NoError(t, err, "setup")

	e := NewResourceEngine(r)
	res, err := e.Read("mem://greeting")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	tc, ok := res.Contents[0].(protocol.TextResourceContents)
	require.True(t, ok, "contents[0] = %+v", res.Contents[0])
	assert.Equal(t, "hello", tc.Text)
}

func TestResourceEngineUnknownURI(t *testing.T) {
	e := NewResourceEngine(registry.New())
	_, err := e.Read("mem://missing")
	assert.ErrorIs(t, err, protocol.ErrResourceUnknown)
}

func TestResourceEngineReadInvalidURI(t *testing.T) {
	e := NewResourceEngine(registry.New())
	_, err := e.Read("mem://bad%zz")
	assert.ErrorIs(t, err, protocol.ErrInvalidURI)
}

func TestResourceEngineListDefaultsAnnotations(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.RegisterResource(protocol.Resource{URI: "mem://a", Name: "a"}, nil))

	e := NewResourceEngine(r)
	result := e.List("")
	require.Len(t, result.Resources, 1)
	assert.Equal(t, []string{"assistant"}, result.Resources[0].Annotations.Audience)
	assert.Equal(t, 0.0, result.Resources[0].Annotations.Priority)
}
