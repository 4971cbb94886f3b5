package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

func TestRegisterAndGetTool(t *testing.T) {
	r := New()
	def := protocol.Tool{Name: "add", InputSchema: protocol.InputSchema{Type: "object"}}
	err := r.RegisterTool(def, func(args map[string]any) (HandlerReturn, error) {
		return HandlerReturn{Text: "ok"}, nil
	})
	require.NoError(t, err)

	got, err := r.GetTool("add")
	require.NoError(t, err)
	assert.Equal(t, "add", got.Definition.Name)
}

func TestRegisterDuplicateToolFails(t *testing.T) {
	r := New()
	def := protocol.Tool{Name: "add"}
	h := func(args map[string]any) (HandlerReturn, error) { return HandlerReturn{}, nil }
	require.NoError(t, r.RegisterTool(def, h))

	err := r.RegisterTool(def, h)
	assert.ErrorIs(t, err, protocol.ErrDuplicateTool)
}

func TestGetToolUnknown(t *testing.T) {
	r := New()
	_, err := r.GetTool("missing")
	assert.ErrorIs(t, err, protocol.ErrToolUnknown)
}

func TestResourceLookupNormalizesTrailingSlash(t *testing.T) {
	r := New()
	def := protocol.Resource{URI: "file:///data/"}
	require.NoError(t, r.RegisterResource(def, nil))

	_, err := r.GetResource("file:///data")
	assert.NoError(t, err, "expected trailing-slash-insensitive lookup to succeed")
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		name := string(rune('a' + i%26))
		go func() {
			defer wg.Done()
			_ = r.RegisterTool(protocol.Tool{Name: name}, nil)
		}()
		go func() {
			defer wg.Done()
			r.ListTools()
		}()
	}
	wg.Wait()
}

func TestPromptDuplicateRejected(t *testing.T) {
	r := New()
	def := protocol.Prompt{Name: "greet"}
	require.NoError(t, r.RegisterPrompt(def, nil))

	err := r.RegisterPrompt(def, nil)
	assert.ErrorIs(t, err, protocol.ErrDuplicatePrompt)
}
