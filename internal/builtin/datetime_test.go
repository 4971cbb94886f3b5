package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-mcp/corekit/pkg/mcptime"
)

func TestDateTimeHandlerUsesClock(t *testing.T) {
	fake := mcptime.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	handler := NewDateTimeHandler(fake)

	got, err := handler(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, fake.Now().Format(time.RFC3339), got.Text)
}

func TestDateTimeHandlerCustomFormat(t *testing.T) {
	fake := mcptime.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	handler := NewDateTimeHandler(fake)

	got, err := handler(map[string]any{"format": "2006-01-02"})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-01", got.Text)
}
