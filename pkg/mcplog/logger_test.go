package mcplog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, WARN).Plain()
	l.Info("should not appear")
	l.Warn("should appear")
	out := buf.String()
	assert.NotContains(t, out, "should not appear", "INFO line leaked through a WARN-level logger")
	assert.Contains(t, out, "should appear")
}

func TestConsoleLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, DEBUG).Plain()
	l.With("session", "abc123").Info("connected")
	assert.Contains(t, buf.String(), "session=abc123")
}

func TestNoopLoggerDiscardsEverything(t *testing.T) {
	var n Noop
	n.Info("x")
	n.With("a", 1).Error("y")
}
