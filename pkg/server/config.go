package server

import (
	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/mcptime"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// Config collects the dependencies and settings a Server needs. Every
// ambient concern (logging, time) is supplied here rather than reached
// for globally, so multiple Servers can run side by side in the same
// process with independent configuration — the common case in tests.
type Config struct {
	Name        string
	Version     string
	Description string
	// Instructions is free-form usage guidance returned in the
	// initialize result for clients that display it to a model.
	Instructions string
	Logger       mcplog.Logger
	Clock        mcptime.Clock

	// DeclaredCapabilities overrides the per-feature capability
	// descriptors the initialize response reports. A nil or empty map
	// falls back to {supported:true, listChanged:false} for tools,
	// resources and prompts, which is this server core's actual
	// behavior. A non-empty map is reported as given; families it
	// leaves out are not filled in.
	DeclaredCapabilities map[string]protocol.CapabilityDescriptor

	// AutoloadDir, if non-empty, is scanned at startup for tool/
	// resource/prompt manifests per pkg/autoload.
	AutoloadDir string
	// WatchAutoload enables fsnotify-based hot reload of AutoloadDir.
	WatchAutoload bool
}

func (c *Config) withDefaults() *Config {
	cp := *c
	if cp.Name == "" {
		cp.Name = "corekit"
	}
	if cp.Version == "" {
		cp.Version = "0.0.0"
	}
	if cp.Logger == nil {
		cp.Logger = mcplog.NewStderrLogger(mcplog.INFO)
	}
	if cp.Clock == nil {
		cp.Clock = mcptime.System{}
	}
	return &cp
}
