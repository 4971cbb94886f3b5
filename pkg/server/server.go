// Package server assembles a registry, the capability engines, a
// dispatcher, and a transport into a running MCP server. The teacher
// this descends from kept exactly one of these alive at a time behind
// a sync.Once singleton; New here returns a plain value so a test, or
// an embedding program running several independent servers, can build
// as many as it needs.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kestrel-mcp/corekit/pkg/autoload"
	"github.com/kestrel-mcp/corekit/pkg/dispatch"
	"github.com/kestrel-mcp/corekit/pkg/engine"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
	"github.com/kestrel-mcp/corekit/pkg/registry"
	"github.com/kestrel-mcp/corekit/pkg/transport"
)

// Server wires a Registry and its capability engines to a Dispatcher
// and drives one Transport's request loop.
type Server struct {
	cfg        *Config
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	transport  transport.Transport
	watcher    *autoload.Watcher
	stdioSess  dispatch.Session
}

// New builds a Server over t, using cfg for naming and ambient
// dependencies. catalog supplies the executable behavior for any
// manifests found under cfg.AutoloadDir; pass nil if not using
// auto-loading.
func New(t transport.Transport, cfg *Config, catalog *autoload.HandlerCatalog) (*Server, error) {
	cfg = cfg.withDefaults()
	r := registry.New()

	s := &Server{
		cfg:       cfg,
		registry:  r,
		transport: t,
	}

	tools := engine.NewToolEngine(r)
	resources := engine.NewResourceEngine(r)
	prompts := engine.NewPromptEngine(r)
	s.dispatcher = dispatch.New(tools, resources, prompts, cfg.Logger, cfg.Name, cfg.Version).
		WithInstructions(cfg.Instructions).
		WithCapabilities(cfg.DeclaredCapabilities)

	if cfg.AutoloadDir != "" {
		loader := autoload.New(cfg.AutoloadDir, r, catalog, cfg.Logger)
		toolCount, resourceCount, promptCount := loader.Load()
		cfg.Logger.Info("autoload: loaded tools=%d resources=%d prompts=%d from %s", toolCount, resourceCount, promptCount, cfg.AutoloadDir)

		if cfg.WatchAutoload {
			w, err := autoload.NewWatcher(loader, cfg.Logger, func(tools, resources, prompts int) {})
			if err != nil {
				return nil, err
			}
			s.watcher = w
			go w.Run()
		}
	}

	return s, nil
}

// Registry exposes the server's registry so callers can register
// built-in tools/resources/prompts before Run.
func (s *Server) Registry() *registry.Registry { return s.registry }

// Run starts the transport and dispatches requests until ctx is
// canceled or a SIGINT/SIGTERM is received, mirroring the teacher's
// signal-handling Start() but parameterized by an explicit context
// instead of blocking forever.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	transportErr := make(chan error, 1)
	go func() { transportErr <- s.transport.Run(ctx) }()

	go s.processRequests(ctx)

	select {
	case err := <-transportErr:
		return err
	case sig := <-sigCh:
		s.cfg.Logger.Info("server: received signal %v, shutting down", sig)
		cancel()
		return <-transportErr
	case <-ctx.Done():
		return <-transportErr
	}
}

// processRequests drains the transport's inbound channel until the
// transport closes it, and dispatches each request, writing the
// response back through the same transport.
// Over HTTP, each request is handled on its own goroutine so a slow
// tool call on one session never blocks another. Over stdio there is
// exactly one connection and one client waiting on replies in the
// order it sent them, so requests are dispatched synchronously, one
// at a time, to keep response order matching request order.
func (s *Server) processRequests(ctx context.Context) {
	_, concurrent := s.transport.(*transport.HTTPTransport)
	for req := range s.transport.Inbound() {
		if concurrent {
			go s.handleOne(ctx, req)
		} else {
			s.handleOne(ctx, req)
		}
	}
}

func (s *Server) handleOne(ctx context.Context, req *protocol.JsonRpcRequest) {
	sess := s.sessionFor(req)
	resp := s.dispatcher.Dispatch(sess, req)
	if resp == nil {
		return
	}
	if err := s.transport.Send(ctx, resp); err != nil {
		s.cfg.Logger.Error("server: failed to send response for %s: %v", req.Method, err)
	}
}

// sessionFor resolves the dispatch.Session a request belongs to. Over
// HTTP each Mcp-Session-Id carries its own session; stdio has exactly
// one session for the transport's whole lifetime.
func (s *Server) sessionFor(req *protocol.JsonRpcRequest) *dispatch.Session {
	if ht, ok := s.transport.(*transport.HTTPTransport); ok {
		if sess, ok := ht.SessionFor(req.ID); ok {
			return sess
		}
		return &dispatch.Session{}
	}
	return &s.stdioSess
}

func (s *Server) Stop() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	return s.transport.Close()
}
