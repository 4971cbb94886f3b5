package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kestrel-mcp/corekit/pkg/dispatch"
	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/mcptime"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

const (
	headerSessionID      = "Mcp-Session-Id"
	headerProtocolVer    = "MCP-Protocol-Version"
	heartbeatInterval    = 30 * time.Second
	responseSlotCapacity = 1
)

// HTTPTransport implements Streamable HTTP + SSE per the 2025-06-18
// revision: a single /mcp endpoint that accepts POST for JSON-RPC
// requests and notifications, GET to open an SSE stream for
// server-initiated messages, and DELETE to end a session. Session
// identity is carried in the Mcp-Session-Id header, minted when an
// initialize request arrives (before it is dispatched) and required on
// every later request except the notifications/initialized
// notification.
type HTTPTransport struct {
	echo           *echo.Echo
	addr           string
	path           string
	log            mcplog.Logger
	clock          mcptime.Clock
	sess           *sessionStore
	sse            *sseBroadcaster
	inbox          chan *protocol.JsonRpcRequest
	slots          map[string]chan *protocol.JsonRpcResponse
	slotsMu        sync.Mutex
	bySlot         map[string]*httpSession
	allowedOrigins []string

	mu    sync.Mutex
	state State

	server *http.Server
}

// Option configures optional HTTPTransport behavior not covered by
// NewHTTPTransport's required parameters.
type Option func(*HTTPTransport)

// WithAllowedOrigins restricts POST/GET/DELETE requests to the given
// Origin values. A request carrying an Origin header not in this list
// is rejected with 403. An empty or nil list (the default) performs
// no origin check at all, since a non-browser client never sends one.
func WithAllowedOrigins(origins ...string) Option {
	return func(t *HTTPTransport) {
		t.allowedOrigins = origins
	}
}

// NewHTTPTransport builds a Streamable HTTP transport listening on addr,
// serving the MCP endpoint at path (conventionally "/mcp").
func NewHTTPTransport(addr, path string, log mcplog.Logger, clock mcptime.Clock, opts ...Option) *HTTPTransport {
	if log == nil {
		log = mcplog.Noop{}
	}
	if clock == nil {
		clock = mcptime.System{}
	}
	t := &HTTPTransport{
		echo:   echo.New(),
		addr:   addr,
		path:   path,
		log:    log,
		clock:  clock,
		sess:   newSessionStore(),
		sse:    newSSEBroadcaster(),
		inbox:  make(chan *protocol.JsonRpcRequest, 16),
		slots:  make(map[string]chan *protocol.JsonRpcResponse),
		bySlot: make(map[string]*httpSession),
		state:  Created,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.echo.HideBanner = true
	t.echo.HidePort = true
	t.echo.POST(path, t.handlePost)
	t.echo.GET(path, t.handleGet)
	t.echo.DELETE(path, t.handleDelete)
	return t
}

func (t *HTTPTransport) Inbound() <-chan *protocol.JsonRpcRequest { return t.inbox }

func (t *HTTPTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *HTTPTransport) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Run starts the HTTP listener and blocks until ctx is canceled.
func (t *HTTPTransport) Run(ctx context.Context) error {
	t.setState(Connected)
	t.server = &http.Server{Addr: t.addr, Handler: t.echo}

	errCh := make(chan error, 1)
	go func() {
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.setState(Draining)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := t.server.Shutdown(shutdownCtx)
		t.setState(Closed)
		close(t.inbox)
		return err
	case err := <-errCh:
		t.setState(Closed)
		close(t.inbox)
		return err
	}
}

func (t *HTTPTransport) Close() error {
	t.setState(Closed)
	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

// Send routes a response to whichever POST request is waiting on its
// response slot, keyed by the JSON-encoded id. Responses whose id has
// no open slot (a stray notification, or a slot that already timed
// out) are broadcast over SSE instead, to every stream open for the
// transport's current session, since a server-initiated message has no
// POST to return through.
func (t *HTTPTransport) Send(ctx context.Context, resp *protocol.JsonRpcResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	key := idKey(resp.ID)
	t.slotsMu.Lock()
	slot, ok := t.slots[key]
	t.slotsMu.Unlock()
	if ok {
		select {
		case slot <- resp:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	t.sess.mu.RLock()
	current := t.sess.current
	t.sess.mu.RUnlock()
	if current != nil {
		t.sse.send(current.id, b)
	}
	return nil
}

// SessionFor returns the dispatch.Session backing the in-flight request
// with the given id, if that request arrived with a known
// Mcp-Session-Id. The stdio transport has no equivalent: callers should
// type-assert the Transport to *HTTPTransport before using this, and
// fall back to a single process-lifetime Session otherwise.
func (t *HTTPTransport) SessionFor(id any) (*dispatch.Session, bool) {
	t.slotsMu.Lock()
	defer t.slotsMu.Unlock()
	sess, ok := t.bySlot[idKey(id)]
	if !ok {
		return nil, false
	}
	return &sess.dispatchSession, true
}

func idKey(id any) string {
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Sprintf("%v", id)
	}
	return string(b)
}

func (t *HTTPTransport) handlePost(c echo.Context) error {
	if ct := c.Request().Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return c.JSON(http.StatusUnsupportedMediaType, errorBody("Content-Type must be application/json"))
	}

	if err := validateAcceptHeader(c.Request()); err != nil {
		return c.JSON(http.StatusNotAcceptable, errorBody(err.Error()))
	}

	if clientVer := c.Request().Header.Get(headerProtocolVer); clientVer != "" && clientVer != protocol.ProtocolVersion {
		return c.JSON(http.StatusBadRequest, protocol.NewErrorResponse(protocol.ErrBadParams, fmt.Sprintf("unsupported %s %q", headerProtocolVer, clientVer), map[string]any{"supported": []string{protocol.ProtocolVersion}}, nil))
	}

	if err := t.checkOrigin(c.Request()); err != nil {
		return c.JSON(http.StatusForbidden, errorBody(err.Error()))
	}

	body, err := readBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}

	req, rpcErr := protocol.Decode(body)
	if rpcErr != nil {
		return c.JSON(http.StatusBadRequest, protocol.NewErrorResponse(rpcErr.Code, rpcErr.Message, nil, nil))
	}

	sessionID := c.Request().Header.Get(headerSessionID)
	var sess *httpSession
	if req.Method == string(protocol.MethodInitialize) {
		sess = t.sess.create()
		c.Response().Header().Set(headerSessionID, sess.id)
		c.Response().Header().Set(headerProtocolVer, protocol.ProtocolVersion)
	} else if sessionID != "" {
		var ok bool
		sess, ok = t.sess.get(sessionID)
		if !ok {
			return c.JSON(http.StatusBadRequest, protocol.NewErrorResponse(protocol.ErrInvalidSession, "Invalid session", nil, nil))
		}
	} else if sessionRequired(req.Method) {
		return c.JSON(http.StatusBadRequest, protocol.NewErrorResponse(protocol.ErrInvalidSession, "Session ID required", nil, nil))
	}

	if req.IsNotification() {
		select {
		case t.inbox <- req:
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
		return c.NoContent(http.StatusAccepted)
	}

	key := idKey(req.ID)
	slot := make(chan *protocol.JsonRpcResponse, responseSlotCapacity)
	t.slotsMu.Lock()
	t.slots[key] = slot
	if sess != nil {
		t.bySlot[key] = sess
	}
	t.slotsMu.Unlock()
	defer func() {
		t.slotsMu.Lock()
		delete(t.slots, key)
		delete(t.bySlot, key)
		t.slotsMu.Unlock()
	}()

	select {
	case t.inbox <- req:
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	}

	select {
	case resp := <-slot:
		return c.JSON(http.StatusOK, resp)
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	}
}

func (t *HTTPTransport) handleGet(c echo.Context) error {
	if err := t.checkOrigin(c.Request()); err != nil {
		return c.JSON(http.StatusForbidden, errorBody(err.Error()))
	}
	if !acceptsEventStream(c.Request()) {
		return c.JSON(http.StatusNotAcceptable, errorBody("Accept header must include text/event-stream"))
	}

	sessionID := c.Request().Header.Get(headerSessionID)
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, protocol.NewErrorResponse(protocol.ErrInvalidSession, "Session ID required", nil, nil))
	}
	if _, ok := t.sess.get(sessionID); !ok {
		return c.JSON(http.StatusBadRequest, protocol.NewErrorResponse(protocol.ErrInvalidSession, "Invalid session", nil, nil))
	}

	w := c.Response()
	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorBody("streaming unsupported"))
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	client := &sseClient{w: w, flusher: flusher, events: make(chan []byte, 8), done: make(chan struct{})}
	t.sse.register(sessionID, client)
	defer t.sse.unregister(sessionID, client)

	ticker := t.clock.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	go client.serve()

	connected, _ := json.Marshal(map[string]string{"type": "connection", "status": "connected"})
	client.events <- formatSSEEvent(t.sse.nextEventID(), "connection", connected)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			close(client.done)
			return nil
		case <-ticker.C():
			select {
			case client.events <- []byte(": heartbeat\n\n"):
			default:
			}
		}
	}
}

func (t *HTTPTransport) handleDelete(c echo.Context) error {
	if err := t.checkOrigin(c.Request()); err != nil {
		return c.JSON(http.StatusForbidden, errorBody(err.Error()))
	}
	sessionID := c.Request().Header.Get(headerSessionID)
	if sessionID == "" {
		return c.NoContent(http.StatusBadRequest)
	}
	t.sess.delete(sessionID)
	return c.NoContent(http.StatusNoContent)
}

// sessionRequired reports whether method needs an established session
// before it can be served. Every method other than the
// notifications/initialized notification does; initialize itself
// never reaches this check, since it mints the session.
func sessionRequired(method string) bool {
	return method != string(protocol.MethodInitialized)
}

// validateAcceptHeader enforces that a POST carries an Accept header
// naming both response forms a reply can take: a plain JSON-RPC
// response, or (for a request the server chooses to answer over SSE
// instead) an event stream. An absent Accept header is treated as
// accepting anything, since many non-browser JSON-RPC clients never
// send one.
func validateAcceptHeader(r *http.Request) error {
	accept := r.Header.Get("Accept")
	if accept == "" || strings.Contains(accept, "*/*") {
		return nil
	}
	if strings.Contains(accept, "application/json") && strings.Contains(accept, "text/event-stream") {
		return nil
	}
	return fmt.Errorf("Accept header must include both application/json and text/event-stream")
}

// acceptsEventStream reports whether a GET request's Accept header
// admits an SSE stream. An absent header is treated as accepting
// anything, for the same reason validateAcceptHeader is lenient.
func acceptsEventStream(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/event-stream") || strings.Contains(accept, "*/*")
}

// checkOrigin rejects a request whose Origin header names something
// not in allowedOrigins. A request with no Origin header (the normal
// case for non-browser clients) always passes; an empty
// allowedOrigins list disables the check entirely.
func (t *HTTPTransport) checkOrigin(r *http.Request) error {
	if len(t.allowedOrigins) == 0 {
		return nil
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}
	for _, allowed := range t.allowedOrigins {
		if origin == allowed {
			return nil
		}
	}
	return fmt.Errorf("origin %q is not allowed", origin)
}

func readBody(c echo.Context) ([]byte, error) {
	defer c.Request().Body.Close()
	limited := http.MaxBytesReader(c.Response(), c.Request().Body, 10<<20)
	return io.ReadAll(limited)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
