// Package transport implements the two wire transports the server core
// speaks: line-delimited stdio and Streamable HTTP with SSE. Both
// satisfy the same Transport interface so the dispatcher never knows
// which one it's talking over.
package transport

import (
	"context"

	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// State is a transport's lifecycle stage.
type State int

const (
	Created State = iota
	Connected
	Draining
	Closed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Connected:
		return "connected"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transport is the abstract contract both stdio and Streamable HTTP
// satisfy. Inbound() delivers decoded requests as they arrive; Send()
// writes one response (or server-initiated notification) back to
// whichever peer originated the correlated request. Peer correlation
// itself is transport-specific and invisible to callers: stdio
// correlates by single-threaded ordering, HTTP by response slot keyed
// on request id.
type Transport interface {
	// Inbound returns a channel of decoded requests. It is closed when
	// the transport can no longer read any more input.
	Inbound() <-chan *protocol.JsonRpcRequest

	// Send writes a response or notification back to the transport.
	// For stdio this is just the next line on stdout; for HTTP it is
	// routed to the response slot or SSE stream matching the
	// response's id.
	Send(ctx context.Context, resp *protocol.JsonRpcResponse) error

	// Run starts the transport's read loop and blocks until ctx is
	// canceled or the transport's input is exhausted.
	Run(ctx context.Context) error

	// Close transitions the transport to Closed, releasing any
	// resources (open connections, goroutines, SSE clients).
	Close() error

	// State reports the current lifecycle stage.
	State() State
}
