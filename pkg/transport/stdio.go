package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/kestrel-mcp/corekit/pkg/mcplog"
	"github.com/kestrel-mcp/corekit/pkg/protocol"
)

// StdioTransport reads one JSON-RPC message per line from an input
// stream and writes one JSON-RPC message per line to an output stream.
// It runs a single cooperative read loop: requests are handed out over
// Inbound() in the order they were read, and the caller is expected to
// dispatch and Send() a response before the next line is read, since
// stdio has no way to correlate an out-of-order response with its
// request beyond line ordering.
type StdioTransport struct {
	in     *bufio.Scanner
	out    *bufio.Writer
	outMu  sync.Mutex
	log    mcplog.Logger
	inbox  chan *protocol.JsonRpcRequest
	mu     sync.Mutex
	state  State
}

// NewStdioTransport wraps r/w as a line-delimited JSON-RPC transport.
// r is typically os.Stdin, w typically os.Stdout. Diagnostics go
// through log, never through w, since w is the protocol wire.
func NewStdioTransport(r io.Reader, w io.Writer, log mcplog.Logger) *StdioTransport {
	if log == nil {
		log = mcplog.Noop{}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &StdioTransport{
		in:    scanner,
		out:   bufio.NewWriter(w),
		log:   log,
		inbox: make(chan *protocol.JsonRpcRequest, 1),
		state: Created,
	}
}

func (t *StdioTransport) Inbound() <-chan *protocol.JsonRpcRequest { return t.inbox }

func (t *StdioTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *StdioTransport) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Run reads lines until EOF or ctx is canceled, decoding each into a
// request on Inbound(). A line that fails to decode gets its error
// written directly back on the wire, since without a parsed id there is
// nothing for a caller to correlate a response to.
func (t *StdioTransport) Run(ctx context.Context) error {
	t.setState(Connected)
	defer close(t.inbox)
	defer t.setState(Closed)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		for t.in.Scan() {
			line := append([]byte(nil), t.in.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- t.in.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if len(line) == 0 {
				continue
			}
			req, rpcErr := protocol.Decode(line)
			if rpcErr != nil {
				t.log.Warn("stdio: %s", rpcErr.Message)
				_ = t.writeLine(protocol.NewErrorResponse(rpcErr.Code, rpcErr.Message, nil, nil))
				continue
			}
			select {
			case t.inbox <- req:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Send writes one response as a single line of JSON followed by a
// newline.
func (t *StdioTransport) Send(ctx context.Context, resp *protocol.JsonRpcResponse) error {
	return t.writeLine(resp)
}

func (t *StdioTransport) writeLine(resp *protocol.JsonRpcResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("transport: encode response: %w", err)
	}
	t.outMu.Lock()
	defer t.outMu.Unlock()
	if _, err := t.out.Write(b); err != nil {
		return err
	}
	if err := t.out.WriteByte('\n'); err != nil {
		return err
	}
	return t.out.Flush()
}

func (t *StdioTransport) Close() error {
	t.setState(Closed)
	return nil
}
