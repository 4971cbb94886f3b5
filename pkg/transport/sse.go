package transport

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
)

// sseClient is one open GET /mcp SSE stream. events arrive via the
// broadcaster's send and are flushed as they're written, matching the
// teacher lineage's fmt.Fprintf-then-Flush SSE framing.
type sseClient struct {
	w       http.ResponseWriter
	flusher http.Flusher
	events  chan []byte
	done    chan struct{}
}

// sseBroadcaster fans server-initiated messages out to every SSE stream
// open for a session, tagging each event with a monotonically
// increasing id per transport so a reconnecting client (via
// Last-Event-ID) could in principle resume — resumption itself is out
// of scope, but the id sequence is maintained so nothing downstream
// assumes otherwise.
type sseBroadcaster struct {
	mu      sync.RWMutex
	clients map[string]map[*sseClient]struct{} // sessionID -> clients
	nextID  atomic.Int64
}

func newSSEBroadcaster() *sseBroadcaster {
	return &sseBroadcaster{clients: make(map[string]map[*sseClient]struct{})}
}

func (b *sseBroadcaster) register(sessionID string, c *sseClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[sessionID] == nil {
		b.clients[sessionID] = make(map[*sseClient]struct{})
	}
	b.clients[sessionID][c] = struct{}{}
}

func (b *sseBroadcaster) unregister(sessionID string, c *sseClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.clients[sessionID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(b.clients, sessionID)
		}
	}
}

// send writes payload to every client currently registered for
// sessionID. The client set is copied under the read lock, then
// iterated without holding it, so a slow client can't block
// registration of new ones.
func (b *sseBroadcaster) send(sessionID string, payload []byte) {
	b.mu.RLock()
	set := b.clients[sessionID]
	snapshot := make([]*sseClient, 0, len(set))
	for c := range set {
		snapshot = append(snapshot, c)
	}
	b.mu.RUnlock()

	id := b.nextID.Add(1)
	framed := formatSSEEvent(id, "message", payload)
	for _, c := range snapshot {
		select {
		case c.events <- framed:
		case <-c.done:
		}
	}
}

// nextEventID hands out the next id in the shared sequence, letting a
// caller outside send (the initial per-connection event, for instance)
// stay on the same numbering as broadcast messages.
func (b *sseBroadcaster) nextEventID() int64 {
	return b.nextID.Add(1)
}

func formatSSEEvent(id int64, event string, payload []byte) []byte {
	return []byte(fmt.Sprintf("event: %s\nid: %d\ndata: %s\n\n", event, id, payload))
}

// serve writes queued events to w until done fires, flushing after
// every write so SSE clients see messages as they're sent rather than
// buffered.
func (c *sseClient) serve() {
	for {
		select {
		case ev := <-c.events:
			if _, err := c.w.Write(ev); err != nil {
				return
			}
			c.flusher.Flush()
		case <-c.done:
			return
		}
	}
}
