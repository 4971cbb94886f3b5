package transport

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kestrel-mcp/corekit/pkg/dispatch"
)

// httpSession extends dispatch.Session with the HTTP-specific state the
// Streamable HTTP transport needs: the id handed out in Mcp-Session-Id.
// The protocolVersion field is never assigned; version checks compare
// against protocol.ProtocolVersion directly.
type httpSession struct {
	id              string
	dispatchSession dispatch.Session
	protocolVersion string
}

// sessionStore is a concurrency-safe map of session id to session state,
// grounded on the same sync.Map-backed pattern the pack's fyrsmithlabs
// example uses, realized here with an RWMutex since sessions are read
// far more often than created. A session id, once minted, remains
// constant until that session is deleted: create is idempotent and
// returns the existing session on every call while it exists, rather
// than minting a new one per initialize. After delete, the next create
// mints a new id.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*httpSession
	current  *httpSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*httpSession)}
}

// create returns the transport's single session, allocating it with a
// fresh random id on the first call and returning that same session
// on every subsequent call.
func (s *sessionStore) create() *httpSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return s.current
	}
	sess := &httpSession{id: uuid.NewString()}
	s.sessions[sess.id] = sess
	s.current = sess
	return sess
}

func (s *sessionStore) get(id string) (*httpSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// delete removes a session, clearing it from current so a later
// initialize can mint a new one.
func (s *sessionStore) delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	if s.current != nil && s.current.id == id {
		s.current = nil
	}
	s.mu.Unlock()
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
