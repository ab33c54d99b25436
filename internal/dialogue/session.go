package dialogue

import (
	"sync"

	"github.com/Alex20507/tg-card/types"
)

// Session is the ephemeral dialogue state of one identity. It lives in
// process memory only: a restart simply means an interrupted entry has
// to be started over.
type Session struct {
	// Step tags the current position in the dialogue. Steps are an
	// open string set, not an enum, because admin and user flows walk
	// different sequences.
	Step string

	// Role is a snapshot of the identity's role at dialogue start.
	Role types.Role

	// Fields holds the values collected so far, keyed by field key.
	Fields map[string]string

	// Target is the external id of the card being edited, if any.
	Target string
}

// Store keeps dialogue sessions keyed by identity. The interface
// exists so the in-memory implementation can be swapped for a
// persistent one without touching dialogue logic.
type Store interface {
	Get(identity int64) (Session, bool)
	Put(identity int64, session Session)
	Clear(identity int64)
}

// MemoryStore is the default process-local session store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

func (s *MemoryStore) Get(identity int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[identity]
	return session, ok
}

func (s *MemoryStore) Put(identity int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[identity] = session
}

func (s *MemoryStore) Clear(identity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, identity)
}
