package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// DefaultSessionIdleTTL is how long an unused conversation is kept.
const DefaultSessionIdleTTL = 30 * time.Minute

// Session is one conversation's state and history.
// Callers hold it locked for a whole turn via SessionStore.Acquire.
type Session struct {
	mu      sync.Mutex
	State   domain.ConversationState
	history []domain.Message
	limit   int

	// guarded by store.mu
	store    *SessionStore
	lastUsed time.Time
	holders  int
}

// Unlock releases the session acquired from SessionStore.Acquire.
func (s *Session) Unlock() {
	s.store.release(s)
	s.mu.Unlock()
}

// Append records a message, keeping at most the history limit.
func (s *Session) Append(role domain.Role, content string) {
	s.history = append(s.history, domain.Message{Role: role, Content: content})
	if s.limit > 0 && len(s.history) > s.limit {
		s.history = append([]domain.Message(nil), s.history[len(s.history)-s.limit:]...)
	}
}

// Recent returns up to n of the newest messages, oldest first.
func (s *Session) Recent(n int) []domain.Message {
	start := 0
	if n > 0 && len(s.history) > n {
		start = len(s.history) - n
	}
	out := make([]domain.Message, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

func (s *Session) reset() {
	s.State.Reset()
	s.history = nil
}

// SessionStore maps conversation IDs to sessions.
// The map has its own lock; each session has another held per turn.
// Sessions idle for longer than the TTL are dropped on a later Acquire.
type SessionStore struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	historyLimit int
	idleTTL      time.Duration
	lastSweep    time.Time
	now          func() time.Time
}

// NewSessionStore creates a store keeping historyLimit messages per session
// and evicting sessions after DefaultSessionIdleTTL without use.
func NewSessionStore(historyLimit int) *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]*Session),
		historyLimit: historyLimit,
		idleTTL:      DefaultSessionIdleTTL,
		now:          time.Now,
	}
}

// WithIdleTTL sets the idle eviction time. Zero or less keeps sessions
// forever.
func (s *SessionStore) WithIdleTTL(ttl time.Duration) *SessionStore {
	s.mu.Lock()
	s.idleTTL = ttl
	s.mu.Unlock()
	return s
}

// Acquire returns the locked session for id, creating it if needed.
func (s *SessionStore) Acquire(id string) *Session {
	s.mu.Lock()
	now := s.now()
	s.evictIdle(now)
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{limit: s.historyLimit, store: s}
		s.sessions[id] = sess
	}
	sess.holders++
	sess.lastUsed = now
	s.mu.Unlock()

	sess.mu.Lock()
	return sess
}

func (s *SessionStore) release(sess *Session) {
	s.mu.Lock()
	sess.holders--
	sess.lastUsed = s.now()
	s.mu.Unlock()
}

// evictIdle drops sessions nobody holds or waits on that have been idle
// past the TTL. It sweeps at most once per quarter TTL. Callers hold s.mu.
func (s *SessionStore) evictIdle(now time.Time) {
	if s.idleTTL <= 0 || now.Sub(s.lastSweep) < s.idleTTL/4 {
		return
	}
	s.lastSweep = now
	for id, sess := range s.sessions {
		if sess.holders == 0 && now.Sub(sess.lastUsed) > s.idleTTL {
			delete(s.sessions, id)
		}
	}
}

// Reset clears the state and history of id. Unknown IDs are ignored.
func (s *SessionStore) Reset(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.mu.Lock()
	sess.reset()
	sess.mu.Unlock()
}

// Len returns the number of known conversations.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
