package memory

import (
	"context"
	"sync"
	"time"

	"lms-assessment-service/internal/app"
)

const defaultIdleTTL = 2 * time.Hour

type storedSession struct {
	session  *app.Session
	lastSeen time.Time
}

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions untouched for longer than the idle TTL are evicted lazily on Get
// and in bulk by Sweep.
type SessionStore struct {
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*storedSession
}

// SessionStoreOption customises a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithIdleTTL sets how long an untouched session survives. Zero keeps
// sessions until deleted.
func WithIdleTTL(ttl time.Duration) SessionStoreOption {
	return func(s *SessionStore) { s.idleTTL = ttl }
}

// WithStoreClock is test-only for deterministic expiry.
func WithStoreClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		idleTTL:  defaultIdleTTL,
		now:      time.Now,
		sessions: make(map[string]*storedSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = &storedSession{session: session, lastSeen: s.now()}
}

// Get returns a live session and refreshes its idle timer.
func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.sessions, sessionID)
		entry.session.Close()
		return nil, false
	}
	entry.lastSeen = now
	return entry.session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sweep evicts every idle session and reports how many were removed.
func (s *SessionStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
			entry.session.Close()
			removed++
		}
	}
	return removed
}

// Len reports how many sessions are held, idle ones included until swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(entry *storedSession, now time.Time) bool {
	return s.idleTTL > 0 && now.Sub(entry.lastSeen) > s.idleTTL
}
