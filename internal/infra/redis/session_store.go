package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lms-assessment-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions stay in a local map so the in-process broadcast keeps working;
// Redis records which sessions are live and for whom:
//
//	HSET assessment:session:{id} assessment_id {aid} learner_id {lid}
//
// The key's TTL is the session's idle timeout. Every Get refreshes it, and a
// session whose key has expired is dropped from the local map.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	// best-effort liveness marker
	ctx := context.Background()
	key := s.key(session.ID())
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "assessment_id", session.AssessmentID(), "learner_id", session.LearnerID())
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	live, err := s.touch(context.Background(), sessionID)
	if err != nil {
		// Redis unavailable: keep serving what this process holds
		return session, true
	}
	if !live {
		s.evict(sessionID, session)
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// Sweep drops local sessions whose Redis key has expired and reports how many
// were removed.
func (s *SessionStore) Sweep(ctx context.Context) int {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	if len(ids) == 0 {
		return 0
	}

	pipe := s.client.Pipeline()
	checks := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, s.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0
	}

	removed := 0
	for i, id := range ids {
		if checks[i].Val() > 0 {
			continue
		}
		s.mu.RLock()
		session := s.sessions[id]
		s.mu.RUnlock()
		if session != nil && s.evict(id, session) {
			removed++
		}
	}
	return removed
}

// Len reports how many sessions this process holds.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// touch refreshes the liveness key and reports whether it still existed.
func (s *SessionStore) touch(ctx context.Context, sessionID string) (bool, error) {
	key := s.key(sessionID)
	if s.ttl <= 0 {
		n, err := s.client.Exists(ctx, key).Result()
		return n > 0, err
	}
	return s.client.Expire(ctx, key, s.ttl).Result()
}

// evict removes session if it is still the one stored under id.
func (s *SessionStore) evict(id string, session *app.Session) bool {
	s.mu.Lock()
	current, ok := s.sessions[id]
	if ok && current == session {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok || current != session {
		return false
	}
	session.Close()
	return true
}

func (s *SessionStore) key(sessionID string) string {
	return "assessment:session:" + sessionID
}
