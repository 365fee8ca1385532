package chat

import (
	"sync"
	"time"
)

type state int

const (
	stateIdle state = iota
	stateAwaitingYear
)

type session struct {
	state    state
	lastSeen time.Time
}

// sessionStore keeps per-conversation state in memory. Sessions idle past
// the TTL are evicted by a janitor goroutine so abandoned conversations do
// not accumulate.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

func newSessionStore(ttl, sweepInterval time.Duration) *sessionStore {
	s := &sessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
	go s.janitor(sweepInterval)
	return s
}

// state returns the session's current state as a value, copied under the
// lock. Session pointers never escape the store, so concurrent messages on
// the same conversation cannot race on the state field.
func (s *sessionStore) state(sessionID string) state {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{state: stateIdle}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = time.Now()
	return sess.state
}

func (s *sessionStore) setState(sessionID string, st state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		// The janitor may have evicted the session mid-conversation.
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.state = st
	sess.lastSeen = time.Now()
}

func (s *sessionStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		for id, sess := range s.sessions {
			if time.Since(sess.lastSeen) > s.ttl {
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
	}
}
