package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"architect-assistant/session"
	"architect-assistant/session/session_object"
)

// Store is a bounded in-process session registry. Expired sessions are
// dropped opportunistically on EnsureSession; when the cap is reached
// the session closest to expiry is evicted. No background jobs.
type Store struct {
	sessions    map[string]*session_object.Session
	maxSessions int
	mu          sync.Mutex
}

func NewInMemorySessionStore(maxSessions int) *Store {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	return &Store{
		sessions:    make(map[string]*session_object.Session),
		maxSessions: maxSessions,
	}
}

var _ session.Store = (*Store)(nil)

func (store *Store) EnsureSession(id string, ttl time.Duration) (session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.evictExpiredLocked()

	if id != "" {
		if sess, ok := store.sessions[id]; ok {
			sess.Expire(ttl)
			return sess, nil
		}
	} else {
		id = uuid.NewString()
	}

	if len(store.sessions) >= store.maxSessions {
		store.evictSoonestLocked()
	}

	sess := session_object.NewSession(id, ttl)
	store.sessions[id] = sess
	return sess, nil
}

func (store *Store) GetSession(id string) (session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	sess, ok := store.sessions[id]
	if !ok || sess.Expired() {
		return nil, nil
	}
	return sess, nil
}

// Len reports the number of live sessions; used by tests and stats.
func (store *Store) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessions)
}

func (store *Store) evictExpiredLocked() {
	for id, sess := range store.sessions {
		if sess.Expired() {
			delete(store.sessions, id)
		}
	}
}

func (store *Store) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for id, sess := range store.sessions {
		at := sess.ExpiresAt()
		if victim == "" || at.Before(soonest) {
			victim = id
			soonest = at
		}
	}
	if victim != "" {
		delete(store.sessions, victim)
	}
}
