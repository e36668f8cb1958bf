// forum/handlers/sessions.go
package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "forum_session"

type session struct {
	userID  int64
	expires time.Time
}

// SessionStore maps opaque session tokens to logged-in user ids. Sessions
// live in memory only; restarting the process logs everyone out.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
	ttl      time.Duration
	stop     chan struct{}
}

// NewSessionStore creates a store whose sessions expire after ttl. Expired
// entries are swept every prune interval, until Close is called.
func NewSessionStore(ttl, prune time.Duration) *SessionStore {
	ss := &SessionStore{
		sessions: make(map[string]session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go ss.cleanup(prune)
	return ss
}

// Close stops the background sweeper. Call at most once.
func (ss *SessionStore) Close() {
	close(ss.stop)
}

// Create opens a session for userID and returns its token.
func (ss *SessionStore) Create(userID int64) string {
	token := uuid.New().String()
	ss.mu.Lock()
	ss.sessions[token] = session{userID: userID, expires: time.Now().Add(ss.ttl)}
	ss.mu.Unlock()
	return token
}

// Get resolves a token to a user id.
func (ss *SessionStore) Get(token string) (int64, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.sessions[token]
	if !ok || time.Now().After(s.expires) {
		delete(ss.sessions, token)
		return 0, false
	}
	return s.userID, true
}

// Destroy ends the session for token, if any.
func (ss *SessionStore) Destroy(token string) {
	ss.mu.Lock()
	delete(ss.sessions, token)
	ss.mu.Unlock()
}

// DestroyUser ends every session belonging to userID. Called when the
// account is deleted.
func (ss *SessionStore) DestroyUser(userID int64) {
	ss.mu.Lock()
	for token, s := range ss.sessions {
		if s.userID == userID {
			delete(ss.sessions, token)
		}
	}
	ss.mu.Unlock()
}

func (ss *SessionStore) cleanup(prune time.Duration) {
	ticker := time.NewTicker(prune)
	defer ticker.Stop()
	for {
		select {
		case <-ss.stop:
			return
		case <-ticker.C:
		}
		now := time.Now()
		ss.mu.Lock()
		for token, s := range ss.sessions {
			if now.After(s.expires) {
				delete(ss.sessions, token)
			}
		}
		ss.mu.Unlock()
	}
}
