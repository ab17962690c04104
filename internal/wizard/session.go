// Package wizard implements the guided entity-creation state machine:
// per-operator session storage, the transition engine, bounded image
// accumulation and the confirmation protocol.
package wizard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// sessionKey identifies one active wizard: at most one session exists per
// (owner, kind) pair.
type sessionKey struct {
	Owner string
	Kind  models.WizardKind
}

// SessionStore is the concurrent map of active wizard sessions. Operations on
// the same (owner, kind) key are serialized through a per-key mutex so the
// read-apply-store span of a transition is one critical section; operations on
// different keys only contend on the short map guard.
type SessionStore struct {
	mu       sync.Mutex
	locks    map[sessionKey]*sync.Mutex
	sessions map[sessionKey]*models.Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	slog.Debug("Creating SessionStore")
	return &SessionStore{
		locks:    make(map[sessionKey]*sync.Mutex),
		sessions: make(map[sessionKey]*models.Session),
	}
}

// lockFor returns the mutex serializing operations on key, creating it on
// first use. Key mutexes are never removed; the set is bounded by the number
// of distinct operators seen.
func (s *SessionStore) lockFor(key sessionKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Start creates a fresh session for (owner, kind), replacing any existing one.
// Restart is idempotent: prior partial state is discarded.
func (s *SessionStore) Start(owner string, kind models.WizardKind) *models.Session {
	key := sessionKey{Owner: owner, Kind: kind}
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	sess := models.NewSession(owner, kind)
	s.mu.Lock()
	s.sessions[key] = sess
	s.mu.Unlock()

	slog.Info("SessionStore started session", "owner", owner, "kind", kind, "step", sess.Step)
	return sess.Clone()
}

// Get returns a copy of the active session for (owner, kind), or false when
// none exists. The copy is safe to read without holding the key lock; all
// mutation goes through Update.
func (s *SessionStore) Get(owner string, kind models.WizardKind) (*models.Session, bool) {
	key := sessionKey{Owner: owner, Kind: kind}
	s.mu.Lock()
	sess, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// Clear removes the session for (owner, kind), if any.
func (s *SessionStore) Clear(owner string, kind models.WizardKind) {
	key := sessionKey{Owner: owner, Kind: kind}
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	slog.Debug("SessionStore cleared session", "owner", owner, "kind", kind)
}

// Update runs fn with the current session for (owner, kind) under the per-key
// lock. fn receives nil when no session is active and returns the replacement
// session; returning nil removes the entry. The stored value is always
// replaced whole, never mutated in place.
func (s *SessionStore) Update(owner string, kind models.WizardKind, fn func(*models.Session) *models.Session) {
	key := sessionKey{Owner: owner, Kind: kind}
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	cur := s.sessions[key]
	s.mu.Unlock()

	next := fn(cur)

	s.mu.Lock()
	if next == nil {
		delete(s.sessions, key)
	} else {
		next.UpdatedAt = time.Now()
		s.sessions[key] = next
	}
	s.mu.Unlock()
}

// Active returns the kind of the owner's active session, checking kinds in
// routing priority order. The second return is false when no wizard is active.
func (s *SessionStore) Active(owner string) (models.WizardKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range models.AllWizardKinds {
		if _, ok := s.sessions[sessionKey{Owner: owner, Kind: kind}]; ok {
			return kind, true
		}
	}
	return "", false
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartJanitor launches a background sweep that expires sessions idle longer
// than ttl. Expiry is an implicit cancel, not a silent deletion: onExpire
// receives a copy of each expired session so the integration layer can retract
// its prompts and acknowledge the cancellation. The sweep stops when ctx is done.
func (s *SessionStore) StartJanitor(ctx context.Context, ttl, interval time.Duration, onExpire func(*models.Session)) {
	if ttl <= 0 {
		slog.Debug("SessionStore janitor disabled", "ttl", ttl)
		return
	}
	slog.Info("SessionStore janitor starting", "ttl", ttl, "interval", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(ttl, onExpire)
			case <-ctx.Done():
				slog.Debug("SessionStore janitor stopping")
				return
			}
		}
	}()
}

func (s *SessionStore) sweep(ttl time.Duration, onExpire func(*models.Session)) {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	candidates := make([]sessionKey, 0)
	for key, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			candidates = append(candidates, key)
		}
	}
	s.mu.Unlock()

	for _, key := range candidates {
		var expired *models.Session
		s.Update(key.Owner, key.Kind, func(cur *models.Session) *models.Session {
			// Re-check under the key lock: the session may have advanced
			// between the scan and now.
			if cur == nil || !cur.UpdatedAt.Before(cutoff) {
				return cur
			}
			expired = cur.Clone()
			return nil
		})
		if expired != nil {
			slog.Info("SessionStore expired idle session", "owner", key.Owner, "kind", key.Kind, "step", expired.Step)
			if onExpire != nil {
				onExpire(expired)
			}
		}
	}
}
