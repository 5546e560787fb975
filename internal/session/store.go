package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"wayfinder-backend/internal/domain/shared"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Store keeps sessions in memory, keyed by a random UUID. Sessions idle for
// longer than the TTL are treated as gone. Values handed out are copies; a
// caller changes a session by passing its copy back to Save.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session anchored at entrance.
func (s *Store) Create(entrance string) Session {
	sess := New(uuid.New().String(), entrance, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with the given id.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists || s.isExpired(sess) {
		return Session{}, shared.NewSessionNotFound(id)
	}
	return sess, nil
}

// Save stores sess, refreshing its idle timer. Saving a session that has
// been deleted or has expired fails.
func (s *Store) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.sessions[sess.ID]
	if !exists || s.isExpired(current) {
		return shared.NewSessionNotFound(sess.ID)
	}
	sess.CreatedAt = current.CreatedAt
	sess.UpdatedAt = s.now()
	s.sessions[sess.ID] = sess
	return nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.isExpired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

func (s *Store) isExpired(sess Session) bool {
	return s.now().Sub(sess.UpdatedAt) > s.ttl
}
