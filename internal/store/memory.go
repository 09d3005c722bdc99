package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weatherfo/internal/weather"
)

var (
	// ErrNotFound is returned for an unknown or expired session.
	ErrNotFound = errors.New("session not found")
)

// Session is the state one client owns: the last committed view model and the
// generation of the newest request it started.
type Session struct {
	ID         string             `json:"id"`
	Generation uint64             `json:"generation"`
	View       *weather.ViewModel `json:"view,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// MemoryStore is a concurrency-safe in-memory session store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*Session

	// sessions idle longer than maxAge are pruned (0 = never)
	maxAge time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]*Session),
		maxAge: maxAge,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new session with a random id.
func (s *MemoryStore) Create() Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.data[sess.ID] = sess
	s.mu.Unlock()

	return *sess
}

// Begin starts a new request for the session and returns its generation.
// Any request begun earlier becomes stale.
func (s *MemoryStore) Begin(id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return 0, ErrNotFound
	}
	sess.Generation++
	sess.UpdatedAt = s.now()
	return sess.Generation, nil
}

// Commit stores view as the session's latest result if gen is still the newest
// generation. Otherwise it returns weather.ErrStaleResult and leaves the session as is.
func (s *MemoryStore) Commit(id string, gen uint64, view weather.ViewModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return ErrNotFound
	}
	if gen != sess.Generation {
		return weather.ErrStaleResult
	}

	view.Generation = gen
	sess.View = &view
	sess.UpdatedAt = s.now()
	return nil
}

// Latest returns a copy of the session.
func (s *MemoryStore) Latest(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return *sess, nil
}

// Prune drops sessions idle for longer than maxAge and returns how many were removed.
func (s *MemoryStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.data {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
