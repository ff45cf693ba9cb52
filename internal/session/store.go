package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one browser session's threshold state. Each session owns its
// own cutoff; the dataset underneath is shared read-only.
type Session struct {
	ID        string
	Threshold float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a thread-safe in-memory session store, keyed by session ID.
// A background goroutine (Run) periodically evicts sessions that have not
// been touched within the configured TTL.
type Store struct {
	mu               sync.RWMutex
	data             map[string]*Session
	ttl              time.Duration
	defaultThreshold float64
	now              func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL. New sessions start at
// defaultThreshold (the configured slider default).
func New(ttl time.Duration, defaultThreshold float64) *Store {
	return &Store{
		data:             make(map[string]*Session),
		ttl:              ttl,
		defaultThreshold: defaultThreshold,
		now:              time.Now,
	}
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create registers a new session with the default threshold and returns a
// copy of it.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Threshold: s.defaultThreshold,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session with the given ID and a boolean
// indicating whether it was found. The session may be stale if TTL has
// elapsed; callers decide whether stale sessions still count.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// SetThreshold updates the session's threshold and refreshes its UpdatedAt,
// extending its lifetime. Returns the updated copy, or false for an unknown
// session. Domain validation happens at the API boundary, not here.
func (s *Store) SetThreshold(id string, threshold float64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.data[id]
	if !ok {
		return Session{}, false
	}
	sess.Threshold = threshold
	sess.UpdatedAt = s.now()
	return *sess, true
}

// Count returns the total number of sessions currently held, including
// stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes sessions whose UpdatedAt is older than now minus TTL.
// It returns the number of sessions removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, sess := range s.data {
		if !sess.UpdatedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// interval (minimum 1 second) so idle sessions are dropped promptly.
// Run blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("session: evicted idle sessions", "count", n)
			}
		}
	}
}
