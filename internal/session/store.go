// Package session provides the per-conversation state store. The default
// implementation is in-memory and process-local; multi-instance deployments
// should inject an externalized Store instead.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"food-assist-agent/internal/domain"
)

// ErrNotFound is returned by Get when no session exists for the id.
var ErrNotFound = errors.New("session: not found")

// Store is the pluggable backing store for conversation sessions.
type Store interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Put(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}

const (
	// DefaultTTL is how long an idle session is kept before eviction.
	DefaultTTL = 30 * time.Minute

	sweepInterval = time.Minute
)

// timeNow is a test seam.
var timeNow = time.Now

// MemoryStore is a mutex-guarded in-memory Store with idle-TTL eviction.
// Concurrent requests for different sessions never block each other beyond
// the map access; same-session double-submits are last-write-wins.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	ttl      time.Duration

	done chan struct{}
	once sync.Once
}

// NewMemoryStore creates a MemoryStore evicting sessions idle longer than ttl
// (DefaultTTL if ttl <= 0) and starts the background sweep. Call Close to
// stop it.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*domain.Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if timeNow().Sub(sess.UpdatedAt) > s.ttl {
		// Expired but not yet swept; treat as gone.
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Put(_ context.Context, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session: id must not be empty")
	}
	sess.UpdatedAt = timeNow()
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired-but-unswept included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweep. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	cutoff := timeNow().Add(-s.ttl)
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}
