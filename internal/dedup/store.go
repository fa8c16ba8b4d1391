package dedup

import (
	"sync"
	"time"

	"github.com/trolleybot-systems/trolleybot/internal/metrics"
)

// Store tracks Slack event IDs that have already triggered work, so that
// redelivered events do not start a second automation run. Entries expire
// after a TTL; Slack stops retrying an event long before that.
type Store struct {
	seen      map[string]time.Time
	mu        sync.Mutex
	ttl       time.Duration
	cleanupCh chan struct{}
	now       func() time.Time
}

// NewStore creates a dedup store with the given entry TTL and starts the
// background eviction loop.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	s := &Store{
		seen:      make(map[string]time.Time),
		ttl:       ttl,
		cleanupCh: make(chan struct{}),
		now:       time.Now,
	}

	go s.cleanupLoop(cleanupInterval)

	return s
}

// ShouldProcess reports whether the caller is the first to see eventID and,
// if so, marks it as seen. Check and mark happen under one lock, so
// concurrent deliveries of the same event yield exactly one true.
// An empty event ID is always processed and never recorded.
func (s *Store) ShouldProcess(eventID string) bool {
	if eventID == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if at, exists := s.seen[eventID]; exists && s.now().Sub(at) < s.ttl {
		return false
	}
	s.seen[eventID] = s.now()
	metrics.DedupEntries.Set(float64(len(s.seen)))
	return true
}

// Len returns the number of event IDs currently tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// cleanupLoop periodically removes expired entries
func (s *Store) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.cleanupCh:
			return
		}
	}
}

func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for id, at := range s.seen {
		if at.Before(cutoff) {
			delete(s.seen, id)
		}
	}
	metrics.DedupEntries.Set(float64(len(s.seen)))
}

// Close stops the eviction goroutine.
func (s *Store) Close() {
	close(s.cleanupCh)
}
