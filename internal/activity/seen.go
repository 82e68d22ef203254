package activity

import (
	"sync"
	"time"
)

// SeenSet remembers event IDs for a TTL window so the sink can drop
// redeliveries from the at-least-once consumer. Bounded by capacity; when
// full, expired entries go first, then the oldest live ones.
type SeenSet struct {
	mu       sync.Mutex
	entries  map[string]time.Time
	capacity int
	ttl      time.Duration
}

// NewSeenSet creates a set with the provided capacity and ttl.
func NewSeenSet(capacity int, ttl time.Duration) *SeenSet {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SeenSet{
		entries:  make(map[string]time.Time, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Contains reports whether the ID was added within the ttl window.
func (s *SeenSet) Contains(id string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.entries[id]
	return ok && now.Sub(ts) <= s.ttl
}

// Add records an ID, evicting as needed to stay within capacity.
func (s *SeenSet) Add(id string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = now

	if len(s.entries) <= s.capacity {
		return
	}

	cutoff := now.Add(-s.ttl)
	var oldestID string
	var oldestTS time.Time
	for k, ts := range s.entries {
		if ts.Before(cutoff) {
			delete(s.entries, k)
			continue
		}
		if oldestID == "" || ts.Before(oldestTS) {
			oldestID, oldestTS = k, ts
		}
	}

	if len(s.entries) > s.capacity && oldestID != "" && oldestID != id {
		delete(s.entries, oldestID)
	}
}
