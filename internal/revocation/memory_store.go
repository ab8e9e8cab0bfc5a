package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps revoked session IDs in process memory. Suitable for
// single-instance deployments and tests; use RedisStore when more than one
// instance serves traffic.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks the session ID revoked for the given TTL. A non-positive TTL is
// a no-op: the session is already expired and will not validate anyway.
func (s *MemoryStore) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if sessionID == "" || ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = s.now().Add(ttl)
	return nil
}

// IsRevoked reports whether the session ID is currently revoked. Expired
// entries are removed as they are encountered.
func (s *MemoryStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[sessionID]
	if !ok {
		return false, nil
	}
	if s.now().After(expiry) {
		delete(s.entries, sessionID)
		return false, nil
	}
	return true, nil
}
