package rbac

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryGrantSource is a thread-safe in-memory GrantSource for tests
// and single-process setups.
type MemoryGrantSource struct {
	mu     sync.RWMutex
	grants map[uuid.UUID][]string
}

// NewMemoryGrantSource creates an empty in-memory grant source.
func NewMemoryGrantSource() *MemoryGrantSource {
	return &MemoryGrantSource{grants: make(map[uuid.UUID][]string)}
}

// Grant adds a capability to a user's grant set.
func (s *MemoryGrantSource) Grant(userID uuid.UUID, c Capability) error {
	if !c.IsValid() {
		return ErrUnknownCapability
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.grants[userID] {
		if existing == string(c) {
			return nil
		}
	}
	s.grants[userID] = append(s.grants[userID], string(c))
	return nil
}

// Revoke removes a capability from a user's grant set.
func (s *MemoryGrantSource) Revoke(userID uuid.UUID, c Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.grants[userID][:0]
	for _, existing := range s.grants[userID] {
		if existing != string(c) {
			kept = append(kept, existing)
		}
	}
	s.grants[userID] = kept
}

func (s *MemoryGrantSource) GrantsForUser(ctx context.Context, userID uuid.UUID) (GrantSet, error) {
	s.mu.RLock()
	names := make([]string, len(s.grants[userID]))
	copy(names, s.grants[userID])
	s.mu.RUnlock()

	return NewGrantSet(names...)
}
