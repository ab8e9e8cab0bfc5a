package directory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for development and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

// Upsert inserts or refreshes a user record keyed by ExternalID.
func (r *MemoryRepository) Upsert(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	if existing, ok := r.users[user.ExternalID]; ok {
		existing.Email = user.Email
		existing.Name = user.Name
		existing.UpdatedAt = now
		existing.LastLoginAt = now
		r.users[user.ExternalID] = existing
		return existing, nil
	}

	stored := User{
		ID:          uuid.New(),
		ExternalID:  user.ExternalID,
		Email:       user.Email,
		Name:        user.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastLoginAt: now,
	}
	r.users[user.ExternalID] = stored
	return stored, nil
}

// FindByExternalID returns the user with the given external ID, or nil.
func (r *MemoryRepository) FindByExternalID(_ context.Context, externalID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[externalID]
	if !ok {
		return nil, nil
	}
	copied := user
	return &copied, nil
}
