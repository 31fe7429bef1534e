package users

import (
	"context"
	"sync"

	"github.com/campusgate/campusgate/internal/platform/httpx"
	"github.com/campusgate/campusgate/internal/rbac"
)

// MemoryStore keeps the registry in a map keyed by username. Lookups
// are O(1) and safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryStore constructs an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

// Put inserts or replaces a record.
func (s *MemoryStore) Put(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}

// FindByUsername returns a copy of the record for the given username.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &user, nil
}

// PasswordHasher hashes plaintext passwords during seeding.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// SeedDemo fills the store with the demonstration accounts. Intended
// for development deployments without a database.
func SeedDemo(store *MemoryStore, hasher PasswordHasher) error {
	seeds := []struct {
		username string
		password string
		role     rbac.Role
	}{
		{"annasmith", "pass", rbac.RoleStudent},
		{"linda", "pass", rbac.RoleAdmin},
		{"tom", "pass", rbac.RoleAdminTrainee},
	}
	for _, seed := range seeds {
		digest, err := hasher.Hash(seed.password)
		if err != nil {
			return err
		}
		store.Put(User{
			Username:     seed.username,
			PasswordHash: digest,
			Role:         seed.role,
			Enabled:      true,
		})
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
