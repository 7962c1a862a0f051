package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/userhub-io/identity-api/internal/user"
)

// memStore is an in-memory user.Store with the same uniqueness behavior as
// the real Postgres repository.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *memStore) Create(ctx context.Context, u *user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email && existing.Provider == u.Provider {
			return nil, user.ErrDuplicateEmail
		}
	}

	stored := *u
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.users[stored.ID] = &stored

	clone := stored
	return &clone, nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *user.User
	for _, u := range s.users {
		if u.Email != email {
			continue
		}
		if oldest == nil || u.CreatedAt.Before(oldest.CreatedAt) {
			oldest = u
		}
	}
	if oldest == nil {
		return nil, user.ErrNotFound
	}
	clone := *oldest
	return &clone, nil
}

func (s *memStore) GetByEmailAndProvider(ctx context.Context, email string, provider user.Provider) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email && u.Provider == provider {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memStore) List(ctx context.Context, filter user.ListFilter) ([]*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*user.User
	for _, u := range s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (s *memStore) ListInactive(ctx context.Context, cutoff time.Time) ([]*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*user.User
	for _, u := range s.users {
		if u.LastLoginAt == nil || u.LastLoginAt.Before(cutoff) {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *memStore) Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memStore) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.LastLoginAt = &at
	u.UpdatedAt = time.Now()
	return nil
}
