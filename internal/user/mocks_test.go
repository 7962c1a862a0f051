package user_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/userhub-io/identity-api/internal/user"
)

// stubHasher marks hashes deterministically so tests can assert re-hashing
// without paying argon2 cost.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

// stubStore is an in-memory user.Store mirroring the Postgres repository's
// contract, including (email, provider) uniqueness.
type stubStore struct {
	users map[uuid.UUID]*user.User

	// createErr, when set, is returned by the next Create call.
	createErr error
	// missNextLookup makes the next GetByEmailAndProvider miss even when the
	// record exists, simulating a row committed between lookup and insert.
	missNextLookup bool
}

func newStubStore() *stubStore {
	return &stubStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *stubStore) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if s.createErr != nil {
		err := s.createErr
		s.createErr = nil
		return nil, err
	}

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

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *stubStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubStore) GetByEmailAndProvider(ctx context.Context, email string, provider user.Provider) (*user.User, error) {
	if s.missNextLookup {
		s.missNextLookup = false
		return nil, user.ErrNotFound
	}
	for _, u := range s.users {
		if u.Email == email && u.Provider == provider {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubStore) List(ctx context.Context, filter user.ListFilter) ([]*user.User, error) {
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

func (s *stubStore) ListInactive(ctx context.Context, cutoff time.Time) ([]*user.User, error) {
	var out []*user.User
	for _, u := range s.users {
		if u.LastLoginAt == nil || u.LastLoginAt.Before(cutoff) {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *stubStore) Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) error {
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

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubStore) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.LastLoginAt = &at
	u.UpdatedAt = time.Now()
	return nil
}

// stubCache records gets/sets/invalidations in memory.
type stubCache struct {
	entries     map[uuid.UUID]*user.User
	hits        int
	invalidated int
	failReads   bool
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[uuid.UUID]*user.User)}
}

func (c *stubCache) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if c.failReads {
		return nil, errors.New("cache down")
	}
	u, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	c.hits++
	clone := *u
	return &clone, nil
}

func (c *stubCache) Set(ctx context.Context, u *user.User) error {
	clone := *u.Sanitized()
	c.entries[u.ID] = &clone
	return nil
}

func (c *stubCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	delete(c.entries, id)
	c.invalidated++
	return nil
}
