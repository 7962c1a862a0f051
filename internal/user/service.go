package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/userhub-io/identity-api/internal/logging"
)

// InactivityThreshold is how long an account may go without a successful
// login before ListInactive reports it. Accounts that never logged in are
// always reported.
const InactivityThreshold = 30 * 24 * time.Hour

const minPasswordLength = 6

var (
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

// Store defines the persistence operations the directory needs. Implemented
// by *Repository; tests substitute in-memory fakes.
type Store interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailAndProvider(ctx context.Context, email string, provider Provider) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]*User, error)
	ListInactive(ctx context.Context, cutoff time.Time) ([]*User, error)
	Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Cache holds sanitized profiles for the hot read path. Implemented by
// *ProfileCache; may be nil to disable caching.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	Set(ctx context.Context, u *User) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// Hasher produces one-way credential hashes. Satisfied by auth.PasswordHasher.
type Hasher interface {
	Hash(password string) (string, error)
}

// UpdateInput carries the mutable profile fields. Nil means "leave as is".
type UpdateInput struct {
	Name     *string
	Password *string
}

// Service is the user directory: account CRUD, activity classification and
// credential-hash stripping. Every record it returns is sanitized except for
// the two raw email lookups, which exist only for the auth service.
type Service struct {
	store  Store
	cache  Cache
	hasher Hasher
	logger *logging.Logger
}

func NewService(store Store, cache Cache, hasher Hasher, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		hasher: hasher,
		logger: logger,
	}
}

// Create registers a local account. Returns ErrDuplicateEmail when the email
// is already taken under the local provider. The existence pre-check only
// produces a friendly error early; the store's unique index is what actually
// closes the race between concurrent creators.
func (s *Service) Create(ctx context.Context, name, email, password string, role Role) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	_, err := s.store.GetByEmailAndProvider(ctx, email, ProviderLocal)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.store.Create(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Provider:     ProviderLocal,
	})
	if err != nil {
		return nil, err
	}

	return created.Sanitized(), nil
}

// CreateSocial provisions a federated account. Idempotent: when the
// (email, provider) pair already exists the existing record is returned
// instead of an error, including when a concurrent call wins the insert race.
func (s *Service) CreateSocial(ctx context.Context, name, email string, provider Provider, providerID, avatarURL string) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if provider == ProviderLocal || !provider.IsValid() {
		return nil, fmt.Errorf("invalid social provider %q", provider)
	}

	existing, err := s.store.GetByEmailAndProvider(ctx, email, provider)
	if err == nil {
		return existing.Sanitized(), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created, err := s.store.Create(ctx, &User{
		Name:       name,
		Email:      email,
		Role:       RoleUser,
		Provider:   provider,
		ProviderID: providerID,
		AvatarURL:  avatarURL,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost the race to a concurrent provisioner; use its record.
			existing, lookupErr := s.store.GetByEmailAndProvider(ctx, email, provider)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return existing.Sanitized(), nil
		}
		return nil, err
	}

	return created.Sanitized(), nil
}

// GetByID returns the sanitized record for an account.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("profile cache read failed", "user_id", id, "error", err.Error())
		} else if cached != nil {
			return cached, nil
		}
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sanitized := u.Sanitized()
	if s.cache != nil {
		if err := s.cache.Set(ctx, sanitized); err != nil {
			s.logger.Warn("profile cache write failed", "user_id", id, "error", err.Error())
		}
	}

	return sanitized, nil
}

// GetByEmail is a raw lookup that includes the credential hash. For the auth
// service only; the result must never cross a trust boundary.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.GetByEmail(ctx, email)
}

// GetByEmailAndProvider is a raw lookup that includes the credential hash.
// Same visibility rule as GetByEmail.
func (s *Service) GetByEmailAndProvider(ctx context.Context, email string, provider Provider) (*User, error) {
	return s.store.GetByEmailAndProvider(ctx, email, provider)
}

// List returns sanitized users matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*User, error) {
	users, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	sanitized := make([]*User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}
	return sanitized, nil
}

// ListInactive returns sanitized users whose last login is older than
// InactivityThreshold relative to now, or who never logged in.
func (s *Service) ListInactive(ctx context.Context, now time.Time) ([]*User, error) {
	users, err := s.store.ListInactive(ctx, now.Add(-InactivityThreshold))
	if err != nil {
		return nil, err
	}

	sanitized := make([]*User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}
	return sanitized, nil
}

// Update patches name and/or password, re-hashing the password before it is
// persisted. The record is re-read after the write so the caller sees the
// stored state, not a locally patched copy.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*User, error) {
	if input.Name != nil {
		if err := validateName(*input.Name); err != nil {
			return nil, err
		}
	}

	var passwordHash *string
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = &hash
	}

	if err := s.store.Update(ctx, id, input.Name, passwordHash); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

// Remove deletes an account permanently. Returns ErrNotFound when no record
// was affected.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

// TouchLastLogin records a successful authentication. Store errors surface to
// the caller.
func (s *Service) TouchLastLogin(ctx context.Context, id uuid.UUID, now time.Time) error {
	if err := s.store.TouchLastLogin(ctx, id, now); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("profile cache invalidation failed", "user_id", id, "error", err.Error())
	}
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
