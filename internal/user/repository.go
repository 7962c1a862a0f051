package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/userhub-io/identity-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists for this provider")
	// ErrStoreUnavailable wraps storage failures and timeouts so callers can
	// map them to a 503 instead of a generic 500.
	ErrStoreUnavailable = errors.New("user store unavailable")
)

// SortBy and Order values accepted by List. Anything else falls back to the
// default (name ascending).
const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"

	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// ListFilter narrows and orders List results. Zero-valued fields are no-ops.
type ListFilter struct {
	Role   Role
	SortBy string
	Order  string
}

// Repository handles user persistence on Postgres via bun.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The (email, provider) unique index makes exactly
// one concurrent creator win; the loser gets ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	dbUser := toDBUser(u)

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, storeError("create user", err)
	}

	return fromDBUser(dbUser), nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeError("get user by id", err)
	}

	return fromDBUser(dbUser), nil
}

// GetByEmail retrieves a user by email regardless of provider. Oldest record
// wins when the same email exists under several providers.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeError("get user by email", err)
	}

	return fromDBUser(dbUser), nil
}

// GetByEmailAndProvider retrieves a user by its unique (email, provider) pair.
func (r *Repository) GetByEmailAndProvider(ctx context.Context, email string, provider Provider) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Where("provider = ?", string(provider)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeError("get user by email and provider", err)
	}

	return fromDBUser(dbUser), nil
}

// List returns users matching the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*User, error) {
	var dbUsers []*database.User

	q := r.db.NewSelect().Model(&dbUsers)

	if filter.Role != "" {
		q = q.Where("role = ?", string(filter.Role))
	}

	column := "name"
	if filter.SortBy == SortByCreatedAt {
		column = "created_at"
	}
	direction := "ASC"
	if filter.Order == OrderDesc {
		direction = "DESC"
	}
	q = q.Order(column + " " + direction)

	if err := q.Scan(ctx); err != nil {
		return nil, storeError("list users", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		users = append(users, fromDBUser(dbUser))
	}
	return users, nil
}

// ListInactive returns users who never logged in or whose last login is
// before the cutoff.
func (r *Repository) ListInactive(ctx context.Context, cutoff time.Time) ([]*User, error) {
	var dbUsers []*database.User

	err := r.db.NewSelect().
		Model(&dbUsers).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("last_login_at IS NULL").
				WhereOr("last_login_at < ?", cutoff)
		}).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeError("list inactive users", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		users = append(users, fromDBUser(dbUser))
	}
	return users, nil
}

// Update patches name and/or password hash. Nil fields are left untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, passwordHash *string) error {
	if name == nil && passwordHash == nil {
		return nil
	}

	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("updated_at = now()").
		Where("id = ?", id)

	if name != nil {
		q = q.Set("name = ?", *name)
	}
	if passwordHash != nil {
		q = q.Set("password_hash = ?", *passwordHash)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return storeError("update user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("update user", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a user permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storeError("delete user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("delete user", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// TouchLastLogin records a successful authentication at the given instant.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("last_login_at = ?", at).
		Set("updated_at = now()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storeError("touch last login", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("touch last login", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// storeError tags an infrastructure failure with ErrStoreUnavailable while
// keeping the driver error in the chain.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreUnavailable, err))
}

// toDBUser converts the domain model to the bun table model.
func toDBUser(u *User) *database.User {
	dbUser := &database.User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Provider:    string(u.Provider),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if u.PasswordHash != "" {
		hash := u.PasswordHash
		dbUser.PasswordHash = &hash
	}
	if u.ProviderID != "" {
		providerID := u.ProviderID
		dbUser.ProviderID = &providerID
	}
	if u.AvatarURL != "" {
		avatar := u.AvatarURL
		dbUser.AvatarURL = &avatar
	}
	return dbUser
}

// fromDBUser converts the bun table model to the domain model.
func fromDBUser(dbUser *database.User) *User {
	u := &User{
		ID:          dbUser.ID,
		Name:        dbUser.Name,
		Email:       dbUser.Email,
		Role:        Role(dbUser.Role),
		Provider:    Provider(dbUser.Provider),
		LastLoginAt: dbUser.LastLoginAt,
		CreatedAt:   dbUser.CreatedAt,
		UpdatedAt:   dbUser.UpdatedAt,
	}
	if dbUser.PasswordHash != nil {
		u.PasswordHash = *dbUser.PasswordHash
	}
	if dbUser.ProviderID != nil {
		u.ProviderID = *dbUser.ProviderID
	}
	if dbUser.AvatarURL != nil {
		u.AvatarURL = *dbUser.AvatarURL
	}
	return u
}
