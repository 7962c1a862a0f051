package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun table model for the users table. The domain type lives in
// internal/user; repositories map between the two.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name         string     `bun:"name,notnull"`
	Email        string     `bun:"email,notnull"`
	PasswordHash *string    `bun:"password_hash"`
	Role         string     `bun:"role,notnull,default:'user'"`
	Provider     string     `bun:"provider,notnull,default:'local'"`
	ProviderID   *string    `bun:"provider_id"`
	AvatarURL    *string    `bun:"avatar_url"`
	LastLoginAt  *time.Time `bun:"last_login_at"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:now()"`
}
