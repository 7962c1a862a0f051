package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of an account. The role model is flat:
// admin-gated endpoints require RoleAdmin exactly, everything else only
// requires a valid token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	return role, role.IsValid()
}

// Provider identifies how an account authenticates. Immutable after creation.
type Provider string

const (
	ProviderLocal     Provider = "local"
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
)

// IsValid checks if the provider is one of the predefined valid providers
func (p Provider) IsValid() bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderMicrosoft:
		return true
	default:
		return false
	}
}

// ParseProvider safely parses a string into a Provider
func ParseProvider(s string) (Provider, bool) {
	provider := Provider(s)
	return provider, provider.IsValid()
}

// User is the persistent account record.
//
// A local account always carries a password hash; a federated (google,
// microsoft) account never does. (email, provider) is unique across all
// records, enforced by the store.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose password hash in JSON
	Role         Role       `json:"role"`
	Provider     Provider   `json:"provider"`
	ProviderID   string     `json:"providerId,omitempty"`
	AvatarURL    string     `json:"avatar,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Sanitized returns a copy with the credential hash cleared. Every read path
// that leaves this package goes through here.
func (u *User) Sanitized() *User {
	clean := *u
	clean.PasswordHash = ""
	return &clean
}

// IsLocal reports whether the account authenticates with local credentials.
func (u *User) IsLocal() bool {
	return u.Provider == ProviderLocal
}
