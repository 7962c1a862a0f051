package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/userhub-io/identity-api/internal/logging"
	"github.com/userhub-io/identity-api/internal/user"
)

// ErrInvalidCredentials is the single error for every way a login can fail:
// unknown email, federated-only account, missing hash, wrong password. One
// value, one message, so responses never reveal whether an account exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Directory is the slice of the user service the authenticator needs.
type Directory interface {
	Create(ctx context.Context, name, email, password string, role user.Role) (*user.User, error)
	CreateSocial(ctx context.Context, name, email string, provider user.Provider, providerID, avatarURL string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByEmailAndProvider(ctx context.Context, email string, provider user.Provider) (*user.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, now time.Time) error
}

// Verifier checks a plaintext password against a stored hash.
type Verifier interface {
	Verify(password, encodedHash string) bool
}

// Session is the artifact of a successful authentication.
type Session struct {
	AccessToken string     `json:"access_token"`
	User        *user.User `json:"user"`
}

// SocialLoginInput carries the provider-verified profile for a social login.
type SocialLoginInput struct {
	Email      string
	Name       string
	Provider   user.Provider
	ProviderID string
	AvatarURL  string
}

// Service orchestrates registration and login. Each call is a single attempt;
// there are no retries and every failure is terminal for that call.
type Service struct {
	directory Directory
	verifier  Verifier
	tokens    TokenService
	tokenTTL  time.Duration
	logger    *logging.Logger
}

func NewService(directory Directory, verifier Verifier, tokens TokenService, tokenTTL time.Duration, logger *logging.Logger) *Service {
	return &Service{
		directory: directory,
		verifier:  verifier,
		tokens:    tokens,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register creates a local account. Validation and the duplicate check live
// in the directory; their errors pass through unchanged.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	return s.directory.Create(ctx, name, email, password, user.RoleUser)
}

// Login authenticates local credentials and returns a session token plus the
// sanitized account record.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.directory.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	// Credential login only works for local accounts; a federated account
	// fails the same way a missing one does.
	if !account.IsLocal() || account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if !s.verifier.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, account)
}

// SocialLogin signs in a provider-verified identity, lazily provisioning the
// account on first sight. Absence is never an error here: the external
// provider already vouched for the identity, so a miss means "first login".
// The profile fields are trusted as supplied by the caller.
func (s *Service) SocialLogin(ctx context.Context, input SocialLoginInput) (*Session, error) {
	account, err := s.directory.GetByEmailAndProvider(ctx, input.Email, input.Provider)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up account: %w", err)
		}

		account, err = s.directory.CreateSocial(ctx, input.Name, input.Email, input.Provider, input.ProviderID, input.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("failed to provision account: %w", err)
		}
		s.logger.Info("provisioned social account",
			"user_id", account.ID,
			"provider", string(input.Provider),
		)
	}

	return s.startSession(ctx, account)
}

// startSession records the login and issues the token. The returned record is
// the pre-login snapshot, sanitized.
func (s *Service) startSession(ctx context.Context, account *user.User) (*Session, error) {
	now := time.Now()
	if err := s.directory.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	token, err := s.tokens.CreateToken(account.ID, account.Email, account.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &Session{
		AccessToken: token,
		User:        account.Sanitized(),
	}, nil
}
