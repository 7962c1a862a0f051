package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/userhub-io/identity-api/internal/httputil"
	"github.com/userhub-io/identity-api/internal/logging"
	"github.com/userhub-io/identity-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SocialLoginRequest represents the social login request body. The payload is
// trusted as-is: it is expected to come from an OAuth callback that already
// verified the identity with the external provider.
type SocialLoginRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	AvatarURL  string `json:"avatar,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a local user account with name, email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201 {object} user.User
// @Failure      400 {object} ErrorResponse "Invalid request or validation error"
// @Failure      409 {object} ErrorResponse "Email already registered"
// @Failure      503 {object} ErrorResponse "Store unavailable"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration failed: email already exists")
			respondError(w, "email already registered", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		case errors.Is(err, user.ErrNameRequired):
			respondError(w, err.Error(), httputil.CodeNameRequired, http.StatusBadRequest)
		case errors.Is(err, user.ErrEmailRequired):
			respondError(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, user.ErrInvalidEmailFormat):
			respondError(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, user.ErrPasswordRequired):
			respondError(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, user.ErrPasswordTooShort):
			respondError(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		case errors.Is(err, user.ErrStoreUnavailable):
			logger.Error("registration failed: store unavailable", "error", err.Error())
			respondError(w, "service temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			respondError(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)
	respondJSON(w, newUser, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate local credentials and receive a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} Session
// @Failure      400 {object} ErrorResponse "Invalid request body"
// @Failure      401 {object} ErrorResponse "Invalid credentials"
// @Failure      503 {object} ErrorResponse "Store unavailable"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			// Same message for unknown account and wrong password.
			logger.Warn("login failed: invalid credentials")
			respondError(w, ErrInvalidCredentials.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, user.ErrStoreUnavailable):
			logger.Error("login failed: store unavailable", "error", err.Error())
			respondError(w, "service temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("login failed: internal error", "error", err.Error())
			respondError(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in", "user_id", session.User.ID)
	respondJSON(w, session, http.StatusOK)
}

// SocialLogin handles federated login
// @Summary      Social login
// @Description  Sign in a provider-verified identity, provisioning the account on first login.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SocialLoginRequest true "Provider-verified profile"
// @Success      200 {object} Session
// @Failure      400 {object} ErrorResponse "Invalid request or unknown provider"
// @Failure      503 {object} ErrorResponse "Store unavailable"
// @Router       /auth/social [post]
func (h *Handler) SocialLogin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SocialLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid social login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	provider, ok := user.ParseProvider(req.Provider)
	if !ok || provider == user.ProviderLocal {
		respondError(w, "unknown social provider", httputil.CodeInvalidProvider, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email, "provider": req.Provider})

	session, err := h.service.SocialLogin(r.Context(), SocialLoginInput{
		Email:      req.Email,
		Name:       req.Name,
		Provider:   provider,
		ProviderID: req.ProviderID,
		AvatarURL:  req.AvatarURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNameRequired),
			errors.Is(err, user.ErrEmailRequired),
			errors.Is(err, user.ErrInvalidEmailFormat):
			respondError(w, err.Error(), httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		case errors.Is(err, user.ErrStoreUnavailable):
			logger.Error("social login failed: store unavailable", "error", err.Error())
			respondError(w, "service temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("social login failed: internal error", "error", err.Error())
			respondError(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("social login succeeded", "user_id", session.User.ID)
	respondJSON(w, session, http.StatusOK)
}

func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

func respondError(w http.ResponseWriter, message, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}
