package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/userhub-io/identity-api/internal/auth"
	"github.com/userhub-io/identity-api/internal/httputil"
	"github.com/userhub-io/identity-api/internal/logging"
	"github.com/userhub-io/identity-api/internal/user"
)

// UserHandler exposes the user directory over HTTP. The profile endpoints act
// on the token subject; the admin endpoints act on a path id and sit behind
// the admin role guard in the router.
type UserHandler struct {
	service *user.Service
	logger  *logging.Logger
	now     func() time.Time
}

func NewUserHandler(service *user.Service, logger *logging.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// UpdateUserRequest represents a profile or admin update body.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// GetProfile returns the authenticated user's own record
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.User
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	h.respondWithUser(w, r, userID, func() (*user.User, error) {
		return h.service.GetByID(r.Context(), userID)
	})
}

// UpdateProfile updates the authenticated user's own record
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateUserRequest true "Fields to update"
// @Success      200 {object} user.User
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/profile [patch]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	h.update(w, r, userID)
}

// ListUsers returns all users, optionally filtered and sorted
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role   query string false "Filter by role"        Enums(admin, user)
// @Param        sortBy query string false "Sort column"            Enums(name, createdAt)
// @Param        order  query string false "Sort direction"         Enums(ASC, DESC)
// @Success      200 {array} user.User
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	filter := user.ListFilter{
		SortBy: r.URL.Query().Get("sortBy"),
		Order:  r.URL.Query().Get("order"),
	}
	if roleParam := r.URL.Query().Get("role"); roleParam != "" {
		role, ok := user.ParseRole(roleParam)
		if !ok {
			httputil.RespondErrorWithCode(w, "unknown role", httputil.CodeInvalidRole, http.StatusBadRequest)
			return
		}
		filter.Role = role
	}

	users, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, logger, "list users", err)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}

// ListInactiveUsers returns users with no login in the inactivity window
// @Summary      List inactive users
// @Description  Users who never logged in or whose last login is older than 30 days.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} user.User
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse
// @Router       /users/inactive [get]
func (h *UserHandler) ListInactiveUsers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.service.ListInactive(r.Context(), h.now())
	if err != nil {
		h.respondServiceError(w, logger, "list inactive users", err)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}

// GetUser returns a user by id
// @Summary      Get user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} user.User
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.respondWithUser(w, r, userID, func() (*user.User, error) {
		return h.service.GetByID(r.Context(), userID)
	})
}

// UpdateUser updates a user by id
// @Summary      Update user by id
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body UpdateUserRequest true "Fields to update"
// @Success      200 {object} user.User
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	h.update(w, r, userID)
}

// DeleteUser removes a user permanently
// @Summary      Delete user by id
// @Tags         users
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), userID); err != nil {
		h.respondServiceError(w, logger, "delete user", err)
		return
	}

	logger.Info("user deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), id, user.UpdateInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNameRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNameRequired, http.StatusBadRequest)
		case errors.Is(err, user.ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, user.ErrPasswordTooShort):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordTooShort, http.StatusBadRequest)
		default:
			h.respondServiceError(w, logger, "update user", err)
		}
		return
	}

	logger.Info("user updated", "user_id", id)
	httputil.RespondJSON(w, updated, http.StatusOK)
}

func (h *UserHandler) respondWithUser(w http.ResponseWriter, r *http.Request, id uuid.UUID, fetch func() (*user.User, error)) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, err := fetch()
	if err != nil {
		h.respondServiceError(w, logger, "get user", err)
		return
	}

	httputil.RespondJSON(w, u, http.StatusOK)
}

func (h *UserHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid user id", httputil.CodeInvalidUserID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *UserHandler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusNotFound)
	case errors.Is(err, user.ErrStoreUnavailable):
		logger.Error(op+" failed: store unavailable", "error", err.Error())
		httputil.RespondErrorWithCode(w, "service temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
	default:
		logger.Error(op+" failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}
