package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/core-platform/middleware"
	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

// UserService defines the user operations used by the handlers
type UserService interface {
	List(ctx context.Context, page, limit int) ([]*models.User, error)
	Get(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, req models.UserDetailsRequest) (*models.User, error)
	CreateRandom(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleListUsers handles GET /users?page=&limit=
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit, err := utils.ParsePagination(query.Get("page"), query.Get("limit"))
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	users, err := h.users.List(r.Context(), page, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, models.ToUserResponses(users))
}

// HandleCreateUser handles POST /users (sign-up)
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserDetailsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.Create(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, models.ToUserResponse(user))
}

// HandleCreateRandomUser handles POST /users/random
func (h *UserHandler) HandleCreateRandomUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.CreateRandom(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, models.ToUserResponse(user))
}

// HandleGetUser handles GET /users/{id}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, models.ToUserResponse(user))
}

// HandleUpdateUser handles PUT /users/{id}
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserUpdateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	userID := chi.URLParam(r, "id")
	user, err := h.users.Update(r.Context(), userID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		h.logger.Debug("user updated",
			zap.String("user_id", userID),
			zap.String("by", p.ID))
	}
	_ = utils.WriteOK(w, models.ToUserResponse(user))
}

// HandleDeleteUser handles DELETE /users/{id}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, models.OperationStatus{
		OperationName:   models.OperationDelete,
		OperationResult: models.OperationSuccess,
	})
}
