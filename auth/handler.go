package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/upb/core-platform/config"
	"github.com/upb/core-platform/internal/observability"
	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

// InvalidCredentialsMessage is the only message a failed login ever returns
const InvalidCredentialsMessage = "invalid credentials"

// CredentialVerifier checks a login identifier and secret
type CredentialVerifier interface {
	Verify(ctx context.Context, identifier, secret string) (*Principal, error)
}

// TokenIssuer signs tokens for authenticated principals
type TokenIssuer interface {
	Issue(p Principal, now time.Time) (string, error)
	HeaderValue(token string) string
}

// Handler serves the login transition of the request gate
type Handler struct {
	cfg      config.AuthConfig
	verifier CredentialVerifier
	issuer   TokenIssuer
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new login handler
func NewHandler(cfg config.AuthConfig, verifier CredentialVerifier, issuer TokenIssuer, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		verifier: verifier,
		issuer:   issuer,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleLogin handles POST /users/login.
// On success the token travels in the Authorization header and the public user id
// in the UserID header; on failure no token is produced.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.UserLoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Validation failed", fieldDetails(err))
		return
	}

	principal, err := h.verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAuthFailure) {
			h.metrics.RecordAuth(observability.AuthLoginFailure)
			h.logger.Info("login rejected", zap.String("reason", err.Error()))
			_ = utils.WriteUnauthorized(w, InvalidCredentialsMessage)
			return
		}
		h.logger.Error("credential verification failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	token, err := h.issuer.Issue(*principal, h.now())
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	h.metrics.RecordAuth(observability.AuthLoginSuccess)
	h.logger.Info("login succeeded", zap.String("user_id", principal.ID))

	w.Header().Set(h.cfg.HeaderName, h.issuer.HeaderValue(token))
	w.Header().Set(h.cfg.UserIDHeaderName, principal.ID)
	w.WriteHeader(http.StatusOK)
}

func fieldDetails(err error) map[string]interface{} {
	fields := utils.GetValidationFields(err)
	if fields == nil {
		return nil
	}
	details := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return details
}
