package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/upb/core-platform/auth"
	"github.com/upb/core-platform/internal/observability"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

// TokenValidator validates an Authorization header value at a given instant
type TokenValidator interface {
	Validate(headerValue string, now time.Time) (*auth.Principal, error)
}

// PublicRoute is a method and path that bypasses token checks.
// A Path ending in "/*" matches every path under that prefix; an empty Method matches any method.
type PublicRoute struct {
	Method string
	Path   string
}

// AuthMiddleware is the request gate. It keeps no per-request state.
type AuthMiddleware struct {
	validator  TokenValidator
	headerName string
	public     []PublicRoute
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, headerName string, public []PublicRoute, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	if headerName == "" {
		headerName = "Authorization"
	}
	return &AuthMiddleware{
		validator:  validator,
		headerName: headerName,
		public:     public,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// RequireAuth lets public routes through untouched. Every other request needs a
// valid token in the configured header; the resulting principal is stored in the
// request context for downstream handlers.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.IsPublic(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		header := r.Header.Get(m.headerName)
		if header == "" {
			m.metrics.RecordAuth(observability.AuthTokenMissing)
			m.logger.Warn("missing token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Missing authorization header")
			return
		}

		principal, err := m.validator.Validate(header, m.now())
		if err != nil {
			m.metrics.RecordAuth(observability.AuthTokenRejected)
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.String("reason", rejectionReason(err)))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		m.metrics.RecordAuth(observability.AuthTokenAccepted)
		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", principal.ID))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// IsPublic reports whether method and path match a public route
func (m *AuthMiddleware) IsPublic(method, path string) bool {
	for _, route := range m.public {
		if route.Method != "" && !strings.EqualFold(route.Method, method) {
			continue
		}
		if prefix, ok := strings.CutSuffix(route.Path, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if strings.TrimSuffix(path, "/") == strings.TrimSuffix(route.Path, "/") {
			return true
		}
	}
	return false
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "unknown"
	}
}
