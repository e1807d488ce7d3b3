package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upb/core-platform/config"
)

// MinSecretLength is the smallest accepted HMAC-SHA512 key, in bytes
const MinSecretLength = 32

var signingMethod = jwt.SigningMethodHS512

// tokenClaims are the claims carried by issued tokens.
// sub holds the username; uid the public user identifier.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid,omitempty"`
}

// TokenService issues and validates HMAC-SHA512 signed JWTs.
// It holds only immutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	window time.Duration
	prefix string
	issuer string
}

// NewTokenService creates a token service from the auth configuration.
// The secret must be provisioned; there is no fallback key.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if len(cfg.TokenSecret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.TokenExpiration <= 0 {
		return nil, errors.New("token expiration must be positive")
	}
	if cfg.TokenPrefix == "" {
		return nil, errors.New("token prefix is required")
	}
	return &TokenService{
		secret: []byte(cfg.TokenSecret),
		window: cfg.TokenExpiration,
		prefix: cfg.TokenPrefix,
		issuer: cfg.Issuer,
	}, nil
}

// Issue signs a token for p that expires at now + the configured window
func (s *TokenService) Issue(p Principal, now time.Time) (string, error) {
	if p.Username == "" {
		return "", errors.New("principal has no username")
	}
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   p.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.window)),
		},
		UserID: p.ID,
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// HeaderValue returns token formatted for the Authorization header
func (s *TokenService) HeaderValue(token string) string {
	return s.prefix + token
}

// Validate checks an Authorization header value at instant now.
// It fails with ErrMalformedToken when the prefix is missing, ErrInvalidSignature
// for corrupt or foreign tokens and ErrTokenExpired once now >= exp.
func (s *TokenService) Validate(headerValue string, now time.Time) (*Principal, error) {
	if !strings.HasPrefix(headerValue, s.prefix) {
		return nil, ErrMalformedToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(headerValue, s.prefix))
	if raw == "" {
		return nil, ErrMalformedToken
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		// the signature is verified before any claim, so expiry implies a genuine token
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSignature)
	}

	return &Principal{
		ID:       claims.UserID,
		Username: claims.Subject,
	}, nil
}
