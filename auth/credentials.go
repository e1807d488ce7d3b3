package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserLookup finds a stored account by login email.
// An absent account is reported with an error wrapping repositories.ErrNotFound.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Verifier checks login credentials against the stored bcrypt hashes
type Verifier struct {
	users     UserLookup
	dummyHash []byte
	logger    *zap.Logger
}

// NewVerifier creates a credential verifier. cost is the bcrypt cost used for the
// placeholder hash compared when the account does not exist.
func NewVerifier(users UserLookup, cost int, logger *zap.Logger) (*Verifier, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("placeholder-secret"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare verifier: %w", err)
	}
	return &Verifier{
		users:     users,
		dummyHash: dummy,
		logger:    logger,
	}, nil
}

// Verify returns the principal owning identifier when secret matches its stored hash.
// Failures wrap ErrAuthFailure (ErrUserNotFound or ErrBadCredentials); any other
// error means the lookup itself failed.
func (v *Verifier) Verify(ctx context.Context, identifier, secret string) (*Principal, error) {
	user, err := v.users.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// same work as a real comparison so both failures take equal time
			_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(secret))
			v.logger.Debug("login for unknown user", zap.String("email", identifier))
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(secret)); err != nil {
		v.logger.Debug("password mismatch", zap.String("user_id", user.UserID))
		return nil, ErrBadCredentials
	}

	return &Principal{
		ID:       user.UserID,
		Username: user.Email,
	}, nil
}

// HashPassword returns the bcrypt hash of secret at the given cost
func HashPassword(secret string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
