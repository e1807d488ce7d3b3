package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailure is the generic login failure. Callers outside this
	// package only ever need to match on it.
	ErrAuthFailure = errors.New("invalid credentials")

	// ErrUserNotFound means no account exists for the identifier
	ErrUserNotFound = fmt.Errorf("user not found: %w", ErrAuthFailure)

	// ErrBadCredentials means the secret did not match the stored hash
	ErrBadCredentials = fmt.Errorf("bad credentials: %w", ErrAuthFailure)
)

var (
	// ErrTokenInvalid is the parent of every token validation failure
	ErrTokenInvalid = errors.New("invalid token")

	// ErrMalformedToken means the header lacks the expected prefix or carries no token
	ErrMalformedToken = fmt.Errorf("malformed token: %w", ErrTokenInvalid)

	// ErrInvalidSignature means the token is corrupt or was signed with another key
	ErrInvalidSignature = fmt.Errorf("invalid signature: %w", ErrTokenInvalid)

	// ErrTokenExpired means the token was valid but its expiry has passed
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrTokenInvalid)
)
