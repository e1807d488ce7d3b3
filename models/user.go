package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account as stored in the users table
type User struct {
	ID                int64     `json:"-" db:"id"`
	UserID            string    `json:"user_id" db:"user_id"` // Public identifier exposed over the API
	FirstName         string    `json:"first_name" db:"first_name"`
	LastName          string    `json:"last_name" db:"last_name"`
	Email             string    `json:"email" db:"email"`
	EncryptedPassword string    `json:"-" db:"encrypted_password"` // Never expose in JSON
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User with a freshly generated public identifier.
// encryptedPassword must already be a one-way hash.
func NewUser(firstName, lastName, email, encryptedPassword string) *User {
	now := time.Now().UTC()
	return &User{
		UserID:            uuid.NewString(),
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		EncryptedPassword: encryptedPassword,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// FullName returns the display name of the user
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// UserDetailsRequest is the request body for POST /users
type UserDetailsRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required,max=72"`
}

// UserUpdateRequest is the request body for PUT /users/{id}
type UserUpdateRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

// UserLoginRequest is the request body for POST /users/login
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public representation of a user
type UserResponse struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ToUserResponse maps a stored user to its public representation
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// ToUserResponses maps a slice of stored users
func ToUserResponses(users []*User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

// ApplyUserUpdate copies the mutable fields of an update request onto u
func ApplyUserUpdate(u *User, req UserUpdateRequest) {
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.UpdatedAt = time.Now().UTC()
}
