package repositories

import (
	"context"
	"errors"

	"github.com/upb/core-platform/models"
)

// ErrNotFound is returned (wrapped) by repositories when no row matches
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned (wrapped) when a unique constraint rejects a write
var ErrDuplicate = errors.New("duplicate record")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context carrying the transaction
	Context() context.Context
}

// CityRepository handles city data operations
type CityRepository interface {
	// Create inserts a city and fills in its ID
	Create(ctx context.Context, city *models.City) error

	// CreateBatch inserts several cities in one round trip
	CreateBatch(ctx context.Context, cities []*models.City) error

	// GetByID retrieves a city by ID
	GetByID(ctx context.Context, id int64) (*models.City, error)

	// List returns every city ordered by ID
	List(ctx context.Context) ([]*models.City, error)

	// Count returns the number of stored cities
	Count(ctx context.Context) (int64, error)

	// Update replaces the mutable fields of a city
	Update(ctx context.Context, city *models.City) error

	// Delete deletes a city
	Delete(ctx context.Context, id int64) error
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create inserts a user and fills in its ID
	Create(ctx context.Context, user *models.User) error

	// GetByUserID retrieves a user by public identifier
	GetByUserID(ctx context.Context, userID string) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns a page of users ordered by ID
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user by public identifier
	Delete(ctx context.Context, userID string) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Cities CityRepository
	Users  UserRepository
}
