package user

import (
	"context"
	"errors"
	"strings"

	"github.com/upb/core-platform/auth"
	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/repositories"
	"github.com/upb/core-platform/services"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

const (
	randomFirstNameLen = 8
	randomLastNameLen  = 10
	randomEmailLen     = 12
	randomPasswordLen  = 16
	randomEmailDomain  = "@example.com"
)

// Service manages user accounts
type Service struct {
	users      repositories.UserRepository
	txMgr      repositories.TransactionManager
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new user service
func NewService(users repositories.UserRepository, txMgr repositories.TransactionManager, bcryptCost int, logger *zap.Logger) *Service {
	return &Service{
		users:      users,
		txMgr:      txMgr,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// List returns one page of users; page is zero based
func (s *Service) List(ctx context.Context, page, limit int) ([]*models.User, error) {
	users, err := s.users.List(ctx, limit, page*limit)
	if err != nil {
		return nil, services.WrapInternal("failed to list users", err)
	}
	return users, nil
}

// Get retrieves a user by public identifier
func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to get user")
	}
	return user, nil
}

// GetByEmail retrieves a user by login email. An unknown email yields
// ErrUserNotFound, which still matches repositories.ErrNotFound.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, mapRepositoryError(err, "failed to get user")
	}
	return user, nil
}

// Create registers a new account. The password is stored as a bcrypt hash.
func (s *Service) Create(ctx context.Context, req models.UserDetailsRequest) (*models.User, error) {
	if err := utils.ValidateRequired(req.FirstName, "firstName"); err != nil {
		return nil, services.ErrMissingRequiredField.WithDetail("firstName", err.Error())
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, services.NewValidationError("invalid user", utils.GetValidationFields(err))
	}
	return s.register(ctx, req.FirstName, req.LastName, req.Email, req.Password)
}

// CreateRandom registers an account with random names, email and password
func (s *Service) CreateRandom(ctx context.Context) (*models.User, error) {
	email := strings.ToLower(utils.RandomAlphanumeric(randomEmailLen)) + randomEmailDomain
	return s.register(ctx,
		utils.RandomAlphabetic(randomFirstNameLen),
		utils.RandomAlphabetic(randomLastNameLen),
		email,
		utils.RandomAlphanumeric(randomPasswordLen),
	)
}

func (s *Service) register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, services.ErrDuplicateEmail
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, services.WrapInternal("failed to check email", err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, services.WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(firstName, lastName, email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrDuplicateEmail.Wrap(err)
		}
		return nil, services.WrapInternal("failed to create user", err)
	}

	s.logger.Info("user created", zap.String("user_id", user.UserID))
	return user, nil
}

// Update changes the names of the user identified by userID.
// firstName is mandatory.
func (s *Service) Update(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error) {
	if err := utils.ValidateRequired(req.FirstName, "firstName"); err != nil {
		return nil, services.ErrMissingRequiredField.WithDetail("firstName", err.Error())
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, services.NewValidationError("invalid user", utils.GetValidationFields(err))
	}

	user, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.User, error) {
		user, err := s.users.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		models.ApplyUserUpdate(user, req)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, mapRepositoryError(err, "failed to update user")
	}

	s.logger.Info("user updated", zap.String("user_id", userID))
	return user, nil
}

// Delete removes the user identified by userID
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return mapRepositoryError(err, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}

func mapRepositoryError(err error, message string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return services.ErrUserNotFound.Wrap(err)
	case errors.Is(err, repositories.ErrDuplicate):
		return services.ErrDuplicateEmail.Wrap(err)
	}
	return services.WrapInternal(message, err)
}
