package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/afero"
	"github.com/upb/core-platform/auth"
	"github.com/upb/core-platform/config"
	"github.com/upb/core-platform/handlers"
	"github.com/upb/core-platform/internal/apidocs"
	"github.com/upb/core-platform/internal/observability"
	"github.com/upb/core-platform/middleware"
	"github.com/upb/core-platform/repositories"
	"github.com/upb/core-platform/repositories/postgres"
	"github.com/upb/core-platform/services/city"
	"github.com/upb/core-platform/services/upload"
	"github.com/upb/core-platform/services/user"
	"github.com/upb/core-platform/storage"
	"go.uber.org/zap"
)

// Version is reported in the API document
var Version = "dev"

// PublicRoutes are reachable without a token
var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodPost, Path: "/users/login"},
	{Method: http.MethodPost, Path: "/users"},
	{Method: http.MethodGet, Path: "/healthz"},
	{Method: http.MethodGet, Path: "/readyz"},
	{Method: http.MethodGet, Path: "/v3/api-docs"},
	{Method: http.MethodGet, Path: "/swagger-ui/*"},
}

// Store is the persistence the application runs on
type Store struct {
	Repositories *repositories.Repositories
	TxManager    repositories.TransactionManager

	// Health backs the readiness probe; nil reports the database as not configured
	Health handlers.HealthChecker
}

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Cities    repositories.CityRepository
	Users     repositories.UserRepository
	TxManager repositories.TransactionManager

	// Services
	Tokens      *auth.TokenService
	CityService *city.Service
	UserService *user.Service
	Uploads     *upload.Service
	BlobStore   *storage.BlobStore

	// HTTP
	AuthHandler    *auth.Handler
	CityHandler    *handlers.CityHandler
	UserHandler    *handlers.UserHandler
	Upload         *handlers.UploadHandler
	Health         *handlers.HealthHandler
	Docs           *handlers.DocsHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies connects to PostgreSQL and wires every component on top of it.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db := factory.GetDB()
	deps, err := NewDependenciesWithStore(cfg, logger, Store{
		Repositories: factory.NewRepositories(),
		TxManager:    factory.GetTransactionManager(),
		Health:       db,
	}, afero.NewOsFs())
	if err != nil {
		_ = factory.Close()
		return nil, err
	}

	deps.RepoFactory = factory
	deps.DB = db
	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesWithStore wires services, handlers and the request gate on the
// given store. Uploaded files are written to fs under cfg.Storage.UploadDir.
func NewDependenciesWithStore(cfg *config.Config, logger *zap.Logger, store Store, fs afero.Fs) (*Dependencies, error) {
	if store.Repositories == nil || store.TxManager == nil {
		return nil, errors.New("repositories and transaction manager are required")
	}

	deps := &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Cities:    store.Repositories.Cities,
		Users:     store.Repositories.Users,
		TxManager: store.TxManager,
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	deps.Metrics = metrics

	if err := deps.initServices(fs); err != nil {
		return nil, err
	}
	if err := deps.initAuth(); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}
	if err := deps.initHandlers(store.Health); err != nil {
		return nil, err
	}
	return deps, nil
}

func (d *Dependencies) initServices(fs afero.Fs) error {
	d.CityService = city.NewService(d.Cities, d.TxManager, d.Config.Catalog.CacheTTL, d.Metrics, d.Logger)
	d.UserService = user.NewService(d.Users, d.TxManager, d.Config.Auth.BcryptCost, d.Logger)

	blobs, err := storage.NewBlobStore(fs, d.Config.Storage.UploadDir, d.Config.Storage.MaxUploadBytes, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	d.BlobStore = blobs
	d.Uploads = upload.NewService(blobs, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

func (d *Dependencies) initAuth() error {
	tokens, err := auth.NewTokenService(d.Config.Auth)
	if err != nil {
		return err
	}
	verifier, err := auth.NewVerifier(d.UserService, d.Config.Auth.BcryptCost, d.Logger)
	if err != nil {
		return err
	}

	d.Tokens = tokens
	d.AuthHandler = auth.NewHandler(d.Config.Auth, verifier, tokens, d.Metrics, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(tokens, d.Config.Auth.HeaderName, PublicRoutes, d.Metrics, d.Logger)
	return nil
}

func (d *Dependencies) initHandlers(health handlers.HealthChecker) error {
	docs, err := handlers.NewDocsHandler(apidocs.Build(Version), d.Logger)
	if err != nil {
		return err
	}

	d.Docs = docs
	d.CityHandler = handlers.NewCityHandler(d.CityService, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.Upload = handlers.NewUploadHandler(d.Uploads, d.Config.Storage.MaxUploadBytes, d.Logger)
	d.Health = handlers.NewHealthHandler(health, d.Logger)
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return errors.Join(errs...)
}
