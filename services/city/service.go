package city

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/upb/core-platform/internal/observability"
	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/repositories"
	"github.com/upb/core-platform/services"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

const listCacheKey = "cities:all"

// Random city bounds
const (
	maxRandomLatitude   = 90
	maxRandomLongitude  = 180
	randomHemisphereLen = 2
	randomCityLen       = 10
	randomStateLen      = 20
)

// Service manages the city catalog
type Service struct {
	cities  repositories.CityRepository
	txMgr   repositories.TransactionManager
	cache   *cache.Cache
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewService creates a new city service. Listings are cached for cacheTTL;
// every write drops the cached listing.
func NewService(cities repositories.CityRepository, txMgr repositories.TransactionManager, cacheTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Service {
	return &Service{
		cities:  cities,
		txMgr:   txMgr,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		metrics: metrics,
		logger:  logger,
	}
}

// List returns every city ordered by ID
func (s *Service) List(ctx context.Context) ([]*models.City, error) {
	if cached, ok := s.cache.Get(listCacheKey); ok {
		return cloneList(cached.([]*models.City)), nil
	}

	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list cities", err)
	}

	s.cache.SetDefault(listCacheKey, cities)
	return cloneList(cities), nil
}

// Create validates req and stores a new city
func (s *Service) Create(ctx context.Context, req models.CityRequest) (*models.City, error) {
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, services.NewValidationError("invalid city", utils.GetValidationFields(err))
	}

	city := models.CityFromRequest(req)
	if err := s.cities.Create(ctx, city); err != nil {
		return nil, services.WrapInternal("failed to create city", err)
	}
	s.invalidate()

	s.logger.Info("city created", zap.Int64("city_id", city.ID))
	return city, nil
}

// CreateRandom stores a city with random coordinates and names
func (s *Service) CreateRandom(ctx context.Context) (*models.City, error) {
	city := models.NewCity(
		utils.RandomIntInRange(0, maxRandomLatitude),
		utils.RandomAlphabetic(randomHemisphereLen),
		utils.RandomIntInRange(0, maxRandomLongitude),
		utils.RandomAlphabetic(randomHemisphereLen),
		utils.RandomAlphabetic(randomCityLen),
		utils.RandomAlphabetic(randomStateLen),
	)
	if err := s.cities.Create(ctx, city); err != nil {
		return nil, services.WrapInternal("failed to create random city", err)
	}
	s.invalidate()

	s.logger.Info("random city created", zap.Int64("city_id", city.ID))
	return city, nil
}

// Get retrieves a city by ID
func (s *Service) Get(ctx context.Context, id int64) (*models.City, error) {
	city, err := s.cities.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to get city")
	}
	return city, nil
}

// Update replaces every field of the city identified by id
func (s *Service) Update(ctx context.Context, id int64, req models.CityRequest) (*models.City, error) {
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, services.NewValidationError("invalid city", utils.GetValidationFields(err))
	}

	city, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.City, error) {
		city, err := s.cities.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		models.ApplyCityRequest(city, req)
		if err := s.cities.Update(ctx, city); err != nil {
			return nil, err
		}
		return city, nil
	})
	if err != nil {
		return nil, mapRepositoryError(err, "failed to update city")
	}
	s.invalidate()

	s.logger.Info("city updated", zap.Int64("city_id", id))
	return city, nil
}

// Delete removes the city identified by id
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.cities.Delete(ctx, id); err != nil {
		return mapRepositoryError(err, "failed to delete city")
	}
	s.invalidate()

	s.logger.Info("city deleted", zap.Int64("city_id", id))
	return nil
}

func (s *Service) invalidate() {
	s.cache.Delete(listCacheKey)
}

func mapRepositoryError(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrCityNotFound.Wrap(err)
	}
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return services.WrapInternal(message, err)
}

// cloneList copies every city so callers never share values with the cache
func cloneList(cities []*models.City) []*models.City {
	out := make([]*models.City, len(cities))
	for i, city := range cities {
		c := *city
		out[i] = &c
	}
	return out
}
