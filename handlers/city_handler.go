package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/core-platform/middleware"
	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/utils"
	"go.uber.org/zap"
)

// CityService defines the city operations used by the handlers
type CityService interface {
	List(ctx context.Context) ([]*models.City, error)
	Create(ctx context.Context, req models.CityRequest) (*models.City, error)
	CreateRandom(ctx context.Context) (*models.City, error)
	Get(ctx context.Context, id int64) (*models.City, error)
	Update(ctx context.Context, id int64, req models.CityRequest) (*models.City, error)
	Delete(ctx context.Context, id int64) error
}

// CityHandler handles city-related HTTP requests
type CityHandler struct {
	cities CityService
	logger *zap.Logger
}

// NewCityHandler creates a new CityHandler
func NewCityHandler(cities CityService, logger *zap.Logger) *CityHandler {
	return &CityHandler{
		cities: cities,
		logger: logger,
	}
}

// HandleListCities handles GET /city
func (h *CityHandler) HandleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.cities.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, models.ToCityResponses(cities))
}

// HandleCreateCity handles POST /city/newCity
func (h *CityHandler) HandleCreateCity(w http.ResponseWriter, r *http.Request) {
	var req models.CityRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	city, err := h.cities.Create(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Debug("city created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.Int64("city_id", city.ID))
	_ = utils.WriteCreated(w, models.ToCityResponse(city))
}

// HandleCreateRandomCity handles POST /city/newRandomCity
func (h *CityHandler) HandleCreateRandomCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.cities.CreateRandom(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, models.ToCityResponse(city))
}

// HandleGetCity handles GET /city/{id}
func (h *CityHandler) HandleGetCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cityID(w, r)
	if !ok {
		return
	}

	city, err := h.cities.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, models.ToCityResponse(city))
}

// HandleUpdateCity handles PUT /city/{id}
func (h *CityHandler) HandleUpdateCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cityID(w, r)
	if !ok {
		return
	}

	var req models.CityRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	city, err := h.cities.Update(r.Context(), id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, models.ToCityResponse(city))
}

// HandleDeleteCity handles DELETE /city/{id}
func (h *CityHandler) HandleDeleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cityID(w, r)
	if !ok {
		return
	}

	if err := h.cities.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, models.OperationStatus{
		OperationName:   models.OperationDelete,
		OperationResult: models.OperationSuccess,
	})
}

func (h *CityHandler) cityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid city ID", nil)
		return 0, false
	}
	return id, true
}
