package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/core-platform/models"
	"github.com/upb/core-platform/services"
	"go.uber.org/zap"
)

// MockCityService is a mock implementation of CityService
type MockCityService struct {
	mock.Mock
}

func (m *MockCityService) List(ctx context.Context) ([]*models.City, error) {
	args := m.Called(ctx)
	if cities := args.Get(0); cities != nil {
		return cities.([]*models.City), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCityService) Create(ctx context.Context, req models.CityRequest) (*models.City, error) {
	args := m.Called(ctx, req)
	if city := args.Get(0); city != nil {
		return city.(*models.City), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCityService) CreateRandom(ctx context.Context) (*models.City, error) {
	args := m.Called(ctx)
	if city := args.Get(0); city != nil {
		return city.(*models.City), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCityService) Get(ctx context.Context, id int64) (*models.City, error) {
	args := m.Called(ctx, id)
	if city := args.Get(0); city != nil {
		return city.(*models.City), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCityService) Update(ctx context.Context, id int64, req models.CityRequest) (*models.City, error) {
	args := m.Called(ctx, id, req)
	if city := args.Get(0); city != nil {
		return city.(*models.City), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCityService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func cityRouter(h *CityHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/city", h.HandleListCities)
	r.Post("/city/newCity", h.HandleCreateCity)
	r.Post("/city/newRandomCity", h.HandleCreateRandomCity)
	r.Get("/city/{id}", h.HandleGetCity)
	r.Put("/city/{id}", h.HandleUpdateCity)
	r.Delete("/city/{id}", h.HandleDeleteCity)
	return r
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// decodeData unwraps the {"data": ...} envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

var youngstown = &models.City{ID: 1, LatD: 41, NS: "N", LongD: 80, EW: "W", Name: "Youngstown", State: "OH"}

func TestCityHandler_List(t *testing.T) {
	svc := new(MockCityService)
	svc.On("List", mock.Anything).Return([]*models.City{youngstown}, nil)

	w := httptest.NewRecorder()
	cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/city", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []models.CityResponse
	decodeData(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Youngstown", got[0].City)
	assert.Equal(t, 41, got[0].LatD)
}

func TestCityHandler_Create(t *testing.T) {
	req := models.CityRequest{LatD: 41, NS: "N", LongD: 80, EW: "W", City: "Youngstown", State: "OH"}

	t.Run("created", func(t *testing.T) {
		svc := new(MockCityService)
		svc.On("Create", mock.Anything, req).Return(youngstown, nil)

		w := httptest.NewRecorder()
		cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w,
			httptest.NewRequest(http.MethodPost, "/city/newCity", jsonBody(t, req)))

		assert.Equal(t, http.StatusCreated, w.Code)
		var got models.CityResponse
		decodeData(t, w, &got)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockCityService)

		w := httptest.NewRecorder()
		cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w,
			httptest.NewRequest(http.MethodPost, "/city/newCity", bytes.NewBufferString("{not json")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("service validation error", func(t *testing.T) {
		svc := new(MockCityService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, services.NewValidationError("invalid city", map[string]string{"city": "city is required"}))

		w := httptest.NewRecorder()
		cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w,
			httptest.NewRequest(http.MethodPost, "/city/newCity", jsonBody(t, models.CityRequest{})))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "city is required")
	})
}

func TestCityHandler_CreateRandom(t *testing.T) {
	svc := new(MockCityService)
	svc.On("CreateRandom", mock.Anything).Return(youngstown, nil)

	w := httptest.NewRecorder()
	cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w,
		httptest.NewRequest(http.MethodPost, "/city/newRandomCity", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCityHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(svc *MockCityService)
		wantStatus int
	}{
		{
			name: "found",
			path: "/city/1",
			setup: func(svc *MockCityService) {
				svc.On("Get", mock.Anything, int64(1)).Return(youngstown, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/city/2",
			setup: func(svc *MockCityService) {
				svc.On("Get", mock.Anything, int64(2)).Return(nil, services.ErrCityNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non numeric id",
			path:       "/city/abc",
			setup:      func(*MockCityService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero id",
			path:       "/city/0",
			setup:      func(*MockCityService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCityService)
			tt.setup(svc)

			w := httptest.NewRecorder()
			cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCityHandler_Update(t *testing.T) {
	req := models.CityRequest{LatD: 1, LongD: 2, City: "Renamed"}
	svc := new(MockCityService)
	svc.On("Update", mock.Anything, int64(1), req).Return(&models.City{ID: 1, LatD: 1, LongD: 2, Name: "Renamed"}, nil)

	w := httptest.NewRecorder()
	cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w,
		httptest.NewRequest(http.MethodPut, "/city/1", jsonBody(t, req)))

	assert.Equal(t, http.StatusOK, w.Code)
	var got models.CityResponse
	decodeData(t, w, &got)
	assert.Equal(t, "Renamed", got.City)
}

func TestCityHandler_Delete(t *testing.T) {
	t.Run("reports operation status", func(t *testing.T) {
		svc := new(MockCityService)
		svc.On("Delete", mock.Anything, int64(1)).Return(nil)

		w := httptest.NewRecorder()
		cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/city/1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got models.OperationStatus
		decodeData(t, w, &got)
		assert.Equal(t, models.OperationDelete, got.OperationName)
		assert.Equal(t, models.OperationSuccess, got.OperationResult)
	})

	t.Run("internal error", func(t *testing.T) {
		svc := new(MockCityService)
		svc.On("Delete", mock.Anything, int64(1)).Return(services.WrapInternal("failed to delete city", errors.New("boom")))

		w := httptest.NewRecorder()
		cityRouter(NewCityHandler(svc, zap.NewNop())).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/city/1", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}
