package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/core-platform/app"
	appmw "github.com/upb/core-platform/middleware"
	"github.com/upb/core-platform/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	authCfg := deps.Config.Auth

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmw.HTTPMetrics(deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.Config.Server.RequestTimeout))

	// CORS middleware; the token and user id travel in response headers
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", authCfg.HeaderName},
		ExposedHeaders:   []string{authCfg.HeaderName, authCfg.UserIDHeaderName, "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Request gate; public routes are let through by it
	r.Use(deps.AuthMiddleware.RequireAuth)

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReadiness)

	// API documentation
	r.Get("/v3/api-docs", deps.Docs.HandleAPIDocs)
	r.Get("/swagger-ui/*", deps.Docs.HandleSwaggerUI)

	r.Route("/users", func(r chi.Router) {
		r.Post("/login", deps.AuthHandler.HandleLogin)
		r.Post("/", deps.UserHandler.HandleCreateUser)
		r.Get("/", deps.UserHandler.HandleListUsers)
		r.Post("/random", deps.UserHandler.HandleCreateRandomUser)
		r.Get("/{id}", deps.UserHandler.HandleGetUser)
		r.Put("/{id}", deps.UserHandler.HandleUpdateUser)
		r.Delete("/{id}", deps.UserHandler.HandleDeleteUser)
	})

	r.Route("/city", func(r chi.Router) {
		r.Get("/", deps.CityHandler.HandleListCities)
		r.Post("/newCity", deps.CityHandler.HandleCreateCity)
		r.Post("/newRandomCity", deps.CityHandler.HandleCreateRandomCity)
		r.Post("/upload", deps.Upload.HandleUpload)
		r.Get("/{id}", deps.CityHandler.HandleGetCity)
		r.Put("/{id}", deps.CityHandler.HandleUpdateCity)
		r.Delete("/{id}", deps.CityHandler.HandleDeleteCity)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
