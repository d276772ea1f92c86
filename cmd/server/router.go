package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/deckgen-api/internal/api"
	apiMiddleware "github.com/phrazzld/deckgen-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	throttle := apiMiddleware.NewThrottle(app.config.Throttle)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	jobHandler := api.NewJobHandler(app.jobService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(throttle.Limit)
		r.Use(authMiddleware.Authenticate)
		jobHandler.RegisterRoutes(r)
	})

	r.Get("/health", api.Health)

	return r
}
