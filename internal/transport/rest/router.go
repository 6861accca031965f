package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/permit"
	"github.com/frahmantamala/permit-service/internal/transport/middleware"
	"github.com/frahmantamala/permit-service/internal/transport/swagger"
	"github.com/frahmantamala/permit-service/internal/user"
)

type Handlers struct {
	Health *HealthHandler
	Permit *permit.Handler
	User   *user.Handler
}

func RegisterAllRoutes(router *chi.Mux, cfg internal.ServerConfig, production bool, handlers Handlers, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Origins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.TraceHeader},
		ExposedHeaders: []string{middleware.TraceHeader},
		MaxAge:         300,
	}))
	router.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      !production,
	}).Handler)
	if cfg.RateLimitPerMinute > 0 {
		router.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}

	router.Get(swagger.SpecPath, swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		if handlers.Health != nil {
			r.Get("/health", handlers.Health.Check)
			r.Get("/ping", handlers.Health.Ping)
		}

		if handlers.Permit != nil {
			r.Route("/permits", func(pr chi.Router) {
				pr.Post("/", handlers.Permit.CreatePermit)
				pr.Get("/", handlers.Permit.ListPermits)
				pr.Get("/{id}", handlers.Permit.GetPermit)
				pr.Put("/{permit_number}", handlers.Permit.UpdatePermit)
			})
		}

		if handlers.User != nil {
			r.Route("/users", func(ur chi.Router) {
				ur.Get("/", handlers.User.ListUsers)
				ur.Post("/", handlers.User.CreateUser)
			})
		}
	})
}
