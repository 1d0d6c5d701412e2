package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/warescan/warescan/internal/api/handler"
	"github.com/warescan/warescan/internal/api/middleware"
	"github.com/warescan/warescan/internal/auth"
	"github.com/warescan/warescan/internal/export"
	"github.com/warescan/warescan/internal/feed"
	"github.com/warescan/warescan/internal/intake"
	"github.com/warescan/warescan/internal/scan"
	"github.com/warescan/warescan/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Gate     *auth.Service
	Pipeline *intake.Pipeline
	ScanRepo scan.Repository
	UserRepo user.Repository
	Exporter *export.CSVExporter
	Hub      *feed.Hub
	Notifier *feed.Notifier
	DBPinger handler.DBPinger
	Version  string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.Gate)
	scanHandler := handler.NewScanHandler(deps.Pipeline, deps.ScanRepo, deps.Exporter, deps.Notifier)
	userHandler := handler.NewUserHandler(deps.Gate, deps.UserRepo, deps.Notifier)
	streamHandler := handler.NewStreamHandler(deps.Hub)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/password-reset", authHandler.RequestReset)
			r.Post("/password-reset/confirm", authHandler.ConfirmReset)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Gate))

			r.Post("/scans/reads", scanHandler.IngestRead)
			r.Get("/scans", scanHandler.List)
			r.Get("/scans/stream", streamHandler.Scans)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/scans/export", scanHandler.Export)
				r.Delete("/scans/{id}", scanHandler.Delete)

				r.Post("/users", userHandler.Create)
				r.Get("/users", userHandler.List)
				r.Get("/users/stream", streamHandler.Users)
				r.Patch("/users/{id}", userHandler.Update)
				r.Delete("/users/{id}", userHandler.Delete)
			})
		})
	})

	return r
}
