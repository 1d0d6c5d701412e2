package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warescan/warescan/internal/api"
	"github.com/warescan/warescan/internal/auth"
	"github.com/warescan/warescan/internal/config"
	"github.com/warescan/warescan/internal/database"
	"github.com/warescan/warescan/internal/export"
	"github.com/warescan/warescan/internal/feed"
	"github.com/warescan/warescan/internal/intake"
	"github.com/warescan/warescan/internal/scan"
	"github.com/warescan/warescan/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := user.NewRepository(db.Pool())
	scanRepo := scan.NewRepository(db.Pool())
	credRepo := auth.NewRepository(db.Pool())

	userService := user.NewService(userRepo)
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	gate := auth.NewService(credRepo, userService, tokens, newMailer(cfg), cfg.BcryptCost)

	if err := gate.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		slog.Error("failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	hub := feed.NewHub()
	notifier := feed.NewNotifier(hub, scanRepo, userRepo, cfg.FeedLimit)

	guard := intake.NewGuard(time.Duration(cfg.DebounceWindowMS) * time.Millisecond)
	reconciler := scan.NewReconciler(scanRepo)
	pipeline := intake.NewPipeline(guard, reconciler, notifier)
	go pipeline.Run(ctx)

	if cfg.ScannerListenAddr != "" {
		source := intake.NewLineSource(cfg.ScannerListenAddr, pipeline, &scannerAuth{gate: gate})
		go func() {
			if err := source.Listen(ctx); err != nil {
				slog.Error("scanner listener failed", "error", err)
			}
		}()
	}

	router := api.NewRouter(api.RouterDeps{
		Gate:     gate,
		Pipeline: pipeline,
		ScanRepo: scanRepo,
		UserRepo: userRepo,
		Exporter: export.NewCSVExporter(scanRepo, userService),
		Hub:      hub,
		Notifier: notifier,
		DBPinger: db,
		Version:  cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting warescan server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	cancel()
	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func newMailer(cfg *config.Config) auth.Mailer {
	if cfg.SMTPHost == "" {
		return auth.LogMailer{}
	}
	return &auth.SMTPMailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
}

// scannerAuth adapts the identity gate to the scanner listener's
// actor-resolver interface.
type scannerAuth struct {
	gate *auth.Service
}

func (s *scannerAuth) ResolveActor(ctx context.Context, token string) (scan.Actor, error) {
	identity, err := s.gate.ResolveIdentity(ctx, token)
	if err != nil {
		return scan.Actor{}, err
	}
	return scan.Actor{ID: identity.AccountID, Name: identity.Name}, nil
}
