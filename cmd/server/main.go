package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sumire/triage/internal/client/predictor"
	"github.com/sumire/triage/internal/client/tracker"
	"github.com/sumire/triage/internal/config"
	"github.com/sumire/triage/internal/handler"
	"github.com/sumire/triage/internal/httpclient"
	"github.com/sumire/triage/internal/logger"
	"github.com/sumire/triage/internal/service"
	"github.com/sumire/triage/internal/triage"
)

const janitorInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Initialize(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	predictClient := predictor.NewClient(cfg.PredictURL, httpclient.New(cfg.RemoteTimeout, cfg.PredictAPIToken))
	creator, err := tracker.New(cfg)
	if err != nil {
		return fmt.Errorf("create tracker: %w", err)
	}

	slog.Info("remote services configured",
		"predict_url", cfg.PredictURL,
		"tracker", cfg.Tracker.Provider,
		"remote_timeout", cfg.RemoteTimeout,
	)

	tokens := service.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	sessions := service.NewSessionService(tokens, func() *triage.Controller {
		return triage.NewController(predictClient, creator, cfg.DefaultProject, cfg.RemoteTimeout)
	})

	e := handler.NewRouter(sessions, predictClient, allowedOrigins(cfg.FrontendURL))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RemoteTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go sessions.RunJanitor(janitorCtx, janitorInterval)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// allowedOrigins returns the CORS origins: the configured frontend plus the
// local development hosts.
func allowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	for _, o := range origins {
		if o == frontendURL {
			return origins
		}
	}
	if frontendURL != "" {
		origins = append(origins, frontendURL)
	}
	return origins
}
