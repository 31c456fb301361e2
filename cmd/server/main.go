package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiltwatch/internal/alert"
	"tiltwatch/internal/config"
	"tiltwatch/internal/detector"
	"tiltwatch/internal/handlers"
	"tiltwatch/internal/logger"
	"tiltwatch/internal/middleware"
	"tiltwatch/internal/notify"
	"tiltwatch/internal/pipeline"
	"tiltwatch/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("server")

	store, err := storage.NewPostgres(cfg.DatabaseURL, cfg.DBTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureSchema(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}
	cancel()

	mailer := notify.NewSMTPMailer(notify.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		Timeout:  cfg.SMTPTimeout,
	})

	pipe := pipeline.New(detector.New(), alert.NewEvaluator(cfg.Thresholds), store, mailer)
	query := pipeline.NewQuery(store)

	router := handlers.NewRouter(
		handlers.NewIngestHandler(pipe),
		handlers.NewQueryHandler(query),
		handlers.NewDashboardHandler(query),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.Chain(router, middleware.Recovery, middleware.Logging),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	log.Info().Msg("exited")
}
