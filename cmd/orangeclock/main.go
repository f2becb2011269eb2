package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/orange-clock/internal/application"
	"github.com/example/orange-clock/internal/audio"
	"github.com/example/orange-clock/internal/config"
	httptransport "github.com/example/orange-clock/internal/http"
	"github.com/example/orange-clock/internal/logging"
	"github.com/example/orange-clock/internal/persistence/sqlite"
	"github.com/example/orange-clock/internal/recurrence"
)

func main() {
	// Optional .env file for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stdout, "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	library, err := audio.NewLibrary(cfg.AudioDir)
	if err != nil {
		logger.Error("failed to open audio library", "error", err)
		os.Exit(1)
	}

	alarmRepo := sqlite.NewAlarmRepository(pool, uuid.NewString, time.Now)

	alarmService := application.NewAlarmService(
		alarmRepo,
		library,
		recurrence.NewCodec(time.Local),
		recurrence.NewEvaluator(time.Local),
		time.Now,
		cfg.DefaultHorizon,
		logger,
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Alarms:     httptransport.NewAlarmHandler(alarmService, logger),
		Audios:     httptransport.NewAudioHandler(library, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("alarm clock API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
