package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/classtrack/rollcall-backend/internal/config"
	"github.com/classtrack/rollcall-backend/internal/database"
	"github.com/classtrack/rollcall-backend/internal/handler"
	"github.com/classtrack/rollcall-backend/internal/logger"
	"github.com/classtrack/rollcall-backend/internal/repository"
	"github.com/classtrack/rollcall-backend/internal/router"
	"github.com/classtrack/rollcall-backend/internal/service"
	"github.com/classtrack/rollcall-backend/internal/validator"
	"github.com/classtrack/rollcall-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Rollcall Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	snapshotRepo := repository.NewSnapshotRepository(rdb)
	sessionRepo := repository.NewSessionRepository(rdb)
	credentialRepo := repository.NewCredentialRepository(rdb)
	settingRepo := repository.NewSettingRepository(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, credentialRepo, sessionRepo, log)
	attendanceService, err := service.NewAttendanceService(ctx, snapshotRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load attendance state")
	}
	settingService := service.NewSettingService(settingRepo, log)
	exportService := service.NewExportService(attendanceService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Roster:     handler.NewRosterHandler(attendanceService),
		Report:     handler.NewReportHandler(attendanceService),
		Export:     handler.NewExportHandler(exportService),
		Setting:    handler.NewSettingHandler(settingService),
		Admin:      handler.NewAdminHandler(attendanceService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	autosaveWorker := worker.NewAutosaveWorker(attendanceService, authService, settingService, log)
	go autosaveWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the autosave worker; it writes the final snapshot on exit.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the final snapshot to land.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
