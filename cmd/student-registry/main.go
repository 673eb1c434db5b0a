// main is the entry point of the Student Registry API.
//
// STARTUP SEQUENCE:
//  1. Load .env (if present) and the YAML configuration
//  2. Initialise the logger
//  3. Open the configured storage backend (sqlite or mongo)
//  4. Build the password hasher and the student service
//  5. Register all HTTP routes and start the server in a goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close storage
//
// RUNNING THE SERVER:
//
//	go run ./cmd/student-registry --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/student-registry
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

	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/aanand-mishra/student-registry/internal/config"
	"github.com/aanand-mishra/student-registry/internal/http/handlers/student"
	"github.com/aanand-mishra/student-registry/internal/password"
	"github.com/aanand-mishra/student-registry/internal/service"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/storage/mongodb"
	"github.com/aanand-mishra/student-registry/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// A missing .env is fine; real deployments pass plain env vars.
	_ = godotenv.Load()
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-registry",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	store, err := openStorage(context.Background(), cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised", slog.String("driver", cfg.StorageDriver))

	// ── 4. Service ────────────────────────────────────────────────────────
	hasher, err := password.NewBcrypt(cfg.BcryptSaltRounds)
	if err != nil {
		log.Error("invalid bcrypt_salt_rounds", slog.String("error", err.Error()))
		os.Exit(1)
	}

	students := service.NewStudentService(store, hasher, log)

	// ── 5. Routes & Server ────────────────────────────────────────────────
	//   POST   /api/students        → create a new student
	//   GET    /api/students        → list all students
	//   GET    /api/students/{id}   → get matching students by id
	//   DELETE /api/students/{id}   → soft-delete a student
	router := http.NewServeMux()
	student.Register(router, students)

	// RequestID tags every request; Recoverer turns a handler panic into
	// a 500 instead of killing the connection.
	handler := middleware.RequestID(middleware.Recoverer(router))

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: handler,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected, not an error.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
	}

	if err := store.Close(ctx); err != nil {
		log.Error("failed to close storage", slog.String("error", err.Error()))
	}

	log.Info("server stopped gracefully")
}

// openStorage returns the backend named by cfg.StorageDriver.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		return mongodb.New(ctx, cfg)
	case config.DriverSQLite:
		return sqlite.New(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
