/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the studio payroll server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load config (YAML file + env overrides)
  3. Build zap logger
  4. Initialize SQLite store
  5. Wire auth, notifier, handler, router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (optional; env vars can carry secrets)
  -port    Override server.port
  -db      Override db.path. Use ":memory:" for an in-memory database.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  PAYROLL_ADMIN_EMAIL=admin@studio.test \
  PAYROLL_ADMIN_PASSWORD=change-me \
  PAYROLL_JWT_SECRET=dev-secret \
  ./server -db=./data/payroll.db

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Config shape and env overrides
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pirouette/payroll-engine/api"
	"github.com/pirouette/payroll-engine/auth"
	"github.com/pirouette/payroll-engine/config"
	"github.com/pirouette/payroll-engine/notify"
	"github.com/pirouette/payroll-engine/payroll"
	"github.com/pirouette/payroll-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Auth
	authMgr, err := auth.NewManager(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to initialize auth", zap.Error(err))
	}

	// Notifier: SMTP when configured, otherwise a no-op
	var notifier payroll.Notifier = payroll.NopNotifier{}
	if cfg.Mail.Enabled {
		notifier = notify.NewSMTPNotifier(cfg.Mail, logger)
	} else {
		logger.Info("mail disabled; hour confirmations will not be sent")
	}

	// Handler + router
	handler := api.NewHandler(authMgr, store, notifier, logger)
	router := api.NewRouter(handler, cfg.Server.AllowOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	default:
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
