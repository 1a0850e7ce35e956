/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the dispatch engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load configuration
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Configure HTTP router and start the lock sweeper
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Optional YAML config file path
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the lock sweeper and close the database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/dispatch.db"

  # Run with a config file
  ./server -config=./dispatch.yaml

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  DISPATCH_-prefixed variables override the file, e.g.
  DISPATCH_SERVER__PORT=9090, DISPATCH_AUTH__TOKENS=secret.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/dispatch-engine/api"
	"github.com/warp/dispatch-engine/config"
	"github.com/warp/dispatch-engine/planner"
	"github.com/warp/dispatch-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}

	log := newLogger(cfg.Logging)

	// Initialize store
	store, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	plannerCfg := planner.DefaultConfig()
	plannerCfg.DailyCapMinutes = cfg.Planner.DailyCapMinutes
	plannerCfg.SlotStepMinutes = cfg.Planner.SlotStepMinutes
	plannerCfg.DefaultDurationMinutes = cfg.Planner.DefaultDurationMinutes
	plannerCfg.SpareToday = cfg.Planner.SpareToday

	schedulable := make([]planner.Category, 0, len(cfg.Planner.SchedulableCategories))
	for _, c := range cfg.Planner.SchedulableCategories {
		schedulable = append(schedulable, planner.Category(c))
	}
	lockTTL := time.Duration(cfg.Planner.LockTTLMinutes) * time.Minute

	// Initialize handler and router
	handler := api.NewHandler(store, log, plannerCfg, schedulable, lockTTL)
	verifier := api.NewStaticVerifier(cfg.Auth.Tokens)
	if verifier.Permissive() {
		log.Warn().Msg("no auth tokens configured, API accepts unauthenticated requests")
	}
	router := api.NewRouter(handler, verifier)

	// Background stale-lock cleanup
	sweeper := api.NewLockSweeper(store, log, lockTTL)
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("db", cfg.Server.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
