package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deeper-blue/negativei2-server/internal/config"
	"github.com/deeper-blue/negativei2-server/internal/controller"
	"github.com/deeper-blue/negativei2-server/internal/store"
	"github.com/deeper-blue/negativei2-server/internal/web"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line flags
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.Development.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.Development.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Select match/controller storage
	var st store.Store
	if cfg.Redis.Enabled {
		rs, err := store.NewRedis(context.Background(), cfg.Redis.Addr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		defer rs.Close()
		st = rs
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis store")
	} else {
		st = store.NewMemory()
		log.Info().Msg("Using in-memory store")
	}

	// Websocket hub for match event broadcasts
	hub := web.NewHub()
	go hub.Run()

	// Board controller sessions
	controllers := controller.NewService(st, st, hub, time.Duration(cfg.Controller.TimeoutSeconds)*time.Second)

	// Create service
	service := web.NewService(st, controllers, hub)
	router := service.Router()

	// Add CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func showHelpMessage() {
	fmt.Println(`negativei2 Game Server

DESCRIPTION:
    Match server for the Deeper Blue physical chess board. Tracks match
    state (clocks, draw offers, resignations), validates moves with the
    notnil/chess engine, and reconciles connected board controllers via
    a polling protocol. Provides a REST API plus a websocket event feed.

USAGE:
    negativei2-server [OPTIONS]

OPTIONS:
    -h, --help    Show this help message

CONFIGURATION:
    Configured via config.yaml in the current directory, overridable
    with NEGATIVEI2_* environment variables.

    Example config.yaml:
        server:
          host: 0.0.0.0
          port: 8080

        controller:
          timeout_seconds: 60

        redis:
          enabled: false
          addr: localhost:6379

        development:
          debug: false
          log_level: info

API ENDPOINTS:
    GET  /api/health                   - Service health check
    POST /api/games                    - Create a new match
    GET  /api/games                    - List joinable matches
    GET  /api/games/{id}               - Fetch match state
    POST /api/games/{id}/join          - Claim an open side
    POST /api/games/{id}/moves         - Submit a SAN move
    POST /api/games/{id}/resign        - Resign the match
    POST /api/games/{id}/draw          - Offer a draw
    POST /api/games/{id}/draw/respond  - Accept or decline a draw offer
    POST /api/controller/register      - Register a board controller
    POST /api/controller/poll          - Controller state reconciliation
    GET  /ws?game_id={id}              - Websocket match event feed

BEHAVIOR:
    - Validates moves using the notnil/chess engine
    - Persists match snapshots in redis or in memory
    - Broadcasts match events to websocket subscribers
    - Graceful shutdown on SIGINT/SIGTERM

EXAMPLES:
    # Start with default configuration
    negativei2-server

    # Create a match via API
    curl -X POST http://localhost:8080/api/games \
      -H "Content-Type: application/json" \
      -d '{"creator_id": "user1", "player1_id": "user1", "player2_id": "OPEN", "time_per_player": 3600}'`)
}
