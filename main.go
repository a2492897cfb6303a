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

	"github.com/isdelr/quill-be/internal/api"
	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/config"
	"github.com/isdelr/quill-be/internal/logger"
	"github.com/isdelr/quill-be/internal/maintenance"
	"github.com/isdelr/quill-be/internal/metrics"
	"github.com/isdelr/quill-be/internal/repository"
	"github.com/isdelr/quill-be/internal/repository/memory"
	"github.com/isdelr/quill-be/internal/repository/sqlite"
	"github.com/isdelr/quill-be/internal/services"
	"github.com/isdelr/quill-be/internal/validation"
	"github.com/isdelr/quill-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Setup(os.Stderr, cfg.LogLevel, cfg.Production()); err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("Invalid log level")
	}

	// Set up storage
	store, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("Failed to initialize storage")
	}
	defer store.Close()

	tokens, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Set up services
	rules := validation.DefaultRules()
	rules.AllowPasswordChange = cfg.AllowPasswordChange
	collector := metrics.NewCollector()
	eventService := services.NewEventService(store.Events, hub)
	userService, err := services.NewUserService(store, tokens, rules, eventService, collector, cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize user service")
	}
	articleService := services.NewArticleService(store, rules, eventService, collector)

	// Set up and run the event pruner
	pruner, err := maintenance.NewPruner(eventService, cfg.EventRetention, cfg.EventPruneSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize event pruner")
	}
	pruner.Start()

	router := api.NewRouter(api.Deps{
		Users:             userService,
		Articles:          articleService,
		Events:            eventService,
		Guard:             auth.NewGuard(tokens),
		Hub:               hub,
		Metrics:           collector,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		AuthRatePerMinute: cfg.AuthRatePerMinute,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("storage", cfg.Storage).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pruner.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	stop()

	log.Info().Msg("Server exiting")
}

func openStore(cfg *config.Config) (*repository.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage; data is lost on exit")
		return memory.NewStore(), nil
	case config.StorageSQLite:
		return sqlite.Open(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
