package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/services/auth"
	"github.com/mcoot/seabattle/internal/services/bot"
	"github.com/mcoot/seabattle/internal/services/command"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/leaderboard"
	"github.com/mcoot/seabattle/internal/services/room"
	"github.com/mcoot/seabattle/internal/storage"
	"github.com/mcoot/seabattle/internal/storage/memory"
	redisstorage "github.com/mcoot/seabattle/internal/storage/redis"
	"github.com/mcoot/seabattle/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService    *auth.Service
	GameController *game.Controller
	Registry       *room.Registry
	Leaderboard    *leaderboard.Service
	BotService     *bot.Service
	Router         *command.Router

	// Transport
	Hub *ws.Hub

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// BotConfig holds configuration for solo play (optional)
	// If zero value, defaults to bot.DefaultConfig()
	BotConfig bot.Config
	// WebSocketConfig holds transport settings (optional)
	// Zero fields fall back to ws.DefaultConfig()
	WebSocketConfig ws.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	app, err := newWithDependencies(store, clk, rnd, cfg, logger)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	botCfg := cfg.BotConfig
	defaults := bot.DefaultConfig()
	if botCfg.Strategy == "" {
		botCfg.Strategy = defaults.Strategy
	}
	if botCfg.TurnInterval == 0 {
		botCfg.TurnInterval = defaults.TurnInterval
	}
	strategy, err := bot.NewStrategy(botCfg.Strategy, rnd)
	if err != nil {
		return nil, fmt.Errorf("bot config: %w", err)
	}

	// Create services
	authService := auth.New(store, clk, cfg.AuthConfig)
	gameController := game.NewController(clk, rnd, logger)
	registry := room.NewRegistry(gameController, clk, logger)
	leaderboardService := leaderboard.New(store, logger)
	botService := bot.NewService(strategy, clk, botCfg, logger)
	router := command.NewRouter(authService, registry, gameController, leaderboardService, botService, logger)
	hub := ws.NewHub(router, cfg.WebSocketConfig, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		AuthService:    authService,
		GameController: gameController,
		Registry:       registry,
		Leaderboard:    leaderboardService,
		BotService:     botService,
		Router:         router,
		Hub:            hub,
		logger:         logger,
	}, nil
}

// Handler returns the HTTP handler serving /ws and the REST read models
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:      a.logger,
		Registry:    a.Registry,
		Leaderboard: a.Leaderboard,
		Stats:       a.Stats,
		WebSocket:   a.Hub.ServeWS,
	})
}

// Stats reports live counters for the health endpoint
func (a *App) Stats() response.Health {
	return response.Health{
		Connections:   a.Router.ConnectionCount(),
		OnlinePlayers: a.AuthService.OnlineCount(),
		Rooms:         a.Registry.Count(),
		Games:         a.Registry.GameCount(),
	}
}

// Close stops bot timers, disconnects every client and releases storage
// The router is closed first so the dropped connections forfeit nothing
func (a *App) Close() error {
	a.Router.Close()
	a.Hub.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
