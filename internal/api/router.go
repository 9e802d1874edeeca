package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/api/apierr"
	"github.com/mcoot/seabattle/internal/api/handler"
	"github.com/mcoot/seabattle/internal/api/middleware"
	"github.com/mcoot/seabattle/internal/services/leaderboard"
	"github.com/mcoot/seabattle/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Registry    *room.Registry
	Leaderboard *leaderboard.Service
	Stats       handler.StatsFunc
	// WebSocket serves the game protocol on /ws
	WebSocket http.HandlerFunc
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	healthHandler := handler.NewHealthHandler(cfg.Stats)
	winnersHandler := handler.NewWinnersHandler(cfg.Leaderboard)
	roomHandler := handler.NewRoomHandler(cfg.Registry)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	if cfg.WebSocket != nil {
		r.HandleFunc("/ws", cfg.WebSocket).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/winners", winnersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Get).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	return r
}
