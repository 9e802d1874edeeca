package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/seabattle/internal/services/room"
)

// Handler receives connection lifecycle events and inbound frames
type Handler interface {
	HandleConnect(conn room.Conn)
	HandleMessage(ctx context.Context, conn room.Conn, raw []byte)
	HandleDisconnect(ctx context.Context, conn room.Conn)
}

// Config holds websocket transport settings
type Config struct {
	// WriteWait is the time allowed to write a frame
	WriteWait time.Duration
	// PongWait is the time allowed between pongs before the read fails
	PongWait time.Duration
	// PingPeriod must be shorter than PongWait
	PingPeriod time.Duration
	// MaxMessageSize caps inbound frames, in bytes
	MaxMessageSize int64
	// SendBufferSize is the per-client outbound queue length
	SendBufferSize int
	// AllowedOrigins restricts the Origin header; empty allows any
	AllowedOrigins []string
}

// DefaultConfig returns default websocket configuration
func DefaultConfig() Config {
	return Config{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBufferSize: 256,
	}
}

// Hub upgrades HTTP requests and tracks the resulting clients
type Hub struct {
	handler  Handler
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool
	wg      sync.WaitGroup
}

// NewHub creates a new Hub dispatching to handler
func NewHub(handler Handler, cfg Config, logger *slog.Logger) *Hub {
	defaults := DefaultConfig()
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaults.PongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaults.SendBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "websocket")),
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[string]*Client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeWS upgrades the request and starts the client's pumps
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(uuid.NewString(), h, conn)
	if !h.register(client) {
		_ = conn.Close()
		return
	}
	h.handler.HandleConnect(client)

	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client.id] = client
	// Pumps are counted before Close can observe the client
	h.wg.Add(2)
	h.logger.Info("websocket client registered",
		slog.String("conn_id", client.id),
		slog.Int("total_clients", len(h.clients)))
	return true
}

// unregister drops the client and notifies the handler once
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.id]
	delete(h.clients, client.id)
	count := len(h.clients)
	h.mu.Unlock()

	client.close()
	if !ok {
		return
	}

	h.handler.HandleDisconnect(h.ctx, client)
	h.logger.Info("websocket client unregistered",
		slog.String("conn_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", count))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their pumps to exit
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
	h.wg.Wait()
	h.cancel()

	h.logger.Info("websocket hub stopped", slog.Int("disconnected_clients", len(clients)))
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, r.Header.Get("Origin"))
}
