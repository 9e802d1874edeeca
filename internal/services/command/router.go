package command

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/auth"
	"github.com/mcoot/seabattle/internal/services/bot"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/leaderboard"
	"github.com/mcoot/seabattle/internal/services/room"
)

// ConnState is where a connection is in its lifecycle
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateUnregistered ConnState = "unregistered"
	StateRegistered   ConnState = "registered"
	StateInRoom       ConnState = "in_room"
	StateInSession    ConnState = "in_session"
)

// session is the router's view of one connection
type session struct {
	conn   room.Conn
	player *model.Player // nil until reg succeeds
}

// Router decodes inbound frames and dispatches them to the registry,
// game controller and leaderboard, sending the resulting messages.
//
// Lock order: room lock, then Router.mu. Router.mu is never held while
// taking a room lock.
type Router struct {
	auth        *auth.Service
	registry    *room.Registry
	games       *game.Controller
	leaderboard *leaderboard.Service
	bots        *bot.Service
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session

	// closing is set once the server starts shutting down; disconnects
	// after that point are not the players' doing
	closing atomic.Bool
}

// NewRouter creates a new command Router
func NewRouter(
	authService *auth.Service,
	registry *room.Registry,
	games *game.Controller,
	leaderboardService *leaderboard.Service,
	bots *bot.Service,
	logger *slog.Logger,
) *Router {
	return &Router{
		auth:        authService,
		registry:    registry,
		games:       games,
		leaderboard: leaderboardService,
		bots:        bots,
		logger:      logger.With(slog.String("component", "command-router")),
		sessions:    make(map[string]*session),
	}
}

// HandleConnect starts tracking a connection
func (r *Router) HandleConnect(conn room.Conn) {
	r.mu.Lock()
	r.sessions[conn.ID()] = &session{conn: conn}
	count := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("connection opened",
		slog.String("conn_id", conn.ID()),
		slog.Int("connections", count),
	)
}

// HandleMessage decodes and executes one inbound frame. Failures are
// answered with an error reply; the connection always stays open.
func (r *Router) HandleMessage(ctx context.Context, conn room.Conn, raw []byte) {
	cmd, err := protocol.Decode(raw)
	if err != nil {
		var de *protocol.DecodeError
		id := protocol.BroadcastID
		if errors.As(err, &de) {
			id = de.ID
		}
		r.logger.Debug("rejected frame",
			slog.String("conn_id", conn.ID()),
			slog.String("error", err.Error()),
		)
		conn.Send(protocol.Error(id, err))
		return
	}

	if reg, ok := cmd.(protocol.RegisterCommand); ok {
		r.handleRegister(ctx, conn, reg)
		return
	}

	player := r.playerFor(conn.ID())
	if player == nil {
		conn.Send(protocol.Error(cmd.RequestID(), model.ErrNotRegistered))
		return
	}

	switch c := cmd.(type) {
	case protocol.CreateRoomCommand:
		err = r.handleCreateRoom(ctx, conn, c)
	case protocol.JoinRoomCommand:
		err = r.handleJoinRoom(ctx, conn, player, c)
	case protocol.AddShipsCommand:
		err = r.handleAddShips(ctx, conn, c)
	case protocol.AttackCommand:
		err = r.handleAttack(ctx, conn, c)
	case protocol.RandomAttackCommand:
		err = r.handleRandomAttack(ctx, conn, c)
	case protocol.SinglePlayCommand:
		err = r.handleSinglePlay(ctx, conn, player, c)
	default:
		err = protocol.ErrUnknownCommand
	}

	if err != nil {
		r.logger.Debug("command failed",
			slog.String("conn_id", conn.ID()),
			slog.String("type", cmd.Type()),
			slog.String("error", err.Error()),
		)
		conn.Send(protocol.Error(cmd.RequestID(), err))
	}
}

// HandleDisconnect forfeits the connection's running games, drops its
// waiting rooms and releases its player binding. Once the router is
// closing, running games are abandoned without a winner.
func (r *Router) HandleDisconnect(ctx context.Context, conn room.Conn) {
	connID := conn.ID()

	r.mu.Lock()
	sess, ok := r.sessions[connID]
	delete(r.sessions, connID)
	r.mu.Unlock()
	if !ok {
		return
	}

	closing := r.closing.Load()
	roomsChanged := false
	for _, roomID := range r.registry.RoomsFor(connID) {
		err := r.registry.WithRoom(roomID, func(rm *room.Room) error {
			g := rm.Game()
			if g == nil {
				roomsChanged = true
				rm.Close()
				return nil
			}
			if !g.IsFinished() && !closing {
				outcome, err := r.games.Forfeit(g, rm.SeatOf(connID))
				if err != nil {
					return err
				}
				r.finishGame(ctx, rm, g, *outcome)
				return nil
			}
			rm.Close()
			r.bots.Cancel(g.ID)
			return nil
		})
		if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
			r.logger.Error("failed to clean up room",
				slog.String("conn_id", connID),
				slog.Int("room_id", int(roomID)),
				slog.String("error", err.Error()),
			)
		}
	}

	if sess.player != nil {
		r.auth.Release(sess.player.ID, connID)
	}
	if roomsChanged && !closing {
		r.broadcastAll(protocol.UpdateRoom(r.registry.AvailableRooms()))
	}

	r.logger.Info("connection closed",
		slog.String("conn_id", connID),
		slog.Bool("shutdown", closing),
	)
}

// State reports the lifecycle state of a connection
func (r *Router) State(connID string) ConnState {
	player := r.playerFor(connID)
	if player == nil {
		r.mu.RLock()
		_, ok := r.sessions[connID]
		r.mu.RUnlock()
		if !ok {
			return StateDisconnected
		}
		return StateUnregistered
	}

	state := StateRegistered
	for _, roomID := range r.registry.RoomsFor(connID) {
		_ = r.registry.WithRoom(roomID, func(rm *room.Room) error {
			if g := rm.Game(); g != nil && !g.IsFinished() {
				state = StateInSession
			} else if state != StateInSession {
				state = StateInRoom
			}
			return nil
		})
	}
	return state
}

// ConnectionCount returns the number of open connections
func (r *Router) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close marks the router as shutting down and stops all bot timers.
// Call it before the hub drops its connections.
func (r *Router) Close() {
	r.closing.Store(true)
	r.bots.Stop()
}

func (r *Router) playerFor(connID string) *model.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sess, ok := r.sessions[connID]; ok {
		return sess.player
	}
	return nil
}

// broadcastAll sends to every open connection, in ID order
func (r *Router) broadcastAll(msg []byte) {
	r.mu.RLock()
	conns := make([]room.Conn, 0, len(r.sessions))
	for _, sess := range r.sessions {
		conns = append(conns, sess.conn)
	}
	r.mu.RUnlock()

	sort.Slice(conns, func(i, j int) bool { return conns[i].ID() < conns[j].ID() })
	for _, c := range conns {
		if !c.Send(msg) {
			r.logger.Warn("dropped broadcast", slog.String("conn_id", c.ID()))
		}
	}
}
