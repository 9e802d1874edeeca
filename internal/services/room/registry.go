package room

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/game"
)

// maxGameIDAttempts bounds retries when a random game ID collides
const maxGameIDAttempts = 8

// Registry maps room IDs to rooms and game IDs to their owning room.
//
// Lock order: a room's mutex may be held while taking the registry
// lock, never the other way round.
type Registry struct {
	gameController *game.Controller
	clock          clock.Clock
	logger         *slog.Logger

	mu     sync.RWMutex
	rooms  map[model.RoomID]*Room
	games  map[model.GameID]*Room
	lastID model.RoomID
}

// NewRegistry creates an empty Registry
func NewRegistry(gameController *game.Controller, clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		gameController: gameController,
		clock:          clock,
		logger:         logger,
		rooms:          make(map[model.RoomID]*Room),
		games:          make(map[model.GameID]*Room),
	}
}

// CreateRoom allocates an empty room with the next ID
func (r *Registry) CreateRoom() *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	room := &Room{
		ID:        r.lastID,
		CreatedAt: r.clock.Now(),
	}
	r.rooms[room.ID] = room

	r.logger.Info("room created", slog.Int("room_id", int(room.ID)))
	return room
}

// JoinRoom seats an occupant. The second join creates the game, which is
// returned; the first returns a nil game. onStart, if set, runs with the
// new game before the room lock is released.
func (r *Registry) JoinRoom(roomID model.RoomID, occupant Occupant, onStart func(*Room, *model.Game)) (*model.Game, error) {
	room, err := r.lookupRoom(roomID)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return nil, model.ErrRoomNotFound
	}
	if occupant.Conn != nil && room.SeatOf(occupant.Conn.ID()) != model.NoPlayer {
		return nil, model.ErrAlreadyInRoom
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	room.occupants = append(room.occupants, occupant)
	r.logger.Info("room joined",
		slog.Int("room_id", int(room.ID)),
		slog.Int("player_id", int(occupant.PlayerID)),
		slog.Int("occupants", len(room.occupants)),
	)

	if !room.IsFull() {
		return nil, nil
	}

	g := r.startGame(room)
	if onStart != nil {
		onStart(room, g)
	}
	return g, nil
}

// CreateSoloRoom creates a full room for a human against a bot and
// returns its game
func (r *Registry) CreateSoloRoom(human, bot Occupant) (*Room, *model.Game) {
	r.mu.Lock()
	r.lastID++
	room := &Room{
		ID:        r.lastID,
		CreatedAt: r.clock.Now(),
		occupants: []Occupant{human, bot},
	}
	r.rooms[room.ID] = room
	r.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()
	g := r.startGame(room)

	r.logger.Info("solo room created",
		slog.Int("room_id", int(room.ID)),
		slog.Int("player_id", int(human.PlayerID)),
	)
	return room, g
}

// startGame creates the game for a full room; room.mu must be held
func (r *Registry) startGame(room *Room) *model.Game {
	seat := func(o Occupant) model.Seat {
		return model.Seat{PlayerID: o.PlayerID, Name: o.Name, IsBot: o.IsBot}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.gameController.CreateGame(room.ID, seat(room.occupants[0]), seat(room.occupants[1]))
	for attempt := 0; r.isGameIDTaken(g.ID); attempt++ {
		if attempt == maxGameIDAttempts {
			// Tokens are fixed length, so the room suffix makes the ID unique
			g.ID = model.GameID(fmt.Sprintf("%s%d", g.ID, room.ID))
			break
		}
		g.ID = r.gameController.NewGameID()
	}
	room.game = g
	r.games[g.ID] = room
	return g
}

// WithRoom runs fn while holding the room's lock
func (r *Registry) WithRoom(roomID model.RoomID, fn func(*Room) error) error {
	room, err := r.lookupRoom(roomID)
	if err != nil {
		return err
	}
	return r.withLocked(room, model.ErrRoomNotFound, fn)
}

// WithGame runs fn while holding the lock of the room owning the game
func (r *Registry) WithGame(gameID model.GameID, fn func(*Room, *model.Game) error) error {
	r.mu.RLock()
	room, ok := r.games[gameID]
	r.mu.RUnlock()
	if !ok {
		return model.ErrGameNotFound
	}
	return r.withLocked(room, model.ErrGameNotFound, func(room *Room) error {
		return fn(room, room.game)
	})
}

func (r *Registry) withLocked(room *Room, missing error, fn func(*Room) error) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return missing
	}

	err := fn(room)
	if room.closed {
		r.unindex(room)
	}
	return err
}

// Remove closes and drops a room and its game
func (r *Registry) Remove(roomID model.RoomID) {
	_ = r.WithRoom(roomID, func(room *Room) error {
		room.Close()
		return nil
	})
}

// unindex drops a closed room; room.mu must be held
func (r *Registry) unindex(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, room.ID)
	if room.game != nil {
		delete(r.games, room.game.ID)
	}
	r.logger.Info("room removed", slog.Int("room_id", int(room.ID)))
}

// AvailableRooms returns rooms with a free seat, by ID
func (r *Registry) AvailableRooms() []model.RoomSummary {
	result := []model.RoomSummary{}
	for _, room := range r.snapshot() {
		room.mu.Lock()
		if !room.closed && !room.IsFull() {
			result = append(result, room.summary())
		}
		room.mu.Unlock()
	}
	return result
}

// Summary returns a live room's occupants
func (r *Registry) Summary(roomID model.RoomID) (model.RoomSummary, error) {
	var summary model.RoomSummary
	err := r.WithRoom(roomID, func(room *Room) error {
		summary = room.summary()
		return nil
	})
	return summary, err
}

// RoomsFor returns the IDs of rooms a connection occupies, by ID
func (r *Registry) RoomsFor(connID string) []model.RoomID {
	var result []model.RoomID
	for _, room := range r.snapshot() {
		room.mu.Lock()
		if !room.closed && room.SeatOf(connID) != model.NoPlayer {
			result = append(result, room.ID)
		}
		room.mu.Unlock()
	}
	return result
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// GameCount returns the number of live games
func (r *Registry) GameCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// isGameIDTaken must be called with r.mu held
func (r *Registry) isGameIDTaken(id model.GameID) bool {
	_, taken := r.games[id]
	return taken
}

func (r *Registry) lookupRoom(roomID model.RoomID) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// snapshot copies the room list so room locks are taken without the
// registry lock held
func (r *Registry) snapshot() []*Room {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}
