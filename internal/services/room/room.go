package room

import (
	"sync"
	"time"

	"github.com/mcoot/seabattle/internal/model"
)

// Conn is an outbound handle to a connected client
type Conn interface {
	ID() string
	// Send queues a message without blocking, returning false if it was dropped
	Send(msg []byte) bool
}

// Occupant is a seat holder in a room
type Occupant struct {
	Conn     Conn // nil for bots
	PlayerID model.PlayerID
	Name     string
	IsBot    bool
}

// ConnID returns the occupant's connection ID, or "" for bots
func (o Occupant) ConnID() string {
	if o.Conn == nil {
		return ""
	}
	return o.Conn.ID()
}

// Room pairs up to two occupants and, once full, their game.
// All fields are guarded by mu; use Registry.WithRoom or
// Registry.WithGame to access them.
type Room struct {
	ID        model.RoomID
	CreatedAt time.Time

	mu        sync.Mutex
	occupants []Occupant
	game      *model.Game
	closed    bool
}

// Occupants returns the seat holders in join order
func (r *Room) Occupants() []Occupant {
	return append([]Occupant(nil), r.occupants...)
}

// Game returns the room's game, or nil while waiting for a second occupant
func (r *Room) Game() *model.Game {
	return r.game
}

// IsFull returns true once both seats are taken
func (r *Room) IsFull() bool {
	return len(r.occupants) >= model.MaxRoomOccupants
}

// SeatOf returns the participant index held by a connection
func (r *Room) SeatOf(connID string) model.PlayerIndex {
	for i, o := range r.occupants {
		if o.Conn != nil && o.Conn.ID() == connID {
			return model.PlayerIndex(i + 1)
		}
	}
	return model.NoPlayer
}

// Occupant returns the holder of a participant index
func (r *Room) Occupant(index model.PlayerIndex) (Occupant, bool) {
	if !index.IsValid() || int(index) > len(r.occupants) {
		return Occupant{}, false
	}
	return r.occupants[index-1], true
}

// Close marks the room as gone. The registry drops it once the
// current WithRoom or WithGame call returns.
func (r *Room) Close() {
	r.closed = true
}

// Broadcast sends a message to every connected occupant
func (r *Room) Broadcast(msg []byte) {
	for _, o := range r.occupants {
		if o.Conn != nil {
			o.Conn.Send(msg)
		}
	}
}

func (r *Room) summary() model.RoomSummary {
	users := make([]model.RoomUser, len(r.occupants))
	for i, o := range r.occupants {
		users[i] = model.RoomUser{Name: o.Name, Index: o.PlayerID}
	}
	return model.RoomSummary{RoomID: r.ID, Users: users}
}
