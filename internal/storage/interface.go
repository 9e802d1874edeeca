package storage

import (
	"context"

	"github.com/mcoot/seabattle/internal/model"
)

// Storage defines the interface for player identity persistence
// Rooms and games hold live connections and never leave process memory
type Storage interface {
	// CreatePlayer registers a new identity, assigning the next player ID
	// Returns model.ErrNameTaken if the name is already registered
	CreatePlayer(ctx context.Context, player *model.Player) error

	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)

	// ListPlayers returns every registered player in registration order
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// IncrementWins adds one win and returns the new total
	// Returns model.ErrPlayerNotFound if the player is not registered
	IncrementWins(ctx context.Context, id model.PlayerID) (int, error)
}
