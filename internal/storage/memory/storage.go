package memory

import (
	"context"
	"sync"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players   map[model.PlayerID]*model.Player
	nameIndex map[string]model.PlayerID
	lastID    model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerID]*model.Player),
		nameIndex: make(map[string]model.PlayerID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nameIndex[player.Name]; ok {
		return model.ErrNameTaken
	}

	s.lastID++
	player.ID = s.lastID

	stored := *player
	s.players[stored.ID] = &stored
	s.nameIndex[stored.Name] = stored.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	result := *player
	return &result, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	result := *s.players[id]
	return &result, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// IDs are dense, so walking them gives registration order
	result := make([]*model.Player, 0, len(s.players))
	for id := model.PlayerID(1); id <= s.lastID; id++ {
		if p, ok := s.players[id]; ok {
			copied := *p
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *Storage) IncrementWins(ctx context.Context, id model.PlayerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	player.Wins++
	return player.Wins, nil
}
