package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Service handles name/password registration and tracks which
// connection each player is currently bound to
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	mu       sync.RWMutex
	bindings map[model.PlayerID]string // player -> connection ID

	bcryptCost int
}

// Config holds configuration for the auth service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		bindings:   make(map[model.PlayerID]string),
		bcryptCost: cfg.BcryptCost,
	}
}

// registerAttempts bounds how often a lost name race is retried
const registerAttempts = 2

// Authenticate logs in an existing player or registers a new one
// The first registration of a name creates the identity; later calls
// must present the same password
func (s *Service) Authenticate(ctx context.Context, name, password string) (*model.Player, bool, error) {
	if name == "" || password == "" {
		return nil, false, model.ErrInvalidCredentials
	}

	var err error
	for attempt := 0; attempt < registerAttempts; attempt++ {
		var (
			player  *model.Player
			created bool
		)
		player, created, err = s.loginOrRegister(ctx, name, password)
		// ErrNameTaken means a concurrent registration won; log in instead
		if !errors.Is(err, model.ErrNameTaken) {
			return player, created, err
		}
	}
	return nil, false, err
}

func (s *Service) loginOrRegister(ctx context.Context, name, password string) (*model.Player, bool, error) {
	existing, err := s.storage.GetPlayerByName(ctx, name)
	if err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)); err != nil {
			return nil, false, model.ErrInvalidPassword
		}
		return existing, false, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, false, err
	}

	player := &model.Player{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, false, err
	}
	return player, true, nil
}

// Bind associates a player with a live connection
// Rebinding the same connection is a no-op
func (s *Service) Bind(playerID model.PlayerID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.bindings[playerID]; ok && current != connID {
		return model.ErrAlreadyConnected
	}
	s.bindings[playerID] = connID
	return nil
}

// Release drops the binding if it still belongs to the connection
func (s *Service) Release(playerID model.PlayerID, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bindings[playerID] == connID {
		delete(s.bindings, playerID)
	}
}

// IsOnline returns true if the player is bound to a connection
func (s *Service) IsOnline(playerID model.PlayerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bindings[playerID]
	return ok
}

// OnlineCount returns the number of bound players
func (s *Service) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}
