package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Service tracks cumulative wins per registered player
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new leaderboard Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// RecordWin adds exactly one win to the player
func (s *Service) RecordWin(ctx context.Context, playerID model.PlayerID) error {
	wins, err := s.storage.IncrementWins(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.ErrUnknownPlayer
		}
		return err
	}

	s.logger.Info("win recorded",
		slog.Int("player_id", int(playerID)),
		slog.Int("wins", wins),
	)
	return nil
}

// Snapshot returns every registered player ranked by wins, most first.
// The sort is stable over registration order, so ties keep the player
// who registered first ahead.
func (s *Service) Snapshot(ctx context.Context) ([]model.Standing, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	standings := make([]model.Standing, len(players))
	for i, p := range players {
		standings[i] = model.Standing{Name: p.Name, Wins: p.Wins}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Wins > standings[j].Wins
	})
	return standings, nil
}
