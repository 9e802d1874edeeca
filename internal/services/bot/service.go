package bot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/model"
)

// TurnFunc plays one bot tick for a game. It returns false once the
// game no longer needs the bot, which stops the schedule.
type TurnFunc func() bool

// Config holds configuration for the bot service
type Config struct {
	// TurnInterval is the delay between bot ticks
	TurnInterval time.Duration
	// Strategy is the name of the strategy used for solo games
	Strategy string
}

// DefaultConfig returns default bot configuration
func DefaultConfig() Config {
	return Config{
		TurnInterval: time.Second,
		Strategy:     model.BotStrategyHunt,
	}
}

type task struct {
	ticker clock.Ticker
	done   chan struct{}
}

// Service owns the solo-play bot: its strategy and the per-game
// recurring turn timers
type Service struct {
	strategy Strategy
	clock    clock.Clock
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	tasks  map[model.GameID]*task
	wg     sync.WaitGroup
	closed bool
}

// NewService creates a new bot Service
func NewService(strategy Strategy, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TurnInterval <= 0 {
		cfg.TurnInterval = DefaultConfig().TurnInterval
	}
	return &Service{
		strategy: strategy,
		clock:    clk,
		interval: cfg.TurnInterval,
		logger:   logger.With(slog.String("component", "bot-service")),
		tasks:    make(map[model.GameID]*task),
	}
}

// Strategy returns the strategy the bot plays with
func (s *Service) Strategy() Strategy {
	return s.strategy
}

// Schedule starts calling turn every interval until it returns false or
// the game is cancelled. Scheduling an already scheduled game replaces it.
func (s *Service) Schedule(gameID model.GameID, turn TurnFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if existing, ok := s.tasks[gameID]; ok {
		s.stopLocked(gameID, existing)
	}

	t := &task{
		ticker: s.clock.NewTicker(s.interval),
		done:   make(chan struct{}),
	}
	s.tasks[gameID] = t

	s.wg.Add(1)
	go s.run(gameID, t, turn)

	s.logger.Debug("bot scheduled", slog.String("game_id", string(gameID)))
}

// Cancel stops the game's timer; unknown games are ignored
func (s *Service) Cancel(gameID model.GameID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[gameID]; ok {
		s.stopLocked(gameID, t)
		s.logger.Debug("bot cancelled", slog.String("game_id", string(gameID)))
	}
}

// Stop cancels every timer and waits for running ticks to return
func (s *Service) Stop() {
	s.mu.Lock()
	s.closed = true
	for gameID, t := range s.tasks {
		s.stopLocked(gameID, t)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// ActiveCount returns the number of scheduled games
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// IsScheduled returns true if the game has a running timer
func (s *Service) IsScheduled(gameID model.GameID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[gameID]
	return ok
}

func (s *Service) run(gameID model.GameID, t *task, turn TurnFunc) {
	defer s.wg.Done()
	defer t.ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C():
			// A tick racing with Cancel must not play
			select {
			case <-t.done:
				return
			default:
			}
			if !turn() {
				s.finish(gameID, t)
				return
			}
		}
	}
}

// finish removes the task if it is still the one registered for the game
func (s *Service) finish(gameID model.GameID, t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.tasks[gameID]; ok && current == t {
		s.stopLocked(gameID, t)
	}
}

// stopLocked must be called with s.mu held
func (s *Service) stopLocked(gameID model.GameID, t *task) {
	close(t.done)
	delete(s.tasks, gameID)
}
