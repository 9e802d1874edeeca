package game

import (
	"log/slog"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
)

// GameIDLength is the length of generated game tokens
const GameIDLength = 16

// Controller owns the game state machine: fleet submission, attack
// resolution and turn flow. Callers must hold the owning room's lock
// for every call that takes a *model.Game.
type Controller struct {
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewController creates a new game Controller
func NewController(clock clock.Clock, random random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		clock:  clock,
		random: random,
		logger: logger,
	}
}

// CreateGame initializes a game awaiting both fleets
func (c *Controller) CreateGame(roomID model.RoomID, first, second model.Seat) *model.Game {
	gameID := c.NewGameID()
	game := model.NewGame(gameID, roomID, first, second, c.clock.Now())

	c.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.Int("room_id", int(roomID)),
		slog.Bool("solo", game.Solo),
	)
	return game
}

// NewGameID generates a random game token
func (c *Controller) NewGameID() model.GameID {
	return model.GameID(c.random.Token(GameIDLength))
}

// SubmitFleet stores a seat's placement and starts the game once both
// seats have submitted. Returns true if this submission started the game.
func (c *Controller) SubmitFleet(game *model.Game, index model.PlayerIndex, ships []*model.Ship) (bool, error) {
	switch game.Status {
	case model.GameStatusFinished:
		return false, model.ErrGameFinished
	case model.GameStatusInProgress:
		return false, model.ErrGameInProgress
	}
	if !index.IsValid() {
		return false, model.ErrNotParticipant
	}
	if game.HasFleet(index) {
		return false, model.ErrFleetAlreadySubmitted
	}
	if err := ValidateFleet(ships); err != nil {
		return false, err
	}

	placed := make([]*model.Ship, len(ships))
	for i, ship := range ships {
		placed[i] = model.NewShip(ship.Position, ship.Direction, ship.Length)
	}
	game.Fleets[index] = model.NewFleet(placed)
	game.UpdatedAt = c.clock.Now()

	if !game.AllFleetsPlaced() {
		return false, nil
	}

	game.Status = model.GameStatusInProgress
	game.Turn = model.FirstPlayer

	c.logger.Info("game started",
		slog.String("game_id", string(game.ID)),
	)
	return true, nil
}

// ResolveAttack fires the attacker's shot at the defender's fleet.
// Hits keep the turn with the attacker; a miss hands it to the defender.
// Firing at a cell that was already hit counts as a miss.
// Errors leave the game untouched.
func (c *Controller) ResolveAttack(game *model.Game, attacker model.PlayerIndex, pos model.Position) (*model.AttackOutcome, error) {
	switch game.Status {
	case model.GameStatusAwaitingFleets:
		return nil, model.ErrGameNotStarted
	case model.GameStatusFinished:
		return nil, model.ErrGameFinished
	}
	if !pos.IsValid() {
		return nil, model.ErrInvalidPosition
	}
	if !attacker.IsValid() {
		return nil, model.ErrNotParticipant
	}
	if attacker != game.Turn {
		return nil, model.ErrNotYourTurn
	}

	defender := attacker.Opponent()
	fleet := game.Fleets[defender]

	outcome := &model.AttackOutcome{
		Position: pos,
		Attacker: attacker,
	}

	game.Shots[attacker][pos] = true
	game.UpdatedAt = c.clock.Now()

	ship := fleet.ShipAt(pos)
	switch {
	case ship == nil:
		outcome.Status = model.AttackMiss
		game.Turn = defender
	case ship.IsHitAt(pos):
		// Already resolved cell: nothing is counted twice and the turn passes
		outcome.Repeated = true
		outcome.Status = model.AttackMiss
		game.Turn = defender
	default:
		ship.Hits = append(ship.Hits, pos)
		outcome.Ship = ship
		outcome.Status = model.AttackShot
		if ship.IsDestroyed() {
			outcome.Status = model.AttackKilled
			if fleet.IsDefeated() {
				game.Status = model.GameStatusFinished
				game.Winner = attacker
				outcome.Finished = true
				outcome.Winner = attacker
			}
		}
	}
	outcome.NextTurn = game.Turn

	c.logger.Debug("attack resolved",
		slog.String("game_id", string(game.ID)),
		slog.Int("attacker", int(attacker)),
		slog.Int("x", pos.X),
		slog.Int("y", pos.Y),
		slog.String("status", string(outcome.Status)),
	)
	if outcome.Finished {
		c.logger.Info("game finished",
			slog.String("game_id", string(game.ID)),
			slog.Int("winner", int(attacker)),
		)
	}

	return outcome, nil
}

// RandomTarget picks a uniformly random cell the attacker has not fired at
func (c *Controller) RandomTarget(game *model.Game, attacker model.PlayerIndex) (model.Position, error) {
	open := OpenCells(game, attacker)
	if len(open) == 0 {
		return model.Position{}, model.ErrNoTargetsLeft
	}
	return open[c.random.Intn(len(open))], nil
}

// Forfeit ends an unfinished game in favour of the leaver's opponent
func (c *Controller) Forfeit(game *model.Game, leaver model.PlayerIndex) (*model.FinishOutcome, error) {
	if game.IsFinished() {
		return nil, model.ErrGameFinished
	}
	if !leaver.IsValid() {
		return nil, model.ErrNotParticipant
	}

	game.Status = model.GameStatusFinished
	game.Winner = leaver.Opponent()
	game.UpdatedAt = c.clock.Now()

	c.logger.Info("game forfeited",
		slog.String("game_id", string(game.ID)),
		slog.Int("leaver", int(leaver)),
		slog.Int("winner", int(game.Winner)),
	)

	return &model.FinishOutcome{
		Winner: game.Winner,
		Reason: model.FinishForfeit,
	}, nil
}

// OpenCells returns every cell the attacker has not fired at, row by row
func OpenCells(game *model.Game, attacker model.PlayerIndex) []model.Position {
	cells := make([]model.Position, 0, model.BoardSize*model.BoardSize)
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			pos := model.Position{X: x, Y: y}
			if !game.HasShot(attacker, pos) {
				cells = append(cells, pos)
			}
		}
	}
	return cells
}
