package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/bot"
	"github.com/mcoot/seabattle/internal/services/room"
)

// botSeat is the seat the bot takes in solo games
const botSeat = model.SecondPlayer

// botTurn returns the tick handler for a solo game: on the bot's turn
// it fires one shot, otherwise it waits for the human
func (r *Router) botTurn(gameID model.GameID) bot.TurnFunc {
	return func() bool {
		ctx := context.Background()
		keep := true

		err := r.registry.WithGame(gameID, func(rm *room.Room, g *model.Game) error {
			if g.IsFinished() {
				keep = false
				return nil
			}
			if g.Status != model.GameStatusInProgress || g.Turn != botSeat {
				return nil
			}

			target := r.bots.Strategy().ChooseTarget(g, botSeat)
			outcome, err := r.games.ResolveAttack(g, botSeat, target)
			if err != nil {
				return err
			}
			r.publishAttack(ctx, rm, g, outcome)
			keep = !outcome.Finished
			return nil
		})
		if errors.Is(err, model.ErrGameNotFound) {
			return false
		}
		if err != nil {
			r.logger.Error("bot turn failed",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
		return keep
	}
}
