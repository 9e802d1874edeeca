package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/room"
)

func (r *Router) handleRegister(ctx context.Context, conn room.Conn, cmd protocol.RegisterCommand) {
	if current := r.playerFor(conn.ID()); current != nil {
		if current.Name == cmd.Name {
			conn.Send(protocol.Reg(cmd.ID, current))
		} else {
			conn.Send(protocol.RegError(cmd.ID, cmd.Name, model.ErrAlreadyConnected))
		}
		return
	}

	player, created, err := r.auth.Authenticate(ctx, cmd.Name, cmd.Password)
	if err != nil {
		if !errors.Is(err, model.ErrInvalidPassword) && !errors.Is(err, model.ErrInvalidCredentials) {
			r.logger.Error("registration failed",
				slog.String("conn_id", conn.ID()),
				slog.String("error", err.Error()),
			)
		}
		conn.Send(protocol.RegError(cmd.ID, cmd.Name, err))
		return
	}

	if err := r.auth.Bind(player.ID, conn.ID()); err != nil {
		conn.Send(protocol.RegError(cmd.ID, cmd.Name, err))
		return
	}

	r.mu.Lock()
	sess, ok := r.sessions[conn.ID()]
	if ok {
		sess.player = player
	}
	r.mu.Unlock()
	if !ok {
		// Connection closed while registering
		r.auth.Release(player.ID, conn.ID())
		return
	}

	r.logger.Info("player registered",
		slog.String("conn_id", conn.ID()),
		slog.Int("player_id", int(player.ID)),
		slog.Bool("created", created),
	)

	conn.Send(protocol.Reg(cmd.ID, player))
	conn.Send(protocol.UpdateRoom(r.registry.AvailableRooms()))
	r.sendWinners(ctx, conn)
}

func (r *Router) handleCreateRoom(ctx context.Context, conn room.Conn, cmd protocol.CreateRoomCommand) error {
	r.registry.CreateRoom()
	r.broadcastAll(protocol.UpdateRoom(r.registry.AvailableRooms()))
	return nil
}

func (r *Router) handleJoinRoom(ctx context.Context, conn room.Conn, player *model.Player, cmd protocol.JoinRoomCommand) error {
	occupant := room.Occupant{
		Conn:     conn,
		PlayerID: player.ID,
		Name:     player.Name,
	}
	_, err := r.registry.JoinRoom(cmd.RoomID, occupant, func(rm *room.Room, g *model.Game) {
		for i, o := range rm.Occupants() {
			if o.Conn != nil {
				o.Conn.Send(protocol.CreateGame(cmd.ID, g.ID, model.PlayerIndex(i+1)))
			}
		}
	})
	if err != nil {
		return err
	}

	r.broadcastAll(protocol.UpdateRoom(r.registry.AvailableRooms()))
	return nil
}

func (r *Router) handleAddShips(ctx context.Context, conn room.Conn, cmd protocol.AddShipsCommand) error {
	return r.registry.WithGame(cmd.GameID, func(rm *room.Room, g *model.Game) error {
		seat, err := seatFor(rm, conn, cmd.PlayerIndex)
		if err != nil {
			return err
		}

		started, err := r.games.SubmitFleet(g, seat, cmd.Ships)
		if err != nil {
			return err
		}
		if !started {
			return nil
		}

		// Each side only ever sees its own fleet
		for i, o := range rm.Occupants() {
			if o.Conn != nil {
				index := model.PlayerIndex(i + 1)
				o.Conn.Send(protocol.StartGame(cmd.ID, g.Fleets[index], g.Turn))
			}
		}
		rm.Broadcast(protocol.Turn(protocol.BroadcastID, g.Turn))

		if g.Solo {
			r.bots.Schedule(g.ID, r.botTurn(g.ID))
		}
		return nil
	})
}

func (r *Router) handleAttack(ctx context.Context, conn room.Conn, cmd protocol.AttackCommand) error {
	return r.registry.WithGame(cmd.GameID, func(rm *room.Room, g *model.Game) error {
		seat, err := seatFor(rm, conn, cmd.PlayerIndex)
		if err != nil {
			return err
		}
		outcome, err := r.games.ResolveAttack(g, seat, cmd.Position)
		if err != nil {
			return err
		}
		r.publishAttack(ctx, rm, g, outcome)
		return nil
	})
}

func (r *Router) handleRandomAttack(ctx context.Context, conn room.Conn, cmd protocol.RandomAttackCommand) error {
	return r.registry.WithGame(cmd.GameID, func(rm *room.Room, g *model.Game) error {
		seat, err := seatFor(rm, conn, cmd.PlayerIndex)
		if err != nil {
			return err
		}
		pos, err := r.games.RandomTarget(g, seat)
		if err != nil {
			return err
		}
		outcome, err := r.games.ResolveAttack(g, seat, pos)
		if err != nil {
			return err
		}
		r.publishAttack(ctx, rm, g, outcome)
		return nil
	})
}

func (r *Router) handleSinglePlay(ctx context.Context, conn room.Conn, player *model.Player, cmd protocol.SinglePlayCommand) error {
	human := room.Occupant{Conn: conn, PlayerID: player.ID, Name: player.Name}
	opponent := room.Occupant{Name: model.BotDisplayName, IsBot: true}
	_, created := r.registry.CreateSoloRoom(human, opponent)

	return r.registry.WithGame(created.ID, func(rm *room.Room, g *model.Game) error {
		if _, err := r.games.SubmitFleet(g, model.SecondPlayer, r.bots.Strategy().PlaceFleet()); err != nil {
			rm.Close()
			return err
		}
		conn.Send(protocol.CreateGame(cmd.ID, g.ID, model.FirstPlayer))
		return nil
	})
}

// publishAttack sends the outcome, then either the finish sequence or
// the next turn. The room lock must be held.
func (r *Router) publishAttack(ctx context.Context, rm *room.Room, g *model.Game, outcome *model.AttackOutcome) {
	rm.Broadcast(protocol.Attack(protocol.BroadcastID, outcome))
	if outcome.Finished {
		r.finishGame(ctx, rm, g, model.FinishOutcome{
			Winner: outcome.Winner,
			Reason: model.FinishFleetDestroyed,
		})
		return
	}
	rm.Broadcast(protocol.Turn(protocol.BroadcastID, outcome.NextTurn))
}

// finishGame announces the winner, records the win, pushes standings
// to everyone and tears the room down. The room lock must be held.
func (r *Router) finishGame(ctx context.Context, rm *room.Room, g *model.Game, outcome model.FinishOutcome) {
	rm.Broadcast(protocol.Finish(protocol.BroadcastID, outcome.Winner))
	r.logger.Info("game finished",
		slog.String("game_id", string(g.ID)),
		slog.Int("winner", int(outcome.Winner)),
		slog.String("reason", string(outcome.Reason)),
	)

	if seat := g.Seat(outcome.Winner); seat != nil && !seat.IsBot {
		if err := r.leaderboard.RecordWin(ctx, seat.PlayerID); err != nil {
			r.logger.Error("failed to record win",
				slog.String("game_id", string(g.ID)),
				slog.Int("player_id", int(seat.PlayerID)),
				slog.String("error", err.Error()),
			)
		}
	}

	standings, err := r.leaderboard.Snapshot(ctx)
	if err != nil {
		r.logger.Error("failed to load leaderboard", slog.String("error", err.Error()))
	} else {
		r.broadcastAll(protocol.UpdateWinners(standings))
	}

	rm.Close()
	r.bots.Cancel(g.ID)
}

func (r *Router) sendWinners(ctx context.Context, conn room.Conn) {
	standings, err := r.leaderboard.Snapshot(ctx)
	if err != nil {
		r.logger.Error("failed to load leaderboard", slog.String("error", err.Error()))
		return
	}
	conn.Send(protocol.UpdateWinners(standings))
}

// seatFor checks that the connection holds the claimed seat
func seatFor(rm *room.Room, conn room.Conn, claimed model.PlayerIndex) (model.PlayerIndex, error) {
	seat := rm.SeatOf(conn.ID())
	if seat == model.NoPlayer || seat != claimed {
		return model.NoPlayer, model.ErrNotParticipant
	}
	return seat, nil
}
