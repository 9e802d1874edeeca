package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type FleetSuite struct {
	suite.Suite
}

func TestFleetSuite(t *testing.T) {
	suite.Run(t, new(FleetSuite))
}

func (s *FleetSuite) TestPositionIsValid() {
	s.True(Position{X: 0, Y: 0}.IsValid())
	s.True(Position{X: 9, Y: 9}.IsValid())
	s.False(Position{X: -1, Y: 0}.IsValid())
	s.False(Position{X: 0, Y: 10}.IsValid())
}

func (s *FleetSuite) TestShipTypeForLength() {
	s.Equal(ShipSmall, ShipTypeForLength(1))
	s.Equal(ShipMedium, ShipTypeForLength(2))
	s.Equal(ShipLarge, ShipTypeForLength(3))
	s.Equal(ShipHuge, ShipTypeForLength(4))
	s.Equal(ShipType(""), ShipTypeForLength(5))
}

func (s *FleetSuite) TestHorizontalShipCells() {
	ship := NewShip(Position{X: 2, Y: 3}, false, 3)

	s.Equal([]Position{{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 4, Y: 3}}, ship.Cells())
	s.True(ship.Occupies(Position{X: 4, Y: 3}))
	s.False(ship.Occupies(Position{X: 5, Y: 3}))
	s.False(ship.Occupies(Position{X: 2, Y: 4}))
}

func (s *FleetSuite) TestVerticalShipCells() {
	ship := NewShip(Position{X: 0, Y: 0}, true, 2)

	s.Equal([]Position{{X: 0, Y: 0}, {X: 0, Y: 1}}, ship.Cells())
	s.True(ship.Occupies(Position{X: 0, Y: 1}))
	s.False(ship.Occupies(Position{X: 1, Y: 0}))
}

func (s *FleetSuite) TestShipDestroyedOnceEveryCellHit() {
	ship := NewShip(Position{X: 0, Y: 0}, false, 2)
	s.False(ship.IsDestroyed())

	ship.Hits = append(ship.Hits, Position{X: 0, Y: 0})
	s.True(ship.IsHitAt(Position{X: 0, Y: 0}))
	s.False(ship.IsDestroyed())

	ship.Hits = append(ship.Hits, Position{X: 1, Y: 0})
	s.True(ship.IsDestroyed())
	s.Equal(2, ship.HitCount())
}

func (s *FleetSuite) TestFleetDefeatedAndRemaining() {
	a := NewShip(Position{X: 0, Y: 0}, false, 1)
	b := NewShip(Position{X: 0, Y: 2}, false, 1)
	fleet := NewFleet([]*Ship{a, b})

	s.Equal(2, fleet.RemainingShips())
	s.Same(b, fleet.ShipAt(Position{X: 0, Y: 2}))
	s.Nil(fleet.ShipAt(Position{X: 5, Y: 5}))

	a.Hits = []Position{{X: 0, Y: 0}}
	s.Equal(1, fleet.RemainingShips())
	s.False(fleet.IsDefeated())

	b.Hits = []Position{{X: 0, Y: 2}}
	s.True(fleet.IsDefeated())
}

func (s *FleetSuite) TestNewGameAssignsSeats() {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	game := NewGame("g1", 3,
		Seat{PlayerID: 1, Name: "alice"},
		Seat{Name: BotDisplayName, IsBot: true},
		now)

	s.Equal(GameStatusAwaitingFleets, game.Status)
	s.True(game.Solo)
	s.Equal(FirstPlayer, game.Seat(FirstPlayer).Index)
	s.Equal(SecondPlayer, game.Seat(SecondPlayer).Index)
	s.Nil(game.Seat(NoPlayer))
	s.Equal("alice", game.SeatForPlayer(1).Name)
	s.Nil(game.SeatForPlayer(2))
	s.False(game.AllFleetsPlaced())
}

func (s *FleetSuite) TestPlayerIndexOpponent() {
	s.Equal(SecondPlayer, FirstPlayer.Opponent())
	s.Equal(FirstPlayer, SecondPlayer.Opponent())
	s.False(NoPlayer.IsValid())
}
