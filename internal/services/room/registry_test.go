package room

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/dependencies/mocks"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.registry = NewRegistry(game.NewController(s.clock, s.random, logger), s.clock, logger)
}

func occupant(connID string, playerID model.PlayerID, name string) Occupant {
	return Occupant{Conn: testutil.NewFakeConn(connID), PlayerID: playerID, Name: name}
}

// CreateRoom tests

func (s *RegistrySuite) TestCreateRoomAssignsMonotonicIDs() {
	first := s.registry.CreateRoom()
	second := s.registry.CreateRoom()

	s.Equal(model.RoomID(1), first.ID)
	s.Equal(model.RoomID(2), second.ID)
	s.Equal(2, s.registry.Count())
}

func (s *RegistrySuite) TestEmptyRoomIsAvailable() {
	room := s.registry.CreateRoom()

	available := s.registry.AvailableRooms()
	s.Require().Len(available, 1)
	s.Equal(room.ID, available[0].RoomID)
	s.Empty(available[0].Users)
}

func (s *RegistrySuite) TestSummary() {
	room := s.registry.CreateRoom()
	_, _ = s.registry.JoinRoom(room.ID, occupant("a", 7, "alice"), nil)

	summary, err := s.registry.Summary(room.ID)
	s.Require().NoError(err)
	s.Equal([]model.RoomUser{{Name: "alice", Index: 7}}, summary.Users)

	_, err = s.registry.Summary(99)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// JoinRoom tests

func (s *RegistrySuite) TestFirstJoinWaits() {
	room := s.registry.CreateRoom()

	g, err := s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), nil)
	s.Require().NoError(err)
	s.Nil(g)

	available := s.registry.AvailableRooms()
	s.Require().Len(available, 1)
	s.Equal(room.ID, available[0].RoomID)
	s.Equal([]model.RoomUser{{Name: "alice", Index: 1}}, available[0].Users)
}

func (s *RegistrySuite) TestSecondJoinCreatesGame() {
	room := s.registry.CreateRoom()
	s.random.QueueToken("game000000000001")

	_, err := s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), nil)
	s.Require().NoError(err)
	g, err := s.registry.JoinRoom(room.ID, occupant("b", 2, "bob"), nil)
	s.Require().NoError(err)

	s.Require().NotNil(g)
	s.Equal(model.GameID("game000000000001"), g.ID)
	s.Equal("alice", g.Seat(model.FirstPlayer).Name)
	s.Equal("bob", g.Seat(model.SecondPlayer).Name)
	s.Empty(s.registry.AvailableRooms())
	s.Equal(1, s.registry.GameCount())
}

func (s *RegistrySuite) TestStartCallbackRunsUnderRoomLock() {
	room := s.registry.CreateRoom()
	calls := 0
	onStart := func(r *Room, g *model.Game) {
		calls++
		s.False(r.mu.TryLock(), "room lock must be held")
		s.Same(g, r.Game())
		s.Len(r.Occupants(), 2)
	}

	g, err := s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), onStart)
	s.Require().NoError(err)
	s.Nil(g)
	s.Equal(0, calls)

	g, err = s.registry.JoinRoom(room.ID, occupant("b", 2, "bob"), onStart)
	s.Require().NoError(err)
	s.NotNil(g)
	s.Equal(1, calls)
}

func (s *RegistrySuite) TestThirdJoinRejectedWithoutMutation() {
	room := s.registry.CreateRoom()
	_, _ = s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), nil)
	_, _ = s.registry.JoinRoom(room.ID, occupant("b", 2, "bob"), nil)

	_, err := s.registry.JoinRoom(room.ID, occupant("c", 3, "carol"), nil)
	s.ErrorIs(err, model.ErrRoomFull)

	_ = s.registry.WithRoom(room.ID, func(r *Room) error {
		s.Len(r.Occupants(), 2)
		s.Equal(model.NoPlayer, r.SeatOf("c"))
		return nil
	})
}

func (s *RegistrySuite) TestJoinUnknownRoom() {
	_, err := s.registry.JoinRoom(42, occupant("a", 1, "alice"), nil)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestJoinSameConnectionTwice() {
	room := s.registry.CreateRoom()
	a := occupant("a", 1, "alice")
	_, err := s.registry.JoinRoom(room.ID, a, nil)
	s.Require().NoError(err)

	_, err = s.registry.JoinRoom(room.ID, a, nil)
	s.ErrorIs(err, model.ErrAlreadyInRoom)
}

func (s *RegistrySuite) TestSeatsFollowJoinOrder() {
	room := s.registry.CreateRoom()
	_, _ = s.registry.JoinRoom(room.ID, occupant("b", 2, "bob"), nil)
	_, _ = s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), nil)

	err := s.registry.WithRoom(room.ID, func(r *Room) error {
		s.Equal(model.FirstPlayer, r.SeatOf("b"))
		s.Equal(model.SecondPlayer, r.SeatOf("a"))
		holder, ok := r.Occupant(model.SecondPlayer)
		s.True(ok)
		s.Equal("alice", holder.Name)
		return nil
	})
	s.Require().NoError(err)
}

func (s *RegistrySuite) TestConcurrentJoinsNeverOverfill() {
	room := s.registry.CreateRoom()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full int
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.registry.JoinRoom(room.ID, occupant(string(rune('a'+i)), model.PlayerID(i+1), "p"), nil)
			if errors.Is(err, model.ErrRoomFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(8, full)
	s.Equal(1, s.registry.GameCount())
}

// Solo tests

func (s *RegistrySuite) TestCreateSoloRoom() {
	bot := Occupant{Name: model.BotDisplayName, IsBot: true}

	room, g := s.registry.CreateSoloRoom(occupant("a", 1, "alice"), bot)

	s.True(g.Solo)
	s.True(g.Seat(model.SecondPlayer).IsBot)
	s.Empty(s.registry.AvailableRooms())
	s.Equal(model.FirstPlayer, room.SeatOf("a"))
}

// WithGame / Remove tests

func (s *RegistrySuite) TestWithGame() {
	room := s.registry.CreateRoom()
	_, _ = s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), nil)
	g, _ := s.registry.JoinRoom(room.ID, occupant("b", 2, "bob"), nil)

	called := false
	err := s.registry.WithGame(g.ID, func(r *Room, locked *model.Game) error {
		called = true
		s.Equal(room.ID, r.ID)
		s.Same(g, locked)
		return nil
	})
	s.Require().NoError(err)
	s.True(called)
}

func (s *RegistrySuite) TestWithGameUnknown() {
	err := s.registry.WithGame("missing", func(*Room, *model.Game) error { return nil })
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *RegistrySuite) TestCloseInsideCallbackRemovesRoom() {
	room := s.registry.CreateRoom()
	_, _ = s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), nil)
	g, _ := s.registry.JoinRoom(room.ID, occupant("b", 2, "bob"), nil)

	err := s.registry.WithGame(g.ID, func(r *Room, _ *model.Game) error {
		r.Close()
		return nil
	})
	s.Require().NoError(err)

	s.Equal(0, s.registry.Count())
	s.Equal(0, s.registry.GameCount())
	s.ErrorIs(s.registry.WithGame(g.ID, func(*Room, *model.Game) error { return nil }), model.ErrGameNotFound)
	_, err = s.registry.JoinRoom(room.ID, occupant("c", 3, "carol"), nil)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestRemove() {
	room := s.registry.CreateRoom()
	_, _ = s.registry.JoinRoom(room.ID, occupant("a", 1, "alice"), nil)

	s.registry.Remove(room.ID)

	s.Empty(s.registry.AvailableRooms())
	s.Empty(s.registry.RoomsFor("a"))
}

func (s *RegistrySuite) TestRoomsFor() {
	first := s.registry.CreateRoom()
	second := s.registry.CreateRoom()
	s.registry.CreateRoom()
	_, _ = s.registry.JoinRoom(first.ID, occupant("a", 1, "alice"), nil)
	_, _ = s.registry.JoinRoom(second.ID, occupant("a", 1, "alice"), nil)

	s.Equal([]model.RoomID{first.ID, second.ID}, s.registry.RoomsFor("a"))
	s.Empty(s.registry.RoomsFor("b"))
}

func (s *RegistrySuite) TestBroadcastSkipsBots() {
	human := occupant("a", 1, "alice")
	room, _ := s.registry.CreateSoloRoom(human, Occupant{Name: model.BotDisplayName, IsBot: true})

	_ = s.registry.WithRoom(room.ID, func(r *Room) error {
		r.Broadcast([]byte(`{"type":"turn"}`))
		return nil
	})

	s.Equal([]string{"turn"}, human.Conn.(*testutil.FakeConn).Types())
}
