package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) createPlayer(name string) *model.Player {
	player := &model.Player{
		Name:         name,
		PasswordHash: "hash-" + name,
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))
	return player
}

func (s *StorageSuite) TestCreateAndGetPlayer() {
	alice := s.createPlayer("alice")
	s.Equal(model.PlayerID(1), alice.ID)

	retrieved, err := s.storage.GetPlayer(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Name)
	s.Equal("hash-alice", retrieved.PasswordHash)
	s.True(alice.CreatedAt.Equal(retrieved.CreatedAt))
	s.Equal(0, retrieved.Wins)
}

func (s *StorageSuite) TestCreateWritesExpectedKeys() {
	s.createPlayer("alice")

	s.True(s.mini.Exists("seabattle:player:1"))
	idx, err := s.mini.Get("seabattle:idx:name:alice")
	s.Require().NoError(err)
	s.Equal("1", idx)
	s.Equal("0", s.mini.HGet("seabattle:wins", "1"))
}

func (s *StorageSuite) TestCreateDuplicateName() {
	s.createPlayer("alice")

	err := s.storage.CreatePlayer(s.ctx, &model.Player{Name: "alice"})
	s.ErrorIs(err, model.ErrNameTaken)

	bob := s.createPlayer("bob")
	s.Equal(model.PlayerID(2), bob.ID)
}

func (s *StorageSuite) TestCreateReclaimsDanglingNameIndex() {
	// Index left behind without its player record
	s.Require().NoError(s.mini.Set("seabattle:idx:name:alice", "7"))

	_, err := s.storage.GetPlayerByName(s.ctx, "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	alice := s.createPlayer("alice")
	s.Equal(model.PlayerID(1), alice.ID)

	idx, err := s.mini.Get("seabattle:idx:name:alice")
	s.Require().NoError(err)
	s.Equal("1", idx)

	retrieved, err := s.storage.GetPlayerByName(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(alice.ID, retrieved.ID)
}

func (s *StorageSuite) TestCreateKeepsIndexWithLiveRecord() {
	s.createPlayer("alice")

	// Skip the early lookup so the claim itself has to reject the name
	claimed, err := createPlayerScript.Run(s.ctx, s.storage.client,
		[]string{nameIndexKey("alice"), playerKey(9), winsKey()},
		9, `{"id":9,"name":"alice"}`, 0, playerKeyPrefix(),
	).Int()
	s.Require().NoError(err)
	s.Equal(0, claimed)

	idx, err := s.mini.Get("seabattle:idx:name:alice")
	s.Require().NoError(err)
	s.Equal("1", idx)
	s.False(s.mini.Exists("seabattle:player:9"))
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, 5)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayerByName() {
	s.createPlayer("alice")
	bob := s.createPlayer("bob")

	retrieved, err := s.storage.GetPlayerByName(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(bob.ID, retrieved.ID)

	_, err = s.storage.GetPlayerByName(s.ctx, "carol")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListPlayersInRegistrationOrder() {
	s.createPlayer("carol")
	s.createPlayer("alice")
	s.createPlayer("bob")

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal("carol", players[0].Name)
	s.Equal("alice", players[1].Name)
	s.Equal("bob", players[2].Name)
}

func (s *StorageSuite) TestListPlayersSkipsGaps() {
	s.createPlayer("alice")
	// Simulate a sequence number lost to a concurrent registration
	s.mini.Incr("seabattle:seq:player", 1)
	s.createPlayer("bob")

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.PlayerID(3), players[1].ID)
}

func (s *StorageSuite) TestListPlayersEmpty() {
	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *StorageSuite) TestIncrementWins() {
	alice := s.createPlayer("alice")
	s.createPlayer("bob")

	wins, err := s.storage.IncrementWins(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(1, wins)

	wins, err = s.storage.IncrementWins(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(2, wins)

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, players[0].Wins)
	s.Equal(0, players[1].Wins)
}

func (s *StorageSuite) TestIncrementWinsUnknownPlayer() {
	_, err := s.storage.IncrementWins(s.ctx, 9)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.False(s.mini.Exists("seabattle:wins"))
}
