package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// playerRecord is the JSON stored under a player key
// Wins live in a separate hash so increments stay atomic
type playerRecord struct {
	ID           model.PlayerID `json:"id"`
	Name         string         `json:"name"`
	PasswordHash string         `json:"password_hash"`
	CreatedAt    time.Time      `json:"created_at"`
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// createPlayerScript claims the name index and writes the record in one
// step. An index entry whose record is missing is reclaimed.
// KEYS: name index, player key, wins hash
// ARGV: id, record JSON, wins, player key prefix
var createPlayerScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current and redis.call('EXISTS', ARGV[4] .. current) == 1 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
redis.call('HSET', KEYS[3], ARGV[1], ARGV[3])
return 1
`)

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	// Reject early so a taken name does not burn a sequence number
	if _, err := s.GetPlayerByName(ctx, player.Name); err == nil {
		return model.ErrNameTaken
	} else if !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	id, err := s.client.Incr(ctx, playerSequenceKey()).Result()
	if err != nil {
		return err
	}

	data, err := json.Marshal(playerRecord{
		ID:           model.PlayerID(id),
		Name:         player.Name,
		PasswordHash: player.PasswordHash,
		CreatedAt:    player.CreatedAt,
	})
	if err != nil {
		return err
	}

	claimed, err := createPlayerScript.Run(ctx, s.client,
		[]string{nameIndexKey(player.Name), playerKey(model.PlayerID(id)), winsKey()},
		id, data, player.Wins, playerKeyPrefix(),
	).Int()
	if err != nil {
		return err
	}
	if claimed == 0 {
		return model.ErrNameTaken
	}

	player.ID = model.PlayerID(id)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	player, err := decodePlayer(data)
	if err != nil {
		return nil, err
	}

	wins, err := s.client.HGet(ctx, winsKey(), strconv.Itoa(int(id))).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	player.Wins = wins
	return player, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	id, err := s.client.Get(ctx, nameIndexKey(name)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	last, err := s.client.Get(ctx, playerSequenceKey()).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*model.Player{}, nil
		}
		return nil, err
	}
	if last == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, 0, last)
	for id := 1; id <= last; id++ {
		keys = append(keys, playerKey(model.PlayerID(id)))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	wins, err := s.client.HGetAll(ctx, winsKey()).Result()
	if err != nil {
		return nil, err
	}

	// Sequence numbers burnt by a lost registration race leave gaps
	result := make([]*model.Player, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		player, err := decodePlayer([]byte(str))
		if err != nil {
			return nil, err
		}
		if w, ok := wins[strconv.Itoa(int(player.ID))]; ok {
			player.Wins, _ = strconv.Atoi(w)
		}
		result = append(result, player)
	}
	return result, nil
}

func (s *Storage) IncrementWins(ctx context.Context, id model.PlayerID) (int, error) {
	exists, err := s.client.Exists(ctx, playerKey(id)).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, model.ErrPlayerNotFound
	}

	wins, err := s.client.HIncrBy(ctx, winsKey(), strconv.Itoa(int(id)), 1).Result()
	if err != nil {
		return 0, err
	}
	return int(wins), nil
}

func decodePlayer(data []byte) (*model.Player, error) {
	var rec playerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &model.Player{
		ID:           rec.ID,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
