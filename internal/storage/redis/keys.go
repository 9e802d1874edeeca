package redis

import (
	"fmt"

	"github.com/mcoot/seabattle/internal/model"
)

// Key prefix for all player data
const keyPrefix = "seabattle"

// playerKey returns the Redis key for a Player record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s%d", playerKeyPrefix(), id)
}

// playerKeyPrefix is playerKey without the ID
func playerKeyPrefix() string {
	return keyPrefix + ":player:"
}

// nameIndexKey returns the Redis key for the name -> player_id index
func nameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// playerSequenceKey returns the counter used to assign player IDs
func playerSequenceKey() string {
	return fmt.Sprintf("%s:seq:player", keyPrefix)
}

// winsKey returns the hash of player_id -> win count
func winsKey() string {
	return fmt.Sprintf("%s:wins", keyPrefix)
}
