package model

import "time"

// PlayerID uniquely identifies a registered player, assigned in registration order
type PlayerID int

// Player is a registered identity
// Wins is only changed by the leaderboard when the player wins a game
type Player struct {
	ID           PlayerID
	Name         string // Unique, immutable
	PasswordHash string // bcrypt hash
	Wins         int
	CreatedAt    time.Time
}

// Standing is one leaderboard row
type Standing struct {
	Name string
	Wins int
}
