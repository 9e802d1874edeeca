package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrUnknownPlayer      = errors.New("no registered player with this id")
	ErrNameTaken          = errors.New("player name already registered")
	ErrInvalidCredentials = errors.New("name and password are required")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrAlreadyConnected   = errors.New("player is already connected")
	ErrNotRegistered      = errors.New("connection is not registered")

	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("connection is already in this room")

	// Game errors
	ErrGameNotFound          = errors.New("game not found")
	ErrNotParticipant        = errors.New("connection does not hold this seat")
	ErrInvalidFleet          = errors.New("invalid fleet")
	ErrFleetAlreadySubmitted = errors.New("fleet already submitted")
	ErrGameNotStarted        = errors.New("game has not started")
	ErrGameInProgress        = errors.New("game is in progress")
	ErrGameFinished          = errors.New("game is already finished")
	ErrNotYourTurn           = errors.New("not this player's turn")
	ErrInvalidPosition       = errors.New("invalid board position")
	ErrNoTargetsLeft         = errors.New("no untargeted cells left")
)
