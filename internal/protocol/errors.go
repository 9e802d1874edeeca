package protocol

import (
	"errors"

	"github.com/mcoot/seabattle/internal/model"
)

// ErrorCode is the machine-readable code carried by error replies
type ErrorCode string

// Error codes
const (
	CodeInvalidFormat         ErrorCode = "InvalidFormat"
	CodeUnknownCommand        ErrorCode = "UnknownCommand"
	CodeRoomNotFound          ErrorCode = "RoomNotFound"
	CodeRoomFull              ErrorCode = "RoomFull"
	CodeAlreadyInRoom         ErrorCode = "AlreadyInRoom"
	CodeGameNotFound          ErrorCode = "GameNotFound"
	CodeInvalidFleet          ErrorCode = "InvalidFleet"
	CodeFleetAlreadySubmitted ErrorCode = "FleetAlreadySubmitted"
	CodeGameNotStarted        ErrorCode = "GameNotStarted"
	CodeGameInProgress        ErrorCode = "GameInProgress"
	CodeGameFinished          ErrorCode = "GameFinished"
	CodeNotYourTurn           ErrorCode = "NotYourTurn"
	CodeInvalidPosition       ErrorCode = "InvalidPosition"
	CodeNotParticipant        ErrorCode = "NotParticipant"
	CodeNotRegistered         ErrorCode = "NotRegistered"
	CodeInvalidCredentials    ErrorCode = "InvalidCredentials"
	CodeInvalidPassword       ErrorCode = "InvalidPassword"
	CodeAlreadyConnected      ErrorCode = "AlreadyConnected"
	CodeUnknownPlayer         ErrorCode = "UnknownPlayer"
	CodeNoTargetsLeft         ErrorCode = "NoTargetsLeft"
	CodeInternal              ErrorCode = "Internal"
)

// Decode errors
var (
	ErrInvalidFormat  = errors.New("invalid message format")
	ErrUnknownCommand = errors.New("unknown command type")
)

// wireError pairs a code with the text shown to the client
type wireError struct {
	code    ErrorCode
	message string
}

// Describe maps an error to its wire code and client-facing text
func Describe(err error) (ErrorCode, string) {
	we := toWireError(err)
	return we.code, we.message
}

func toWireError(err error) wireError {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return wireError{CodeInvalidFormat, "Invalid message format"}
	case errors.Is(err, ErrUnknownCommand):
		return wireError{CodeUnknownCommand, "Unknown command type"}

	// Registry errors
	case errors.Is(err, model.ErrRoomNotFound):
		return wireError{CodeRoomNotFound, "Room does not exist"}
	case errors.Is(err, model.ErrRoomFull):
		return wireError{CodeRoomFull, "Room is full"}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return wireError{CodeAlreadyInRoom, "Already in this room"}

	// Game errors
	case errors.Is(err, model.ErrGameNotFound):
		return wireError{CodeGameNotFound, "Game does not exist"}
	case errors.Is(err, model.ErrInvalidFleet):
		return wireError{CodeInvalidFleet, err.Error()}
	case errors.Is(err, model.ErrFleetAlreadySubmitted):
		return wireError{CodeFleetAlreadySubmitted, "Ships already placed"}
	case errors.Is(err, model.ErrGameNotStarted):
		return wireError{CodeGameNotStarted, "Game has not started"}
	case errors.Is(err, model.ErrGameInProgress):
		return wireError{CodeGameInProgress, "Game is in progress"}
	case errors.Is(err, model.ErrGameFinished):
		return wireError{CodeGameFinished, "Game is finished"}
	case errors.Is(err, model.ErrNotYourTurn):
		return wireError{CodeNotYourTurn, "Not your turn"}
	case errors.Is(err, model.ErrInvalidPosition):
		return wireError{CodeInvalidPosition, "Position is off the board"}
	case errors.Is(err, model.ErrNotParticipant):
		return wireError{CodeNotParticipant, "You do not hold this seat"}
	case errors.Is(err, model.ErrNoTargetsLeft):
		return wireError{CodeNoTargetsLeft, "No cells left to attack"}

	// Player errors
	case errors.Is(err, model.ErrNotRegistered):
		return wireError{CodeNotRegistered, "Register first"}
	case errors.Is(err, model.ErrInvalidCredentials):
		return wireError{CodeInvalidCredentials, "Name and password are required"}
	case errors.Is(err, model.ErrInvalidPassword):
		return wireError{CodeInvalidPassword, "Invalid password"}
	case errors.Is(err, model.ErrAlreadyConnected):
		return wireError{CodeAlreadyConnected, "Player is already connected"}
	case errors.Is(err, model.ErrUnknownPlayer), errors.Is(err, model.ErrPlayerNotFound):
		return wireError{CodeUnknownPlayer, "Unknown player"}

	default:
		return wireError{CodeInternal, "Internal server error"}
	}
}
