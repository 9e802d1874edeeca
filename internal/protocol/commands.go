package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mcoot/seabattle/internal/model"
)

// Inbound command types
const (
	TypeRegister     = "reg"
	TypeCreateRoom   = "create_room"
	TypeJoinRoom     = "add_user_to_room"
	TypeAddShips     = "add_ships"
	TypeAttack       = "attack"
	TypeRandomAttack = "randomAttack"
	TypeSinglePlay   = "single_play"
)

// Envelope is the frame every message travels in. Data always holds
// the payload as an encoded JSON string.
type Envelope struct {
	Type string `json:"type"`
	Data string `json:"data"`
	ID   int    `json:"id"`
}

// Command is a decoded inbound message. The set of implementations is
// closed: the router switches over the concrete types below.
type Command interface {
	// Type returns the envelope type the command arrived as
	Type() string
	// RequestID returns the envelope id to echo in replies
	RequestID() int
}

// Request carries the envelope id shared by all commands
type Request struct {
	ID int
}

// RequestID returns the envelope id
func (r Request) RequestID() int { return r.ID }

// RegisterCommand logs in or creates a player
type RegisterCommand struct {
	Request
	Name     string
	Password string
}

// CreateRoomCommand opens an empty room
type CreateRoomCommand struct {
	Request
}

// JoinRoomCommand takes a seat in a room
type JoinRoomCommand struct {
	Request
	RoomID model.RoomID
}

// AddShipsCommand submits a seat's fleet
type AddShipsCommand struct {
	Request
	GameID      model.GameID
	Ships       []*model.Ship
	PlayerIndex model.PlayerIndex
}

// AttackCommand fires at a cell
type AttackCommand struct {
	Request
	GameID      model.GameID
	Position    model.Position
	PlayerIndex model.PlayerIndex
}

// RandomAttackCommand fires at a server-chosen cell
type RandomAttackCommand struct {
	Request
	GameID      model.GameID
	PlayerIndex model.PlayerIndex
}

// SinglePlayCommand starts a game against the bot
type SinglePlayCommand struct {
	Request
}

func (RegisterCommand) Type() string     { return TypeRegister }
func (CreateRoomCommand) Type() string   { return TypeCreateRoom }
func (JoinRoomCommand) Type() string     { return TypeJoinRoom }
func (AddShipsCommand) Type() string     { return TypeAddShips }
func (AttackCommand) Type() string       { return TypeAttack }
func (RandomAttackCommand) Type() string { return TypeRandomAttack }
func (SinglePlayCommand) Type() string   { return TypeSinglePlay }

// rawEnvelope defers decoding of data so its shape can be checked
type rawEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	ID   int             `json:"id"`
}

// DecodeError is returned by Decode. ID is the envelope id when it
// could be read, so the error reply can reference it.
type DecodeError struct {
	ID  int
	Err error
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a raw frame into a Command
func Decode(raw []byte) (Command, error) {
	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrInvalidFormat, err)}
	}

	fail := func(err error) (Command, error) {
		return nil, &DecodeError{ID: env.ID, Err: err}
	}

	if env.Type == "" {
		return fail(fmt.Errorf("%w: missing type", ErrInvalidFormat))
	}

	data, err := payloadString(env.Data)
	if err != nil {
		return fail(err)
	}

	req := Request{ID: env.ID}
	switch env.Type {
	case TypeRegister:
		var p registerPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return fail(err)
		}
		return RegisterCommand{Request: req, Name: p.Name, Password: p.Password}, nil

	case TypeCreateRoom:
		return CreateRoomCommand{Request: req}, nil

	case TypeJoinRoom:
		var p joinRoomPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return fail(err)
		}
		return JoinRoomCommand{Request: req, RoomID: model.RoomID(p.IndexRoom)}, nil

	case TypeAddShips:
		var p addShipsPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return fail(err)
		}
		ships := make([]*model.Ship, len(p.Ships))
		for i, s := range p.Ships {
			ships[i] = &model.Ship{
				Position:  s.Position,
				Direction: s.Direction,
				Length:    s.Length,
				Type:      model.ShipType(s.Type),
			}
		}
		return AddShipsCommand{
			Request:     req,
			GameID:      model.GameID(p.GameID),
			Ships:       ships,
			PlayerIndex: model.PlayerIndex(p.IndexPlayer),
		}, nil

	case TypeAttack:
		var p attackPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return fail(err)
		}
		return AttackCommand{
			Request:     req,
			GameID:      model.GameID(p.GameID),
			Position:    model.Position{X: p.X, Y: p.Y},
			PlayerIndex: model.PlayerIndex(p.IndexPlayer),
		}, nil

	case TypeRandomAttack:
		var p randomAttackPayload
		if err := unmarshalPayload(data, &p); err != nil {
			return fail(err)
		}
		return RandomAttackCommand{
			Request:     req,
			GameID:      model.GameID(p.GameID),
			PlayerIndex: model.PlayerIndex(p.IndexPlayer),
		}, nil

	case TypeSinglePlay:
		return SinglePlayCommand{Request: req}, nil

	default:
		return fail(fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type))
	}
}

// payloadString unwraps the data field, which must be a JSON string
// (or absent, for payload-less commands)
func payloadString(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] != '"' {
		return "", fmt.Errorf("%w: data must be an encoded string", ErrInvalidFormat)
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return s, nil
}

func unmarshalPayload(data string, v any) error {
	if data == "" {
		return fmt.Errorf("%w: missing data", ErrInvalidFormat)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

// Inbound payloads

type registerPayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type joinRoomPayload struct {
	IndexRoom flexInt `json:"indexRoom"`
}

type shipPayload struct {
	Position  model.Position `json:"position"`
	Direction bool           `json:"direction"`
	Length    int            `json:"length"`
	Type      string         `json:"type,omitempty"`
}

type addShipsPayload struct {
	GameID      string        `json:"gameId"`
	Ships       []shipPayload `json:"ships"`
	IndexPlayer flexInt       `json:"indexPlayer"`
}

type attackPayload struct {
	GameID      string  `json:"gameId"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	IndexPlayer flexInt `json:"indexPlayer"`
}

type randomAttackPayload struct {
	GameID      string  `json:"gameId"`
	IndexPlayer flexInt `json:"indexPlayer"`
}

// flexInt accepts a JSON number or a numeric string; clients echo
// identifiers back in either form
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}
