package protocol

import (
	"encoding/json"

	"github.com/mcoot/seabattle/internal/model"
)

// Outbound message types
const (
	TypeUpdateRoom    = "update_room"
	TypeCreateGame    = "create_game"
	TypeStartGame     = "start_game"
	TypeTurn          = "turn"
	TypeFinish        = "finish"
	TypeUpdateWinners = "update_winners"
	TypeError         = "error"
)

// BroadcastID is the envelope id used for messages not answering a request
const BroadcastID = 0

// Outbound payloads

// RegPayload answers a reg command
type RegPayload struct {
	Name      string `json:"name"`
	Index     int    `json:"index"`
	Error     bool   `json:"error"`
	ErrorText string `json:"errorText"`
}

// RoomUserPayload is an occupant in an update_room entry
type RoomUserPayload struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// RoomPayload is one update_room entry
type RoomPayload struct {
	RoomID    int               `json:"roomId"`
	RoomUsers []RoomUserPayload `json:"roomUsers"`
}

// CreateGamePayload tells an occupant its game and seat
type CreateGamePayload struct {
	IDGame   string `json:"idGame"`
	IDPlayer int    `json:"idPlayer"`
}

// ShipPayload is a ship as clients see it
type ShipPayload struct {
	Position  model.Position `json:"position"`
	Direction bool           `json:"direction"`
	Length    int            `json:"length"`
	Type      string         `json:"type"`
}

// StartGamePayload carries the recipient's own fleet only
type StartGamePayload struct {
	Ships              []ShipPayload `json:"ships"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
}

// AttackPayload reports a resolved shot
type AttackPayload struct {
	Position      model.Position `json:"position"`
	CurrentPlayer int            `json:"currentPlayer"`
	Status        string         `json:"status"`
}

// TurnPayload names the seat to move
type TurnPayload struct {
	CurrentPlayer int `json:"currentPlayer"`
}

// FinishPayload names the winning seat
type FinishPayload struct {
	WinPlayer int `json:"winPlayer"`
}

// WinnerPayload is one leaderboard row
type WinnerPayload struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// ErrorPayload describes a rejected command
type ErrorPayload struct {
	Code  ErrorCode `json:"code"`
	Error string    `json:"error"`
}

// Encode wraps a payload in an envelope. A nil payload encodes as "".
func Encode(msgType string, id int, payload any) ([]byte, error) {
	data := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = string(b)
	}
	return json.Marshal(Envelope{Type: msgType, Data: data, ID: id})
}

// mustEncode is for the fixed payload structs above, which always marshal
func mustEncode(msgType string, id int, payload any) []byte {
	b, err := Encode(msgType, id, payload)
	if err != nil {
		panic(err)
	}
	return b
}

// Reg builds a successful reg reply
func Reg(id int, player *model.Player) []byte {
	return mustEncode(TypeRegister, id, RegPayload{Name: player.Name, Index: int(player.ID)})
}

// RegError builds a failed reg reply
func RegError(id int, name string, err error) []byte {
	_, text := Describe(err)
	return mustEncode(TypeRegister, id, RegPayload{Name: name, Error: true, ErrorText: text})
}

// UpdateRoom lists rooms waiting for an opponent
func UpdateRoom(rooms []model.RoomSummary) []byte {
	payload := make([]RoomPayload, len(rooms))
	for i, r := range rooms {
		users := make([]RoomUserPayload, len(r.Users))
		for j, u := range r.Users {
			users[j] = RoomUserPayload{Name: u.Name, Index: int(u.Index)}
		}
		payload[i] = RoomPayload{RoomID: int(r.RoomID), RoomUsers: users}
	}
	return mustEncode(TypeUpdateRoom, BroadcastID, payload)
}

// CreateGame tells one occupant its game ID and its own seat
func CreateGame(id int, gameID model.GameID, self model.PlayerIndex) []byte {
	return mustEncode(TypeCreateGame, id, CreateGamePayload{IDGame: string(gameID), IDPlayer: int(self)})
}

// StartGame sends a seat its own fleet and the opening turn
func StartGame(id int, fleet *model.Fleet, current model.PlayerIndex) []byte {
	ships := make([]ShipPayload, len(fleet.Ships))
	for i, s := range fleet.Ships {
		ships[i] = ShipPayload{
			Position:  s.Position,
			Direction: s.Direction,
			Length:    s.Length,
			Type:      string(model.ShipTypeForLength(s.Length)),
		}
	}
	return mustEncode(TypeStartGame, id, StartGamePayload{Ships: ships, CurrentPlayerIndex: int(current)})
}

// Attack reports a resolved shot; currentPlayer is the attacker
func Attack(id int, outcome *model.AttackOutcome) []byte {
	return mustEncode(TypeAttack, id, AttackPayload{
		Position:      outcome.Position,
		CurrentPlayer: int(outcome.Attacker),
		Status:        string(outcome.Status),
	})
}

// Turn names the seat to move next
func Turn(id int, current model.PlayerIndex) []byte {
	return mustEncode(TypeTurn, id, TurnPayload{CurrentPlayer: int(current)})
}

// Finish names the winning seat
func Finish(id int, winner model.PlayerIndex) []byte {
	return mustEncode(TypeFinish, id, FinishPayload{WinPlayer: int(winner)})
}

// UpdateWinners carries the ranked leaderboard
func UpdateWinners(standings []model.Standing) []byte {
	payload := make([]WinnerPayload, len(standings))
	for i, s := range standings {
		payload[i] = WinnerPayload{Name: s.Name, Wins: s.Wins}
	}
	return mustEncode(TypeUpdateWinners, BroadcastID, payload)
}

// Error builds an error reply for a failed command
func Error(id int, err error) []byte {
	code, text := Describe(err)
	return mustEncode(TypeError, id, ErrorPayload{Code: code, Error: text})
}
