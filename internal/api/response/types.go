package response

import "github.com/mcoot/seabattle/internal/model"

// Health is the body of GET /api/v1/health
type Health struct {
	Status        string `json:"status"`
	Connections   int    `json:"connections"`
	OnlinePlayers int    `json:"online_players"`
	Rooms         int    `json:"rooms"`
	Games         int    `json:"games"`
}

// Standing is one leaderboard row
type Standing struct {
	Rank int    `json:"rank"`
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// StandingsFromModel ranks standings in the order given, starting at 1
func StandingsFromModel(standings []model.Standing) []Standing {
	result := make([]Standing, len(standings))
	for i, s := range standings {
		result[i] = Standing{Rank: i + 1, Name: s.Name, Wins: s.Wins}
	}
	return result
}

// RoomUser is an occupant of a room
type RoomUser struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Room is a room and its occupants
type Room struct {
	ID    int        `json:"id"`
	Users []RoomUser `json:"users"`
}

// RoomFromModel converts a model.RoomSummary
func RoomFromModel(r model.RoomSummary) Room {
	users := make([]RoomUser, len(r.Users))
	for i, u := range r.Users {
		users[i] = RoomUser{Name: u.Name, Index: int(u.Index)}
	}
	return Room{ID: int(r.RoomID), Users: users}
}

// RoomsFromModel converts a list of model.RoomSummary
func RoomsFromModel(rooms []model.RoomSummary) []Room {
	result := make([]Room, len(rooms))
	for i, r := range rooms {
		result[i] = RoomFromModel(r)
	}
	return result
}
