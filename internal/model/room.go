package model

// RoomID identifies a room in the registry
type RoomID int

// MaxRoomOccupants is the number of seats in a room
const MaxRoomOccupants = 2

// RoomUser is the public view of a room occupant
type RoomUser struct {
	Name  string
	Index PlayerID
}

// RoomSummary is the public view of a room waiting for an opponent
type RoomSummary struct {
	RoomID RoomID
	Users  []RoomUser
}
