package model

import "time"

// GameID uniquely identifies a game session
type GameID string

// PlayerIndex is a session-local seat number, 1 or 2
type PlayerIndex int

const (
	NoPlayer     PlayerIndex = 0
	FirstPlayer  PlayerIndex = 1
	SecondPlayer PlayerIndex = 2
)

// Opponent returns the other seat
func (i PlayerIndex) Opponent() PlayerIndex {
	if i == FirstPlayer {
		return SecondPlayer
	}
	return FirstPlayer
}

// IsValid returns true for seat 1 or 2
func (i PlayerIndex) IsValid() bool {
	return i == FirstPlayer || i == SecondPlayer
}

// GameStatus represents the current phase of a game
type GameStatus string

const (
	GameStatusAwaitingFleets GameStatus = "awaiting_fleets" // Waiting for both placements
	GameStatusInProgress     GameStatus = "in_progress"     // Attacks are being exchanged
	GameStatusFinished       GameStatus = "finished"        // One fleet destroyed or forfeited
)

// Seat binds a participant index to a player
type Seat struct {
	Index    PlayerIndex
	PlayerID PlayerID // Zero for bots
	Name     string
	IsBot    bool
}

// Game represents a single Battleship match between two seats
type Game struct {
	ID     GameID
	RoomID RoomID
	Status GameStatus
	Solo   bool // Second seat is a bot

	// Seats[0] is participant 1, Seats[1] is participant 2
	Seats [2]Seat

	// Per-seat state
	Fleets map[PlayerIndex]*Fleet
	Shots  map[PlayerIndex]map[Position]bool // Cells each seat has fired at

	// Turn management
	Turn   PlayerIndex
	Winner PlayerIndex // NoPlayer until finished

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGame creates a game awaiting fleet placement
func NewGame(id GameID, roomID RoomID, first, second Seat, now time.Time) *Game {
	first.Index = FirstPlayer
	second.Index = SecondPlayer
	return &Game{
		ID:     id,
		RoomID: roomID,
		Status: GameStatusAwaitingFleets,
		Solo:   second.IsBot,
		Seats:  [2]Seat{first, second},
		Fleets: make(map[PlayerIndex]*Fleet),
		Shots: map[PlayerIndex]map[Position]bool{
			FirstPlayer:  {},
			SecondPlayer: {},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Seat returns the seat for a participant index
func (g *Game) Seat(index PlayerIndex) *Seat {
	if !index.IsValid() {
		return nil
	}
	return &g.Seats[index-1]
}

// SeatForPlayer returns the seat held by a registered player, or nil
func (g *Game) SeatForPlayer(playerID PlayerID) *Seat {
	for i := range g.Seats {
		if !g.Seats[i].IsBot && g.Seats[i].PlayerID == playerID {
			return &g.Seats[i]
		}
	}
	return nil
}

// HasFleet returns true if the seat has submitted its placement
func (g *Game) HasFleet(index PlayerIndex) bool {
	_, ok := g.Fleets[index]
	return ok
}

// AllFleetsPlaced returns true once both seats have submitted
func (g *Game) AllFleetsPlaced() bool {
	return g.HasFleet(FirstPlayer) && g.HasFleet(SecondPlayer)
}

// IsFinished returns true if the game has a result
func (g *Game) IsFinished() bool {
	return g.Status == GameStatusFinished
}

// HasShot returns true if the seat already fired at the cell
func (g *Game) HasShot(index PlayerIndex, pos Position) bool {
	return g.Shots[index][pos]
}
