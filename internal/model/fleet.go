package model

// BoardSize is the width and height of every player's grid
const BoardSize = 10

// FleetSize is the number of ships each player must place
const FleetSize = 5

// Ship length limits
const (
	MinShipLength = 1
	MaxShipLength = 4
)

// Position identifies a cell on the board
type Position struct {
	X int `json:"x"` // 0-indexed column
	Y int `json:"y"` // 0-indexed row
}

// IsValid returns true if the position is within the board
func (p Position) IsValid() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// ShipType is the client-facing size label of a ship
type ShipType string

const (
	ShipSmall  ShipType = "small"
	ShipMedium ShipType = "medium"
	ShipLarge  ShipType = "large"
	ShipHuge   ShipType = "huge"
)

// ShipTypeForLength returns the label used for a ship of the given length
func ShipTypeForLength(length int) ShipType {
	switch length {
	case 1:
		return ShipSmall
	case 2:
		return ShipMedium
	case 3:
		return ShipLarge
	case 4:
		return ShipHuge
	default:
		return ""
	}
}

// Ship is a single vessel in a fleet
type Ship struct {
	Position  Position   // Origin cell
	Direction bool       // false = horizontal (+x), true = vertical (+y)
	Length    int        // 1..4
	Type      ShipType   // Optional label, must match Length when set
	Hits      []Position // Distinct cells that have been hit
}

// NewShip creates an undamaged ship
func NewShip(origin Position, vertical bool, length int) *Ship {
	return &Ship{
		Position:  origin,
		Direction: vertical,
		Length:    length,
		Type:      ShipTypeForLength(length),
	}
}

// Cells returns every cell the ship occupies, starting at the origin
func (s *Ship) Cells() []Position {
	cells := make([]Position, 0, s.Length)
	for i := 0; i < s.Length; i++ {
		if s.Direction {
			cells = append(cells, Position{X: s.Position.X, Y: s.Position.Y + i})
		} else {
			cells = append(cells, Position{X: s.Position.X + i, Y: s.Position.Y})
		}
	}
	return cells
}

// Occupies returns true if the ship covers the given cell
func (s *Ship) Occupies(pos Position) bool {
	if s.Direction {
		return pos.X == s.Position.X && pos.Y >= s.Position.Y && pos.Y < s.Position.Y+s.Length
	}
	return pos.Y == s.Position.Y && pos.X >= s.Position.X && pos.X < s.Position.X+s.Length
}

// IsHitAt returns true if the given cell of this ship was already hit
func (s *Ship) IsHitAt(pos Position) bool {
	for _, h := range s.Hits {
		if h == pos {
			return true
		}
	}
	return false
}

// HitCount returns the number of distinct cells hit
func (s *Ship) HitCount() int {
	return len(s.Hits)
}

// IsDestroyed returns true once every cell has been hit
func (s *Ship) IsDestroyed() bool {
	return s.HitCount() >= s.Length
}

// Fleet is a player's ships for one game, in placement order
type Fleet struct {
	Ships []*Ship
}

// NewFleet creates a fleet from the given ships
func NewFleet(ships []*Ship) *Fleet {
	return &Fleet{Ships: ships}
}

// ShipAt returns the first ship occupying the cell, or nil
func (f *Fleet) ShipAt(pos Position) *Ship {
	for _, s := range f.Ships {
		if s.Occupies(pos) {
			return s
		}
	}
	return nil
}

// IsDefeated returns true if every ship is destroyed
func (f *Fleet) IsDefeated() bool {
	for _, s := range f.Ships {
		if !s.IsDestroyed() {
			return false
		}
	}
	return true
}

// RemainingShips returns the number of ships still afloat
func (f *Fleet) RemainingShips() int {
	count := 0
	for _, s := range f.Ships {
		if !s.IsDestroyed() {
			count++
		}
	}
	return count
}
