package game

import (
	"fmt"

	"github.com/mcoot/seabattle/internal/model"
)

// ValidateFleet checks a placement: exactly FleetSize ships, each of a
// legal length, fully on the board and not overlapping another ship.
// Returned errors wrap model.ErrInvalidFleet.
func ValidateFleet(ships []*model.Ship) error {
	if len(ships) != model.FleetSize {
		return fmt.Errorf("%w: expected %d ships, got %d", model.ErrInvalidFleet, model.FleetSize, len(ships))
	}

	occupied := make(map[model.Position]int, model.FleetSize*model.MaxShipLength)
	for i, ship := range ships {
		if ship == nil {
			return fmt.Errorf("%w: ship %d is missing", model.ErrInvalidFleet, i)
		}
		if ship.Length < model.MinShipLength || ship.Length > model.MaxShipLength {
			return fmt.Errorf("%w: ship %d has length %d", model.ErrInvalidFleet, i, ship.Length)
		}
		if ship.Type != "" && ship.Type != model.ShipTypeForLength(ship.Length) {
			return fmt.Errorf("%w: ship %d type %q does not match length %d", model.ErrInvalidFleet, i, ship.Type, ship.Length)
		}
		for _, cell := range ship.Cells() {
			if !cell.IsValid() {
				return fmt.Errorf("%w: ship %d leaves the board at (%d,%d)", model.ErrInvalidFleet, i, cell.X, cell.Y)
			}
			if other, ok := occupied[cell]; ok {
				return fmt.Errorf("%w: ships %d and %d overlap at (%d,%d)", model.ErrInvalidFleet, other, i, cell.X, cell.Y)
			}
			occupied[cell] = i
		}
	}
	return nil
}
