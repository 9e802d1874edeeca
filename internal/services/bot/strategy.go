package bot

import (
	"fmt"

	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
)

// FleetLengths are the ship lengths a bot places, longest first
var FleetLengths = []int{4, 3, 2, 2, 1}

// Placement retry limits
const (
	maxPlacementAttempts = 200
	maxFleetAttempts     = 10
)

// Strategy defines how a bot lays out its fleet and picks targets
type Strategy interface {
	// PlaceFleet returns a valid placement
	PlaceFleet() []*model.Ship
	// ChooseTarget selects a cell for self to fire at; the game always
	// has at least one cell self has not fired at
	ChooseTarget(game *model.Game, self model.PlayerIndex) model.Position
}

// NewStrategy returns the strategy registered under name
func NewStrategy(name string, rnd random.Random) (Strategy, error) {
	switch name {
	case model.BotStrategyRandom:
		return NewRandomStrategy(rnd), nil
	case model.BotStrategyHunt:
		return NewHuntStrategy(rnd), nil
	default:
		return nil, fmt.Errorf("unknown bot strategy: %s", name)
	}
}

// randomFleet places FleetLengths at random, non-overlapping positions,
// falling back to a fixed layout if the random source keeps colliding
func randomFleet(rnd random.Random) []*model.Ship {
	for attempt := 0; attempt < maxFleetAttempts; attempt++ {
		if ships, ok := tryRandomFleet(rnd); ok {
			return ships
		}
	}
	return fixedFleet()
}

// fixedFleet lays FleetLengths out one per even row
func fixedFleet() []*model.Ship {
	ships := make([]*model.Ship, len(FleetLengths))
	for i, length := range FleetLengths {
		ships[i] = model.NewShip(model.Position{X: 0, Y: i * 2}, false, length)
	}
	return ships
}

func tryRandomFleet(rnd random.Random) ([]*model.Ship, bool) {
	occupied := make(map[model.Position]bool)
	ships := make([]*model.Ship, 0, len(FleetLengths))

	for _, length := range FleetLengths {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts && !placed; attempt++ {
			vertical := rnd.Intn(2) == 1
			maxX, maxY := model.BoardSize-length, model.BoardSize-1
			if vertical {
				maxX, maxY = model.BoardSize-1, model.BoardSize-length
			}
			origin := model.Position{X: rnd.Intn(maxX + 1), Y: rnd.Intn(maxY + 1)}
			ship := model.NewShip(origin, vertical, length)

			if overlaps(ship, occupied) {
				continue
			}
			for _, cell := range ship.Cells() {
				occupied[cell] = true
			}
			ships = append(ships, ship)
			placed = true
		}
		if !placed {
			return nil, false
		}
	}
	return ships, true
}

func overlaps(ship *model.Ship, occupied map[model.Position]bool) bool {
	for _, cell := range ship.Cells() {
		if occupied[cell] {
			return true
		}
	}
	return false
}
