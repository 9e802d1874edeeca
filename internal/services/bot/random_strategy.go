package bot

import (
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/game"
)

// RandomStrategy places ships randomly and fires at random untried cells
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// PlaceFleet returns a random valid placement
func (s *RandomStrategy) PlaceFleet() []*model.Ship {
	return randomFleet(s.random)
}

// ChooseTarget picks a random cell not yet fired at
func (s *RandomStrategy) ChooseTarget(g *model.Game, self model.PlayerIndex) model.Position {
	open := game.OpenCells(g, self)
	if len(open) == 0 {
		return model.Position{}
	}
	return open[s.random.Intn(len(open))]
}
