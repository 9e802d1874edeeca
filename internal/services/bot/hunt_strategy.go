package bot

import (
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/game"
)

// HuntStrategy fires on a checkerboard until it hits something, then
// works the neighbours of damaged ships until they sink
type HuntStrategy struct {
	random random.Random
}

// NewHuntStrategy creates a new HuntStrategy
func NewHuntStrategy(rnd random.Random) *HuntStrategy {
	return &HuntStrategy{random: rnd}
}

// PlaceFleet returns a random valid placement
func (s *HuntStrategy) PlaceFleet() []*model.Ship {
	return randomFleet(s.random)
}

// ChooseTarget prefers cells next to hits on ships still afloat
func (s *HuntStrategy) ChooseTarget(g *model.Game, self model.PlayerIndex) model.Position {
	if targets := s.followUps(g, self); len(targets) > 0 {
		return targets[s.random.Intn(len(targets))]
	}

	open := game.OpenCells(g, self)
	var parity []model.Position
	for _, pos := range open {
		if (pos.X+pos.Y)%2 == 0 {
			parity = append(parity, pos)
		}
	}
	if len(parity) > 0 {
		return parity[s.random.Intn(len(parity))]
	}
	if len(open) == 0 {
		return model.Position{}
	}
	return open[s.random.Intn(len(open))]
}

// followUps returns untried cells adjacent to hits on damaged ships.
// Hits on a ship still afloat were all reported back as "shot", so the
// bot only uses what a player would have seen.
func (s *HuntStrategy) followUps(g *model.Game, self model.PlayerIndex) []model.Position {
	fleet := g.Fleets[self.Opponent()]
	if fleet == nil {
		return nil
	}

	seen := make(map[model.Position]bool)
	var targets []model.Position
	for _, ship := range fleet.Ships {
		if ship.IsDestroyed() {
			continue
		}
		for _, hit := range ship.Hits {
			for _, next := range neighbours(hit) {
				if !next.IsValid() || g.HasShot(self, next) || seen[next] {
					continue
				}
				seen[next] = true
				targets = append(targets, next)
			}
		}
	}
	return targets
}

func neighbours(pos model.Position) []model.Position {
	return []model.Position{
		{X: pos.X + 1, Y: pos.Y},
		{X: pos.X - 1, Y: pos.Y},
		{X: pos.X, Y: pos.Y + 1},
		{X: pos.X, Y: pos.Y - 1},
	}
}
