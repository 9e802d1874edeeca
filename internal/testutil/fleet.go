package testutil

import "github.com/mcoot/seabattle/internal/model"

// StandardFleet returns a valid five-ship placement, one horizontal ship
// per even row starting at x=0, lengths 4, 3, 2, 2, 1
func StandardFleet() []*model.Ship {
	lengths := []int{4, 3, 2, 2, 1}
	ships := make([]*model.Ship, len(lengths))
	for i, length := range lengths {
		ships[i] = model.NewShip(model.Position{X: 0, Y: i * 2}, false, length)
	}
	return ships
}

// StandardFleetCells returns every cell covered by StandardFleet
func StandardFleetCells() []model.Position {
	var cells []model.Position
	for _, ship := range StandardFleet() {
		cells = append(cells, ship.Cells()...)
	}
	return cells
}
