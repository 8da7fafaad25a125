package fairness

import (
	"moon-casino-backend/internal/models"
)

const MinesBoardSize = 25

// MineMultiplier is the product over i < revealed of (25-i)/(25-mines-i),
// scaled by (1 - houseEdge). Zero reveals is exactly 1.
func MineMultiplier(houseEdge float64, minesCount, revealedCount int) (float64, error) {
	if minesCount < 1 || minesCount > MinesBoardSize-1 {
		return 0, models.InvalidParameter("mines count %d outside 1..%d", minesCount, MinesBoardSize-1)
	}
	safe := MinesBoardSize - minesCount
	if revealedCount < 0 || revealedCount > safe {
		return 0, models.InvalidParameter("revealed count %d outside 0..%d", revealedCount, safe)
	}
	if revealedCount == 0 {
		return 1.0, nil
	}

	m := 1.0
	for i := 0; i < revealedCount; i++ {
		m *= float64(MinesBoardSize-i) / float64(safe-i)
	}
	return m * (1 - houseEdge), nil
}

// PlaceMines picks minesCount distinct cells with a partial Fisher-Yates
// shuffle and returns the grid, true marking a mine.
func PlaceMines(src Source, minesCount int) ([]bool, error) {
	if minesCount < 1 || minesCount > MinesBoardSize-1 {
		return nil, models.InvalidParameter("mines count %d outside 1..%d", minesCount, MinesBoardSize-1)
	}

	cells := make([]int, MinesBoardSize)
	for i := range cells {
		cells[i] = i
	}
	for i := 0; i < minesCount; i++ {
		j := i + src.Intn(MinesBoardSize-i)
		cells[i], cells[j] = cells[j], cells[i]
	}

	grid := make([]bool, MinesBoardSize)
	for _, c := range cells[:minesCount] {
		grid[c] = true
	}
	return grid, nil
}
