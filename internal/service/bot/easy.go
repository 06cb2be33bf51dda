package bot

import (
	"math/rand"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

// RandomStrategy picks any column uniformly, full or not. A full column
// comes back from the engine as ErrColumnFull and the controller reports it.
type RandomStrategy struct {
	rng *rand.Rand
}

func NewRandomStrategy(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: rng}
}

func (s *RandomStrategy) ChooseColumn(board domain.Board, piece domain.Cell) int {
	return s.rng.Intn(domain.Columns)
}

// EasyStrategy wins when it can, blocks when it must, and otherwise plays a random legal column.
type EasyStrategy struct {
	rng *rand.Rand
}

func NewEasyStrategy(rng *rand.Rand) *EasyStrategy {
	return &EasyStrategy{rng: rng}
}

func (s *EasyStrategy) ChooseColumn(board domain.Board, piece domain.Cell) int {
	validColumns := board.ValidMoves()
	if len(validColumns) == 0 {
		return -1
	}

	if col := findWinningMove(board, piece); col != -1 {
		return col
	}
	if col := findWinningMove(board, getOpponent(piece)); col != -1 {
		return col
	}

	return validColumns[s.rng.Intn(len(validColumns))]
}

// findWinningMove returns the first column where piece wins immediately, or -1.
func findWinningMove(board domain.Board, piece domain.Cell) int {
	for _, col := range board.ValidMoves() {
		testBoard, row, err := board.SimulateMove(col, piece)
		if err != nil {
			continue
		}
		if testBoard.CheckWinAt(row, col, piece) {
			return col
		}
	}
	return -1
}
