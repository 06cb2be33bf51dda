package bot

import (
	"math"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

const (
	MINIMAX_DEPTH       = 7
	MINIMAX_WIN         = 1000000
	MINIMAX_LOSS        = -1000000
	POSITION_WEIGHT     = 10
	TWO_IN_ROW_WEIGHT   = 50
	THREE_IN_ROW_WEIGHT = 500
)

// search order, centre first, so alpha-beta cuts earlier
var searchOrder = [domain.Columns]int{3, 2, 4, 1, 5, 0, 6}

// SearchStrategy is minimax with alpha-beta pruning over the heuristic evaluator.
type SearchStrategy struct {
	depth int
}

func NewSearchStrategy(depth int) *SearchStrategy {
	if depth <= 0 {
		depth = MINIMAX_DEPTH
	}
	return &SearchStrategy{depth: depth}
}

func (s *SearchStrategy) Depth() int {
	return s.depth
}

func (s *SearchStrategy) ChooseColumn(board domain.Board, botPlayer domain.Cell) int {
	validColumns := orderedMoves(&board)
	if len(validColumns) == 0 {
		return -1
	}

	opponent := getOpponent(botPlayer)
	bestCol := validColumns[0]
	bestScore := math.MinInt32
	alpha := math.MinInt32
	beta := math.MaxInt32

	for _, col := range validColumns {
		testBoard, row, _ := board.SimulateMove(col, botPlayer)

		// If this move wins immediately, take it
		if testBoard.CheckWinAt(row, col, botPlayer) {
			return col
		}

		score := s.minimax(&testBoard, s.depth-1, alpha, beta, false, botPlayer, opponent)
		if score > bestScore {
			bestScore = score
			bestCol = col
		}
		alpha = max(alpha, bestScore)
	}

	return bestCol
}

func (s *SearchStrategy) minimax(board *domain.Board, depth int, alpha, beta int, isMaximizing bool, botPlayer, opponent domain.Cell) int {
	validColumns := orderedMoves(board)

	if depth == 0 || len(validColumns) == 0 {
		return evaluateBoard(board, botPlayer, opponent)
	}

	// quicker wins and slower losses score better
	ply := s.depth - depth

	if isMaximizing {
		maxEval := math.MinInt32
		for _, col := range validColumns {
			testBoard, row, _ := board.SimulateMove(col, botPlayer)
			if testBoard.CheckWinAt(row, col, botPlayer) {
				return MINIMAX_WIN - ply
			}

			eval := s.minimax(&testBoard, depth-1, alpha, beta, false, botPlayer, opponent)
			maxEval = max(maxEval, eval)
			alpha = max(alpha, eval)
			if beta <= alpha {
				break
			}
		}
		return maxEval
	}

	minEval := math.MaxInt32
	for _, col := range validColumns {
		testBoard, row, _ := board.SimulateMove(col, opponent)
		if testBoard.CheckWinAt(row, col, opponent) {
			return MINIMAX_LOSS + ply
		}

		eval := s.minimax(&testBoard, depth-1, alpha, beta, true, botPlayer, opponent)
		minEval = min(minEval, eval)
		beta = min(beta, eval)
		if beta <= alpha {
			break
		}
	}
	return minEval
}

func orderedMoves(board *domain.Board) []int {
	moves := make([]int, 0, domain.Columns)
	for _, col := range searchOrder {
		if board.CanDrop(col) {
			moves = append(moves, col)
		}
	}
	return moves
}
