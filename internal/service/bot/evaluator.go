package bot

import (
	"github.com/iamasit07/connect4-engine/internal/domain"
)

const (
	// Score priorities (from highest to lowest)
	SCORE_WIN_NOW           = 100000 // Bot can win immediately
	SCORE_BLOCK_WIN         = 10000  // Block opponent's immediate win
	SCORE_CREATE_WIN_THREAT = 8000   // Create a position where bot can win next move
	SCORE_BLOCK_WIN_THREAT  = 5000   // Block opponent's potential win setup
	SCORE_THREE_IN_ROW      = 400    // Bot has 3 in a row (good threat)
	SCORE_TWO_IN_ROW        = 100    // Bot has 2 in a row
	SCORE_SINGLE            = 25
	SCORE_CENTER            = 30 // Center column bonus
	SCORE_NEAR_CENTER       = 20 // Near center bonus
	SCORE_EDGE              = 5  // Edge columns
)

var lineDirections = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal /
	{1, -1}, // diagonal \
}

// evaluateBoard calculates a heuristic score for the current board position
func evaluateBoard(board *domain.Board, botPlayer, opponent domain.Cell) int {
	score := 0

	for row := 0; row < domain.Rows; row++ {
		for col := 0; col < domain.Columns; col++ {
			switch board[row][col] {
			case botPlayer:
				score += evaluatePosition(board, row, col, botPlayer)
			case opponent:
				score -= evaluatePosition(board, row, col, opponent)
			}
		}
	}

	// Center column preference
	centerCol := domain.Columns / 2
	for row := 0; row < domain.Rows; row++ {
		switch board[row][centerCol] {
		case botPlayer:
			score += POSITION_WEIGHT * 2
		case opponent:
			score -= POSITION_WEIGHT * 2
		}
	}

	return score
}

// evaluatePosition evaluates a single position's contribution to the score
func evaluatePosition(board *domain.Board, row, col int, player domain.Cell) int {
	score := POSITION_WEIGHT

	for _, dir := range lineDirections {
		dRow, dCol := dir[0], dir[1]

		posCount := board.CountDiskInDirection(row, col, dRow, dCol, player)
		negCount := board.CountDiskInDirection(row, col, -dRow, -dCol, player)
		total := posCount + negCount

		if !checkSpaceForExtension(board, row, col, dRow, dCol, posCount, negCount) {
			continue
		}
		if total >= 2 {
			score += THREE_IN_ROW_WEIGHT
		} else if total == 1 {
			score += TWO_IN_ROW_WEIGHT
		}
	}

	return score
}

// Evaluate threats (3-in-a-row, 2-in-a-row) through a freshly placed piece
func evaluateThreats(board *domain.Board, row, col int, player domain.Cell) int {
	score := 0

	for _, dir := range lineDirections {
		dRow, dCol := dir[0], dir[1]

		posCount := board.CountDiskInDirection(row, col, dRow, dCol, player)
		negCount := board.CountDiskInDirection(row, col, -dRow, -dCol, player)
		total := posCount + negCount

		if !checkSpaceForExtension(board, row, col, dRow, dCol, posCount, negCount) {
			continue // No point in counting if we can't extend
		}

		// total excludes the placed piece itself
		switch {
		case total >= 2:
			score += SCORE_THREE_IN_ROW
		case total == 1:
			score += SCORE_TWO_IN_ROW
		default:
			score += SCORE_SINGLE
		}
	}

	return score
}

// evaluateWinningThreat scores how many immediate wins player has and
// whether the opponent can stop them with one block.
func evaluateWinningThreat(board domain.Board, player domain.Cell, opponent domain.Cell) int {
	winningMoves := []int{}

	for _, col := range board.ValidMoves() {
		testBoard, row, err := board.SimulateMove(col, player)
		if err != nil {
			continue
		}
		if testBoard.CheckWinAt(row, col, player) {
			winningMoves = append(winningMoves, col)
		}
	}

	// opponent can only block one of them
	if len(winningMoves) >= 2 {
		return SCORE_CREATE_WIN_THREAT
	}

	if len(winningMoves) == 1 {
		blockBoard, _, err := board.SimulateMove(winningMoves[0], opponent)
		if err != nil {
			return SCORE_CREATE_WIN_THREAT / 4
		}

		if findWinningMove(blockBoard, player) != -1 {
			return SCORE_CREATE_WIN_THREAT / 2 // Blockable but still valuable
		}
		return SCORE_CREATE_WIN_THREAT / 4 // Easily blockable
	}

	return 0
}

// Helper: check if there's room to extend a line
func checkSpaceForExtension(board *domain.Board, row, col, dRow, dCol, posCount, negCount int) bool {
	posRow := row + dRow*(posCount+1)
	posCol := col + dCol*(posCount+1)
	if domain.InBounds(posRow, posCol) && board[posRow][posCol] == domain.Empty && isPlayableSpace(board, posRow, posCol) {
		return true
	}

	negRow := row - dRow*(negCount+1)
	negCol := col - dCol*(negCount+1)
	if domain.InBounds(negRow, negCol) && board[negRow][negCol] == domain.Empty && isPlayableSpace(board, negRow, negCol) {
		return true
	}

	return false
}

// Check if a space is actually playable (respects gravity)
func isPlayableSpace(board *domain.Board, row, col int) bool {
	if row == 0 {
		return true
	}
	return board[row-1][col] != domain.Empty
}
