package bot

import (
	"github.com/iamasit07/connect4-engine/internal/domain"
)

// MediumStrategy scores every legal column in phases and takes the best one.
// It is deterministic: ties go to the column nearest the centre.
type MediumStrategy struct{}

func NewMediumStrategy() *MediumStrategy {
	return &MediumStrategy{}
}

type simulation struct {
	board domain.Board
	row   int
}

func (s *MediumStrategy) ChooseColumn(board domain.Board, botPlayer domain.Cell) int {
	validColumns := board.ValidMoves()
	if len(validColumns) == 0 {
		return -1
	}

	scores := make(map[int]int, len(validColumns))
	opponent := getOpponent(botPlayer)

	botSimulations := make(map[int]simulation, len(validColumns))
	oppSimulations := make(map[int]simulation, len(validColumns))
	for _, col := range validColumns {
		scores[col] = 0
		botBoard, botRow, _ := board.SimulateMove(col, botPlayer)
		botSimulations[col] = simulation{botBoard, botRow}
		oppBoard, oppRow, _ := board.SimulateMove(col, opponent)
		oppSimulations[col] = simulation{oppBoard, oppRow}
	}

	// immediate wins
	for _, col := range validColumns {
		sim := botSimulations[col]
		if sim.board.CheckWinAt(sim.row, col, botPlayer) {
			scores[col] += SCORE_WIN_NOW
		}
	}

	// block opponent's immediate wins
	for _, col := range validColumns {
		sim := oppSimulations[col]
		if sim.board.CheckWinAt(sim.row, col, opponent) {
			scores[col] += SCORE_BLOCK_WIN
		}
	}

	// create winning threats
	for _, col := range validColumns {
		scores[col] += evaluateWinningThreat(botSimulations[col].board, botPlayer, opponent)
	}

	// reduce opponent's winning threats
	currentOpponentThreat := evaluateWinningThreat(board, opponent, botPlayer)
	for _, col := range validColumns {
		if evaluateWinningThreat(botSimulations[col].board, opponent, botPlayer) < currentOpponentThreat {
			scores[col] += SCORE_BLOCK_WIN_THREAT
		}
	}

	// don't hand the opponent a win on top of our piece
	for _, col := range validColumns {
		sim := botSimulations[col]
		if findWinningMove(sim.board, opponent) != -1 {
			scores[col] -= SCORE_BLOCK_WIN
		}
	}

	// line potential, own lines count double
	for _, col := range validColumns {
		botSim := botSimulations[col]
		scores[col] += evaluateThreats(&botSim.board, botSim.row, col, botPlayer)

		oppSim := oppSimulations[col]
		scores[col] += evaluateThreats(&oppSim.board, oppSim.row, col, opponent) / 2
	}

	// centre preference
	center := domain.Columns / 2
	for _, col := range validColumns {
		switch abs(col - center) {
		case 0:
			scores[col] += SCORE_CENTER
		case 1:
			scores[col] += SCORE_NEAR_CENTER
		case 2:
			scores[col] += SCORE_EDGE
		}
	}

	return findBestColumn(scores)
}

// Find the column with the highest score
func findBestColumn(scores map[int]int) int {
	center := domain.Columns / 2
	bestColumn := -1
	maxScore := 0

	for col := 0; col < domain.Columns; col++ {
		score, exists := scores[col]
		if !exists {
			continue
		}

		if bestColumn == -1 || score > maxScore {
			maxScore = score
			bestColumn = col
		} else if score == maxScore && abs(col-center) < abs(bestColumn-center) {
			bestColumn = col
		}
	}

	return bestColumn
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
