package domain

import "fmt"

// Engine owns one board and its game state. It does no locking: a single
// controller is expected to own it and call it from one goroutine at a time.
type Engine struct {
	board     Board
	state     GameState
	moveCount int
}

func NewEngine() *Engine {
	return &Engine{
		board: NewBoard(),
		state: InProgress(),
	}
}

// Restore rebuilds an engine from a board snapshot, deriving the state
// and move count from the pieces on it. Piece counts are not checked.
func Restore(board Board) (*Engine, error) {
	if err := board.Validate(); err != nil {
		return nil, err
	}

	aWon, bWon := board.DidWin(PlayerA), board.DidWin(PlayerB)
	state := InProgress()
	switch {
	case aWon && bWon:
		return nil, fmt.Errorf("%w: both players have four in a row", ErrInvalidBoard)
	case aWon:
		state = WonBy(PlayerA)
	case bWon:
		state = WonBy(PlayerB)
	case board.IsFull():
		state = Draw()
	}

	return &Engine{board: board, state: state, moveCount: board.Count(PlayerA) + board.Count(PlayerB)}, nil
}

func (e *Engine) CanDrop(column int) bool {
	return e.board.CanDrop(column)
}

func (e *Engine) NextOpenRow(column int) (int, bool) {
	return e.board.NextOpenRow(column)
}

func (e *Engine) DidWin(piece Cell) bool {
	return e.board.DidWin(piece)
}

// Place is the only way to change the board. On error nothing is mutated.
func (e *Engine) Place(column int, piece Cell) (Placement, error) {
	if e.state.IsTerminal() {
		return Placement{}, ErrGameOver
	}
	if !IsValidColumn(column) {
		return Placement{}, ErrInvalidColumn
	}
	if !piece.IsPlayer() {
		return Placement{}, ErrInvalidPiece
	}
	if !e.board.CanDrop(column) {
		return Placement{}, ErrColumnFull
	}

	row, err := e.board.Drop(column, piece)
	if err != nil {
		return Placement{}, err
	}
	e.moveCount++

	placement := Placement{Result: ResultContinue, Piece: piece, Row: row, Column: column}

	if line := e.board.WinningLine(piece); line != nil {
		e.state = WonBy(piece)
		placement.Result = ResultWin
		placement.WinningLine = line
		return placement, nil
	}

	if e.board.IsFull() {
		e.state = Draw()
		placement.Result = ResultDraw
	}

	return placement, nil
}

// Snapshot returns a copy of the board; changing it has no effect on the engine.
func (e *Engine) Snapshot() Board {
	return e.board
}

func (e *Engine) CurrentState() GameState {
	return e.state
}

func (e *Engine) MoveCount() int {
	return e.moveCount
}

func (e *Engine) Reset() {
	e.board = NewBoard()
	e.state = InProgress()
	e.moveCount = 0
}
