package domain

// Cell is the occupant of a board position.
type Cell int

const (
	Empty   Cell = 0
	PlayerA Cell = 1
	PlayerB Cell = 2
)

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// Opponent returns the other player's piece. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	}
	return Empty
}

func (c Cell) IsPlayer() bool {
	return c == PlayerA || c == PlayerB
}

func (c Cell) String() string {
	switch c {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	}
	return "."
}

// to represent the game status
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// GameState is the engine's result state. Winner is only set when Status is StatusWon.
type GameState struct {
	Status Status `json:"status"`
	Winner Cell   `json:"winner,omitempty"`
}

func InProgress() GameState {
	return GameState{Status: StatusInProgress}
}

func WonBy(piece Cell) GameState {
	return GameState{Status: StatusWon, Winner: piece}
}

func Draw() GameState {
	return GameState{Status: StatusDraw}
}

func (s GameState) IsTerminal() bool {
	return s.Status == StatusWon || s.Status == StatusDraw
}

// Result is the outcome of a successful placement
type Result string

const (
	ResultContinue Result = "continue"
	ResultWin      Result = "win"
	ResultDraw     Result = "draw"
)

type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Placement describes one piece written by Engine.Place.
type Placement struct {
	Result      Result     `json:"result"`
	Piece       Cell       `json:"piece"`
	Row         int        `json:"row"`
	Column      int        `json:"column"`
	WinningLine []Position `json:"winningLine,omitempty"`
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidColumn Error = "invalid column"
	ErrColumnFull    Error = "column is full"
	ErrGameOver      Error = "game is over"
	ErrInvalidPiece  Error = "invalid piece"
	ErrInvalidBoard  Error = "invalid board"
)
