package domain

// ClientMessage is anything a websocket client sends us.
type ClientMessage struct {
	Type       string `json:"type"`
	Token      string `json:"token,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	BotStarts  bool   `json:"botStarts,omitempty"`
	Column     *int   `json:"column,omitempty"`
}

type ServerMessage struct {
	Type        string     `json:"type"`
	Message     string     `json:"message,omitempty"`
	GameID      string     `json:"gameId,omitempty"`
	Token       string     `json:"token,omitempty"`
	Opponent    string     `json:"opponent,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
	YourPiece   Cell       `json:"yourPiece,omitempty"`
	NextTurn    Cell       `json:"nextTurn,omitempty"`
	Column      *int       `json:"column,omitempty"`
	Row         *int       `json:"row,omitempty"`
	Piece       Cell       `json:"piece,omitempty"`
	Board       [][]int    `json:"board,omitempty"`
	State       *GameState `json:"state,omitempty"`
	Winner      string     `json:"winner,omitempty"`
	WinningLine []Position `json:"winningLine,omitempty"`
}
