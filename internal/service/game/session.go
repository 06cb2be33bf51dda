package game

import (
	"sync"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
)

// Session is one human playing one strategy on one engine. All engine
// access goes through mu.
type Session struct {
	GameID     string
	Difficulty string
	BotName    string
	BotStarts  bool
	HumanPiece domain.Cell
	BotPiece   domain.Cell
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt time.Time

	engine   *domain.Engine
	strategy bot.Strategy
	now      func() time.Time
	mu       sync.Mutex
}

// TurnResult reports what one controller call did to the board.
// Human is nil for a reset; Opponent is nil when the strategy did not
// move or its move was rejected (see OpponentErr).
type TurnResult struct {
	Human          *domain.Placement
	Opponent       *domain.Placement
	OpponentColumn int
	OpponentErr    error
	State          domain.GameState
	Board          domain.Board
	MoveCount      int
}

// SessionView is a read-only copy of a session for transports.
type SessionView struct {
	GameID     string           `json:"gameId"`
	Difficulty string           `json:"difficulty"`
	BotName    string           `json:"botName"`
	BotStarts  bool             `json:"botStarts"`
	HumanPiece domain.Cell      `json:"humanPiece"`
	BotPiece   domain.Cell      `json:"botPiece"`
	Board      domain.Board     `json:"board"`
	State      domain.GameState `json:"state"`
	Outcome    string           `json:"outcome,omitempty"`
	MoveCount  int              `json:"moveCount"`
	NextTurn   domain.Cell      `json:"nextTurn,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

const (
	OutcomeHuman = "human"
	OutcomeBot   = "bot"
	OutcomeDraw  = "draw"
)

func newSession(gameID, difficulty string, botStarts bool, engine *domain.Engine, strategy bot.Strategy, now func() time.Time) *Session {
	human, botPiece := domain.PlayerA, domain.PlayerB
	if botStarts {
		human, botPiece = domain.PlayerB, domain.PlayerA
	}

	t := now()
	return &Session{
		GameID:     gameID,
		Difficulty: difficulty,
		BotName:    bot.GetBotName(difficulty),
		BotStarts:  botStarts,
		HumanPiece: human,
		BotPiece:   botPiece,
		CreatedAt:  t,
		UpdatedAt:  t,
		engine:     engine,
		strategy:   strategy,
		now:        now,
	}
}

// Play drops the human piece in column and, if the game goes on, lets
// the strategy answer.
func (s *Session) Play(column int) (TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked(column)
}

func (s *Session) playLocked(column int) (TurnResult, error) {
	human, err := s.engine.Place(column, s.HumanPiece)
	if err != nil {
		return TurnResult{}, err
	}

	result := TurnResult{Human: &human, OpponentColumn: -1}
	if human.Result == domain.ResultContinue {
		s.botTurnLocked(&result)
	}

	s.finishTurnLocked(&result)
	return result, nil
}

// botTurnLocked asks the strategy for a column and runs it through the
// engine. A rejected column is reported, not retried; the turn passes
// back to the human either way.
func (s *Session) botTurnLocked(result *TurnResult) {
	col := s.strategy.ChooseColumn(s.engine.Snapshot(), s.BotPiece)
	result.OpponentColumn = col

	placement, err := s.engine.Place(col, s.BotPiece)
	if err != nil {
		result.OpponentErr = err
		return
	}
	result.Opponent = &placement
}

func (s *Session) finishTurnLocked(result *TurnResult) {
	s.UpdatedAt = s.now()
	result.State = s.engine.CurrentState()
	result.Board = s.engine.Snapshot()
	result.MoveCount = s.engine.MoveCount()
	if result.State.IsTerminal() && s.FinishedAt.IsZero() {
		s.FinishedAt = s.UpdatedAt
	}
}

// Reset starts a new game on the same session. When the bot starts,
// its opening move is part of the result.
func (s *Session) Reset() TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetLocked()
}

func (s *Session) resetLocked() TurnResult {
	s.engine.Reset()
	s.FinishedAt = time.Time{}

	result := TurnResult{OpponentColumn: -1}
	if s.BotStarts {
		s.botTurnLocked(&result)
	}
	s.finishTurnLocked(&result)
	return result
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() SessionView {
	state := s.engine.CurrentState()
	view := SessionView{
		GameID:     s.GameID,
		Difficulty: s.Difficulty,
		BotName:    s.BotName,
		BotStarts:  s.BotStarts,
		HumanPiece: s.HumanPiece,
		BotPiece:   s.BotPiece,
		Board:      s.engine.Snapshot(),
		State:      state,
		Outcome:    s.outcome(state),
		MoveCount:  s.engine.MoveCount(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if !state.IsTerminal() {
		view.NextTurn = s.HumanPiece
	}
	return view
}

// outcome names the winner from the human's point of view; empty while in progress.
func (s *Session) outcome(state domain.GameState) string {
	switch {
	case state.Status == domain.StatusDraw:
		return OutcomeDraw
	case state.Status == domain.StatusWon && state.Winner == s.HumanPiece:
		return OutcomeHuman
	case state.Status == domain.StatusWon:
		return OutcomeBot
	}
	return ""
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.UpdatedAt)
}
