package domain

import (
	"errors"
	"testing"
)

// alternating A/B column sequence that fills the board without a four in a row
var drawSequence = []int{
	5, 4, 5, 0, 6, 2, 4, 5, 5, 0, 4, 1, 1, 0, 4, 5, 6, 5, 3, 1, 1,
	2, 2, 6, 2, 6, 6, 3, 6, 2, 0, 3, 0, 3, 3, 4, 3, 1, 4, 2, 1, 0,
}

func mustPlace(t *testing.T, e *Engine, column int, piece Cell) Placement {
	t.Helper()
	p, err := e.Place(column, piece)
	if err != nil {
		t.Fatalf("place column %d for %v: %v", column, piece, err)
	}
	return p
}

func assertGravity(t *testing.T, b Board) {
	t.Helper()
	if err := b.Validate(); err != nil {
		t.Fatalf("gravity broken: %v\n%s", err, b)
	}
}

func TestNewEngineIsEmpty(t *testing.T) {
	e := NewEngine()
	if e.CurrentState() != InProgress() {
		t.Fatalf("expected in progress, got %+v", e.CurrentState())
	}
	if e.Snapshot() != (Board{}) {
		t.Fatal("new engine should have an empty board")
	}
}

func TestHorizontalWin(t *testing.T) {
	e := NewEngine()
	for c := 0; c < 3; c++ {
		if p := mustPlace(t, e, c, PlayerA); p.Result != ResultContinue {
			t.Fatalf("placement %d: expected continue, got %s", c, p.Result)
		}
	}
	p := mustPlace(t, e, 3, PlayerA)
	if p.Result != ResultWin {
		t.Fatalf("expected win, got %s", p.Result)
	}
	if !e.DidWin(PlayerA) || e.DidWin(PlayerB) {
		t.Fatal("only A should have won")
	}
	if e.CurrentState() != WonBy(PlayerA) {
		t.Fatalf("expected WonBy(A), got %+v", e.CurrentState())
	}
	if len(p.WinningLine) != ToWin {
		t.Fatalf("expected winning line, got %v", p.WinningLine)
	}
}

func TestVerticalWin(t *testing.T) {
	e := NewEngine()
	var p Placement
	for i := 0; i < 4; i++ {
		p = mustPlace(t, e, 5, PlayerB)
		if p.Row != i {
			t.Fatalf("piece %d landed on row %d", i, p.Row)
		}
	}
	if p.Result != ResultWin || e.CurrentState() != WonBy(PlayerB) {
		t.Fatalf("expected B to win, got %s %+v", p.Result, e.CurrentState())
	}
}

func TestAscendingDiagonalWin(t *testing.T) {
	// fillers from B lift A onto (0,0) (1,1) (2,2) (3,3)
	e := NewEngine()
	mustPlace(t, e, 0, PlayerA)
	mustPlace(t, e, 1, PlayerB)
	mustPlace(t, e, 1, PlayerA)
	mustPlace(t, e, 2, PlayerB)
	mustPlace(t, e, 2, PlayerB)
	mustPlace(t, e, 2, PlayerA)
	mustPlace(t, e, 3, PlayerB)
	mustPlace(t, e, 3, PlayerB)
	mustPlace(t, e, 3, PlayerB)
	p := mustPlace(t, e, 3, PlayerA)
	if p.Row != 3 || p.Result != ResultWin {
		t.Fatalf("expected win at row 3, got row %d %s\n%s", p.Row, p.Result, e.Snapshot())
	}
	if e.CurrentState() != WonBy(PlayerA) {
		t.Fatalf("expected WonBy(A), got %+v", e.CurrentState())
	}
}

func TestDrawThenGameOver(t *testing.T) {
	e := NewEngine()
	piece := PlayerA
	var last Placement
	for i, col := range drawSequence {
		last = mustPlace(t, e, col, piece)
		if i < len(drawSequence)-1 && last.Result != ResultContinue {
			t.Fatalf("move %d ended the game with %s\n%s", i, last.Result, e.Snapshot())
		}
		assertGravity(t, e.Snapshot())
		piece = piece.Opponent()
	}

	if last.Result != ResultDraw {
		t.Fatalf("expected draw on last move, got %s", last.Result)
	}
	if e.CurrentState() != Draw() {
		t.Fatalf("expected Draw, got %+v", e.CurrentState())
	}
	if e.MoveCount() != Rows*Columns {
		t.Fatalf("expected %d moves, got %d", Rows*Columns, e.MoveCount())
	}

	before := e.Snapshot()
	for c := 0; c < Columns; c++ {
		if _, err := e.Place(c, PlayerA); !errors.Is(err, ErrGameOver) {
			t.Fatalf("column %d: expected ErrGameOver, got %v", c, err)
		}
	}
	if e.Snapshot() != before {
		t.Fatal("board changed after game over")
	}
}

func TestColumnFullLeavesBoard(t *testing.T) {
	e := NewEngine()
	for i := 0; i < Rows; i++ {
		mustPlace(t, e, 0, Cell(1+i%2))
	}
	before := e.Snapshot()

	if _, err := e.Place(0, PlayerA); !errors.Is(err, ErrColumnFull) {
		t.Fatalf("expected ErrColumnFull, got %v", err)
	}
	if e.Snapshot() != before {
		t.Fatal("board changed on a rejected placement")
	}
	if e.MoveCount() != Rows {
		t.Fatalf("move count moved to %d", e.MoveCount())
	}
}

func TestInvalidInputs(t *testing.T) {
	e := NewEngine()
	if _, err := e.Place(-1, PlayerA); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
	if _, err := e.Place(Columns, PlayerA); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
	if _, err := e.Place(0, Empty); !errors.Is(err, ErrInvalidPiece) {
		t.Fatalf("expected ErrInvalidPiece, got %v", err)
	}
	if e.Snapshot() != (Board{}) {
		t.Fatal("rejected placements mutated the board")
	}
}

func TestGameOverAfterWin(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 4; i++ {
		mustPlace(t, e, 2, PlayerA)
	}
	before := e.Snapshot()
	if _, err := e.Place(4, PlayerB); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if e.Snapshot() != before {
		t.Fatal("board changed after win")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, 3, PlayerA)

	snap := e.Snapshot()
	snap[0][3] = PlayerB
	snap[1][3] = PlayerB

	if got := e.Snapshot(); got[0][3] != PlayerA || got[1][3] != Empty {
		t.Fatalf("snapshot edit leaked into engine:\n%s", got)
	}
}

func TestResetRestoresEmpty(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 4; i++ {
		mustPlace(t, e, 1, PlayerB)
	}
	e.Reset()

	if e.Snapshot() != (Board{}) {
		t.Fatal("reset should empty the board")
	}
	if e.CurrentState() != InProgress() || e.MoveCount() != 0 {
		t.Fatalf("reset state wrong: %+v moves=%d", e.CurrentState(), e.MoveCount())
	}
	if p := mustPlace(t, e, 1, PlayerA); p.Row != 0 {
		t.Fatalf("expected row 0 after reset, got %d", p.Row)
	}
}

func TestRestore(t *testing.T) {
	e := NewEngine()
	mustPlace(t, e, 3, PlayerA)
	mustPlace(t, e, 4, PlayerB)
	mustPlace(t, e, 3, PlayerA)

	restored, err := Restore(e.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if restored.Snapshot() != e.Snapshot() || restored.MoveCount() != 3 {
		t.Fatalf("restore lost data: moves=%d", restored.MoveCount())
	}
	if restored.CurrentState() != InProgress() {
		t.Fatalf("expected in progress, got %+v", restored.CurrentState())
	}

	won := NewEngine()
	for i := 0; i < 3; i++ {
		mustPlace(t, won, 0, PlayerA)
		mustPlace(t, won, 1, PlayerB)
	}
	mustPlace(t, won, 0, PlayerA)
	restored, err = Restore(won.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if restored.CurrentState() != WonBy(PlayerA) {
		t.Fatalf("expected WonBy(A), got %+v", restored.CurrentState())
	}
}

func TestRestoreRejectsImpossibleBoards(t *testing.T) {
	var gapped Board
	gapped[2][0] = PlayerA
	if _, err := Restore(gapped); !errors.Is(err, ErrInvalidBoard) {
		t.Fatalf("expected ErrInvalidBoard for gap, got %v", err)
	}

	var both Board
	for r := 0; r < 4; r++ {
		both[r][0] = PlayerA
		both[r][1] = PlayerB
	}
	if _, err := Restore(both); !errors.Is(err, ErrInvalidBoard) {
		t.Fatalf("expected ErrInvalidBoard for double win, got %v", err)
	}
}
