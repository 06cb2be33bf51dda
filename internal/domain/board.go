package domain

import (
	"fmt"
	"strings"
)

// Board is the connect four grid. Row 0 is the bottom row, so pieces
// always settle towards lower row indexes.
//
// Board is a value type: assigning or returning it copies every cell.
type Board [Rows][Columns]Cell

func NewBoard() Board {
	return Board{}
}

func IsValidColumn(column int) bool {
	return column >= 0 && column < Columns
}

// CanDrop reports whether the top row of column is still empty.
// Out of range columns can never be dropped into.
func (b *Board) CanDrop(column int) bool {
	if !IsValidColumn(column) {
		return false
	}
	return b[Rows-1][column] == Empty
}

// NextOpenRow returns the lowest empty row in column, scanning from the bottom up.
func (b *Board) NextOpenRow(column int) (int, bool) {
	if !IsValidColumn(column) {
		return -1, false
	}
	for row := 0; row < Rows; row++ {
		if b[row][column] == Empty {
			return row, true
		}
	}
	return -1, false
}

// Drop writes piece into the lowest open row of column and returns that row.
func (b *Board) Drop(column int, piece Cell) (int, error) {
	if !IsValidColumn(column) {
		return -1, ErrInvalidColumn
	}
	row, ok := b.NextOpenRow(column)
	if !ok {
		return -1, ErrColumnFull
	}
	b[row][column] = piece
	return row, nil
}

func (b *Board) IsFull() bool {
	for c := 0; c < Columns; c++ {
		if b[Rows-1][c] == Empty {
			return false
		}
	}
	return true
}

func (b *Board) Count(piece Cell) int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if b[r][c] == piece {
				n++
			}
		}
	}
	return n
}

// ValidMoves lists every column that still accepts a piece, left to right.
func (b *Board) ValidMoves() []int {
	moves := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if b.CanDrop(col) {
			moves = append(moves, col)
		}
	}
	return moves
}

// SimulateMove drops piece on a copy of the board, leaving b untouched.
func (b Board) SimulateMove(column int, piece Cell) (Board, int, error) {
	row, err := b.Drop(column, piece)
	if err != nil {
		return b, -1, err
	}
	return b, row, nil
}

// CountDiskInDirection counts consecutive pieces starting one step away
// from (row, column) and walking by (deltaRow, deltaCol).
func (b *Board) CountDiskInDirection(row, column, deltaRow, deltaCol int, piece Cell) int {
	count := 0
	r, c := row+deltaRow, column+deltaCol
	for InBounds(r, c) && b[r][c] == piece {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}

func InBounds(row, column int) bool {
	return row >= 0 && row < Rows && column >= 0 && column < Columns
}

// Validate checks the gravity invariant and that every cell holds a known value.
func (b *Board) Validate() error {
	for c := 0; c < Columns; c++ {
		seenEmpty := false
		for r := 0; r < Rows; r++ {
			switch cell := b[r][c]; {
			case cell == Empty:
				seenEmpty = true
			case !cell.IsPlayer():
				return fmt.Errorf("%w: unknown cell %d at (%d,%d)", ErrInvalidBoard, cell, r, c)
			case seenEmpty:
				return fmt.Errorf("%w: floating piece at (%d,%d)", ErrInvalidBoard, r, c)
			}
		}
	}
	return nil
}

// Cells converts the board to plain ints for JSON payloads.
func (b *Board) Cells() [][]int {
	out := make([][]int, Rows)
	for r := range out {
		out[r] = make([]int, Columns)
		for c := range out[r] {
			out[r][c] = int(b[r][c])
		}
	}
	return out
}

// BoardFromCells is the inverse of Cells. The result is not validated.
func BoardFromCells(cells [][]int) (Board, error) {
	var b Board
	if len(cells) != Rows {
		return b, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidBoard, Rows, len(cells))
	}
	for r, row := range cells {
		if len(row) != Columns {
			return b, fmt.Errorf("%w: row %d has %d columns", ErrInvalidBoard, r, len(row))
		}
		for c, v := range row {
			b[r][c] = Cell(v)
		}
	}
	return b, nil
}

// String renders the board top row first, mostly for test failures.
func (b Board) String() string {
	var sb strings.Builder
	for r := Rows - 1; r >= 0; r-- {
		for c := 0; c < Columns; c++ {
			sb.WriteString(b[r][c].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
