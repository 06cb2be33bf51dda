package domain

// scan directions as (deltaRow, deltaCol): horizontal, vertical,
// ascending diagonal and descending diagonal
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{-1, 1},
}

// DidWin reports whether piece owns four consecutive cells anywhere on the board.
func (b *Board) DidWin(piece Cell) bool {
	return b.WinningLine(piece) != nil
}

// WinningLine returns the cells of a four in a row held by piece, or nil.
// Only start cells whose whole line stays on the grid are enumerated.
func (b *Board) WinningLine(piece Cell) []Position {
	if !piece.IsPlayer() {
		return nil
	}

	for _, d := range directions {
		dRow, dCol := d[0], d[1]

		rowFrom, rowTo := 0, Rows-1
		if dRow > 0 {
			rowTo = Rows - ToWin
		} else if dRow < 0 {
			rowFrom = ToWin - 1
		}
		colTo := Columns - 1
		if dCol > 0 {
			colTo = Columns - ToWin
		}

		for r := rowFrom; r <= rowTo; r++ {
			for c := 0; c <= colTo; c++ {
				if b.lineAt(r, c, dRow, dCol, piece) {
					line := make([]Position, ToWin)
					for i := range line {
						line[i] = Position{Row: r + dRow*i, Column: c + dCol*i}
					}
					return line
				}
			}
		}
	}

	return nil
}

func (b *Board) lineAt(row, column, dRow, dCol int, piece Cell) bool {
	for i := 0; i < ToWin; i++ {
		if b[row+dRow*i][column+dCol*i] != piece {
			return false
		}
	}
	return true
}

// CheckWinAt only looks at the lines passing through (row, column).
// This is what the search strategies call after every simulated drop.
func (b *Board) CheckWinAt(row, column int, piece Cell) bool {
	if !InBounds(row, column) || b[row][column] != piece {
		return false
	}
	for _, d := range directions {
		total := 1 +
			b.CountDiskInDirection(row, column, d[0], d[1], piece) +
			b.CountDiskInDirection(row, column, -d[0], -d[1], piece)
		if total >= ToWin {
			return true
		}
	}
	return false
}
