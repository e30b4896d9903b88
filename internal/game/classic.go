package game

const (
	SymbolX    = "X"
	SymbolO    = "O"
	SymbolNone = "none"

	EmptyCell = ""

	MinGridSize  = 3
	MaxGridSize  = 10
	MinWinLength = 3
)

// Grid is a square board of cell values: SymbolX, SymbolO or EmptyCell.
type Grid [][]string

// NewGrid returns an empty size×size grid.
func NewGrid(size int) Grid {
	grid := make(Grid, size)
	for i := range grid {
		grid[i] = make([]string, size)
	}

	return grid
}

func (that Grid) Size() int {
	return len(that)
}

// MoveCount counts occupied cells.
func (that Grid) MoveCount() int {
	count := 0
	for _, row := range that {
		for _, cell := range row {
			if cell != EmptyCell {
				count++
			}
		}
	}

	return count
}

// Clone returns a deep copy of the grid.
func (that Grid) Clone() Grid {
	clone := make(Grid, len(that))
	for i, row := range that {
		clone[i] = make([]string, len(row))
		copy(clone[i], row)
	}

	return clone
}

// LineKind discriminates the two winning-line representations: classic wins
// carry raw cell coordinates, Ultimate meta wins carry sub-board indices.
type LineKind string

const (
	LineCells  LineKind = "cells"
	LineBoards LineKind = "boards"
)

type WinLine struct {
	Kind   LineKind `json:"kind"`
	Cells  [][2]int `json:"cells,omitempty"`
	Boards []int    `json:"boards,omitempty"`
}

// CheckWin scans for winLength consecutive equal non-empty cells.
// Scan order: horizontal row-major, then vertical, then diagonal ↘,
// then diagonal ↙; the first run found wins the tie-break.
// Returns ("", nil) when no run exists.
func CheckWin(grid Grid, winLength int) (string, *WinLine) {
	size := grid.Size()

	// horizontal
	for row := 0; row < size; row++ {
		for col := 0; col+winLength <= size; col++ {
			if symbol, cells := runAt(grid, row, col, 0, 1, winLength); symbol != EmptyCell {
				return symbol, &WinLine{Kind: LineCells, Cells: cells}
			}
		}
	}

	// vertical
	for row := 0; row+winLength <= size; row++ {
		for col := 0; col < size; col++ {
			if symbol, cells := runAt(grid, row, col, 1, 0, winLength); symbol != EmptyCell {
				return symbol, &WinLine{Kind: LineCells, Cells: cells}
			}
		}
	}

	// diagonal ↘
	for row := 0; row+winLength <= size; row++ {
		for col := 0; col+winLength <= size; col++ {
			if symbol, cells := runAt(grid, row, col, 1, 1, winLength); symbol != EmptyCell {
				return symbol, &WinLine{Kind: LineCells, Cells: cells}
			}
		}
	}

	// diagonal ↙
	for row := 0; row+winLength <= size; row++ {
		for col := winLength - 1; col < size; col++ {
			if symbol, cells := runAt(grid, row, col, 1, -1, winLength); symbol != EmptyCell {
				return symbol, &WinLine{Kind: LineCells, Cells: cells}
			}
		}
	}

	return EmptyCell, nil
}

// runAt checks one window of winLength cells starting at (row,col) in
// direction (dRow,dCol). Bounds are guaranteed by the caller.
func runAt(grid Grid, row, col, dRow, dCol, winLength int) (string, [][2]int) {
	symbol := grid[row][col]
	if symbol == EmptyCell {
		return EmptyCell, nil
	}

	cells := make([][2]int, 0, winLength)
	for i := 0; i < winLength; i++ {
		r, c := row+i*dRow, col+i*dCol
		if grid[r][c] != symbol {
			return EmptyCell, nil
		}
		cells = append(cells, [2]int{r, c})
	}

	return symbol, cells
}

// CheckDraw reports whether every cell is occupied. Callers must exclude a
// winning state first.
func CheckDraw(grid Grid) bool {
	for _, row := range grid {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

// CurrentPlayer derives the turn from the parity of occupied cells:
// even count means X to move, odd means O. Strict alternation is an
// assumed invariant, not enforced here.
func CurrentPlayer(grid Grid) string {
	if grid.MoveCount()%2 == 0 {
		return SymbolX
	}

	return SymbolO
}

// IsValidMove reports whether (row,col) is in bounds and empty.
func IsValidMove(grid Grid, row, col int) bool {
	size := grid.Size()
	if row < 0 || row >= size || col < 0 || col >= size {
		return false
	}

	return grid[row][col] == EmptyCell
}
