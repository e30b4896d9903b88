package game

// Ultimate mode plays on a fixed 9×9 grid partitioned into nine 3×3
// sub-boards. Each sub-board is an independent classic game; sub-board
// winners feed a 3×3 meta game. Everything here is built from the classic
// engine applied to extracted sub-boards.

const (
	UltimateGridSize = 9
	SubBoardSize     = 3
	SubBoardCount    = 9

	// AnyBoard marks the absence of a target-board restriction.
	AnyBoard = -1
)

// LocalBoardIndex returns the sub-board (0..8, row-major) containing a
// global cell.
func LocalBoardIndex(row, col int) int {
	return row/SubBoardSize*SubBoardSize + col/SubBoardSize
}

// LocalCellCoords maps a global cell to its coordinates within its sub-board.
func LocalCellCoords(row, col int) (int, int) {
	return row % SubBoardSize, col % SubBoardSize
}

// LocalBoard extracts the 3×3 sub-board at boardIndex.
func LocalBoard(grid Grid, boardIndex int) Grid {
	baseRow := boardIndex / SubBoardSize * SubBoardSize
	baseCol := boardIndex % SubBoardSize * SubBoardSize

	board := NewGrid(SubBoardSize)
	for r := 0; r < SubBoardSize; r++ {
		for c := 0; c < SubBoardSize; c++ {
			board[r][c] = grid[baseRow+r][baseCol+c]
		}
	}

	return board
}

func IsLocalBoardFull(grid Grid, boardIndex int) bool {
	return CheckDraw(LocalBoard(grid, boardIndex))
}

// LocalWinner returns the winner of one sub-board, or EmptyCell.
func LocalWinner(grid Grid, boardIndex int) string {
	winner, _ := CheckWin(LocalBoard(grid, boardIndex), SubBoardSize)
	return winner
}

// LocalWinners returns the winner of every sub-board, index order 0..8.
func LocalWinners(grid Grid) [SubBoardCount]string {
	var winners [SubBoardCount]string
	for i := 0; i < SubBoardCount; i++ {
		winners[i] = LocalWinner(grid, i)
	}

	return winners
}

// GlobalWinner treats the nine local winners as a 3×3 meta-grid and runs the
// classic win check on it. The returned line carries sub-board indices, not
// raw cell coordinates.
func GlobalWinner(localWinners [SubBoardCount]string) (string, *WinLine) {
	meta := NewGrid(SubBoardSize)
	for i, winner := range localWinners {
		meta[i/SubBoardSize][i%SubBoardSize] = winner
	}

	winner, line := CheckWin(meta, SubBoardSize)
	if winner == EmptyCell {
		return EmptyCell, nil
	}

	boards := make([]int, 0, len(line.Cells))
	for _, cell := range line.Cells {
		boards = append(boards, cell[0]*SubBoardSize+cell[1])
	}

	return winner, &WinLine{Kind: LineBoards, Boards: boards}
}

// TargetBoard derives the sub-board the next mover is constrained to from
// the local coordinates of the last move. When that sub-board is already won
// or full it returns AnyBoard; the weaker "any open sub-board" constraint is
// enforced at move-validation time.
func TargetBoard(lastMoveRow, lastMoveCol int, grid Grid, localWinners [SubBoardCount]string) int {
	localRow, localCol := LocalCellCoords(lastMoveRow, lastMoveCol)
	target := localRow*SubBoardSize + localCol

	if localWinners[target] != EmptyCell || IsLocalBoardFull(grid, target) {
		return AnyBoard
	}

	return target
}

// IsValidUltimateMove reports whether a move is legal given the target-board
// restriction. With targetBoard == AnyBoard any empty cell qualifies.
func IsValidUltimateMove(grid Grid, row, col, targetBoard int) bool {
	if !IsValidMove(grid, row, col) {
		return false
	}

	if targetBoard == AnyBoard {
		return true
	}

	return LocalBoardIndex(row, col) == targetBoard
}

// UltimateDraw reports a drawn game: no global winner and every sub-board
// resolved, either won or full. Residual empty cells inside a won sub-board
// do not delay the declaration.
func UltimateDraw(grid Grid, localWinners [SubBoardCount]string) bool {
	if winner, _ := GlobalWinner(localWinners); winner != EmptyCell {
		return false
	}

	for i := 0; i < SubBoardCount; i++ {
		if localWinners[i] == EmptyCell && !IsLocalBoardFull(grid, i) {
			return false
		}
	}

	return true
}
