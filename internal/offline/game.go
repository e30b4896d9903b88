package offline

import (
	"fmt"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/game"
)

// Game drives a single-device match: the same legality checks and state
// derivation as the room path, applied synchronously to an in-memory grid
// with no store round-trip and no player identity.
type Game struct {
	Mode          string
	Grid          game.Grid
	CurrentSymbol string
	Winner        string
	WinLine       *game.WinLine
	Draw          bool
	// TargetBoard is game.AnyBoard when the next move is unrestricted.
	TargetBoard  int
	LocalWinners [game.SubBoardCount]string

	gridSize  int
	winLength int
}

// NewClassic starts an offline classic match.
func NewClassic(gridSize, winLength int) (*Game, error) {
	if gridSize < game.MinGridSize || gridSize > game.MaxGridSize {
		return nil, fmt.Errorf("%w: grid size %d", apperror.ErrInvalidRoomConfig, gridSize)
	}
	if winLength < game.MinWinLength || winLength > gridSize {
		return nil, fmt.Errorf("%w: win length %d", apperror.ErrInvalidRoomConfig, winLength)
	}

	return &Game{
		Mode:          "classic",
		Grid:          game.NewGrid(gridSize),
		CurrentSymbol: game.SymbolX,
		TargetBoard:   game.AnyBoard,
		gridSize:      gridSize,
		winLength:     winLength,
	}, nil
}

// NewUltimate starts an offline Ultimate match on the fixed 9×9 board.
func NewUltimate() *Game {
	return &Game{
		Mode:          "ultimate",
		Grid:          game.NewGrid(game.UltimateGridSize),
		CurrentSymbol: game.SymbolX,
		TargetBoard:   game.AnyBoard,
		gridSize:      game.UltimateGridSize,
		winLength:     game.SubBoardSize,
	}
}

func (that *Game) IsUltimate() bool {
	return that.Mode == "ultimate"
}

func (that *Game) Finished() bool {
	return that.Winner != game.EmptyCell || that.Draw
}

// ApplyMove validates and applies a move for the current symbol, re-derives
// all state and alternates the turn.
func (that *Game) ApplyMove(row, col int) error {
	if that.Finished() {
		return apperror.ErrMatchDecided
	}

	if row < 0 || row >= that.gridSize || col < 0 || col >= that.gridSize {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrOutOfBounds, row, col)
	}

	if that.Grid[row][col] != game.EmptyCell {
		return apperror.ErrCellOccupied
	}

	if that.IsUltimate() && !game.IsValidUltimateMove(that.Grid, row, col, that.TargetBoard) {
		return fmt.Errorf("%w: target board %d", apperror.ErrWrongBoard, that.TargetBoard)
	}

	that.Grid[row][col] = that.CurrentSymbol
	that.derive(row, col)

	if !that.Finished() {
		that.CurrentSymbol = toggleSymbol(that.CurrentSymbol)
	}

	return nil
}

// Restart recreates an empty grid of the same dimensions and clears all
// derived state.
func (that *Game) Restart() {
	that.Grid = game.NewGrid(that.gridSize)
	that.CurrentSymbol = game.SymbolX
	that.Winner = game.EmptyCell
	that.WinLine = nil
	that.Draw = false
	that.TargetBoard = game.AnyBoard
	that.LocalWinners = [game.SubBoardCount]string{}
}

func (that *Game) derive(lastRow, lastCol int) {
	if !that.IsUltimate() {
		that.Winner, that.WinLine = game.CheckWin(that.Grid, that.winLength)
		if that.Winner == game.EmptyCell {
			that.Draw = game.CheckDraw(that.Grid)
		}
		return
	}

	that.LocalWinners = game.LocalWinners(that.Grid)
	that.Winner, that.WinLine = game.GlobalWinner(that.LocalWinners)

	if that.Winner == game.EmptyCell {
		that.Draw = game.UltimateDraw(that.Grid, that.LocalWinners)
	}

	if !that.Finished() {
		that.TargetBoard = game.TargetBoard(lastRow, lastCol, that.Grid, that.LocalWinners)
	}
}

func toggleSymbol(symbol string) string {
	if symbol == game.SymbolX {
		return game.SymbolO
	}

	return game.SymbolX
}
