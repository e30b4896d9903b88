package usecase

import (
	"github.com/metagrid/ultimatoe-backend/internal/entity"
	"github.com/metagrid/ultimatoe-backend/internal/game"
)

// RoomState is everything derived from the grid on each update: turn, match
// outcome and, for Ultimate, the target-board restriction and sub-board
// winners. Nothing here is stored; clients recompute it from every snapshot.
type RoomState struct {
	Turn         string        `json:"turn,omitempty"`
	Winner       string        `json:"winner,omitempty"`
	WinLine      *game.WinLine `json:"win_line,omitempty"`
	Draw         bool          `json:"draw"`
	TargetBoard  *int          `json:"target_board,omitempty"`
	LocalWinners []string      `json:"local_winners,omitempty"`
}

// DeriveState re-runs the rules engine over the room's grid.
func DeriveState(room *entity.Room) *RoomState {
	if room.IsUltimate() {
		return deriveUltimateState(room)
	}

	return deriveClassicState(room)
}

func deriveClassicState(room *entity.Room) *RoomState {
	grid := room.Grid.Cells
	state := &RoomState{}

	winner, line := game.CheckWin(grid, room.EffectiveWinLength())
	if winner != game.EmptyCell {
		state.Winner = winner
		state.WinLine = line
		return state
	}

	if game.CheckDraw(grid) {
		state.Draw = true
		return state
	}

	state.Turn = game.CurrentPlayer(grid)

	return state
}

func deriveUltimateState(room *entity.Room) *RoomState {
	grid := room.Grid.Cells
	winners := game.LocalWinners(grid)

	state := &RoomState{
		LocalWinners: winners[:],
	}

	winner, line := game.GlobalWinner(winners)
	if winner != game.EmptyCell {
		state.Winner = winner
		state.WinLine = line
		return state
	}

	if game.UltimateDraw(grid, winners) {
		state.Draw = true
		return state
	}

	state.Turn = game.CurrentPlayer(grid)

	if room.LastMove != nil {
		if target := game.TargetBoard(room.LastMove.Row, room.LastMove.Col, grid, winners); target != game.AnyBoard {
			state.TargetBoard = &target
		}
	}

	return state
}
