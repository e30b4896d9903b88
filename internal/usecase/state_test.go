package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid/ultimatoe-backend/internal/entity"
	"github.com/metagrid/ultimatoe-backend/internal/game"
)

func TestDeriveState_Classic(t *testing.T) {
	t.Run("Ongoing game reports the turn", func(t *testing.T) {
		room, err := entity.NewRoom("A0A0A", entity.ClassicMode, 3, 3)
		require.NoError(t, err)
		room.Grid.Cells[0][0] = game.SymbolX

		state := DeriveState(room)

		assert.Equal(t, game.SymbolO, state.Turn)
		assert.Empty(t, state.Winner)
		assert.False(t, state.Draw)
	})

	t.Run("Won game reports the winner and its cell line", func(t *testing.T) {
		room, err := entity.NewRoom("A0A0A", entity.ClassicMode, 3, 3)
		require.NoError(t, err)
		room.Grid.Cells = game.Grid{
			{game.SymbolX, game.SymbolX, game.SymbolX},
			{game.SymbolO, game.SymbolO, game.EmptyCell},
			{game.EmptyCell, game.EmptyCell, game.EmptyCell},
		}

		state := DeriveState(room)

		assert.Equal(t, game.SymbolX, state.Winner)
		require.NotNil(t, state.WinLine)
		assert.Equal(t, game.LineCells, state.WinLine.Kind)
		assert.Empty(t, state.Turn)
	})

	t.Run("Full grid without a winner is a draw", func(t *testing.T) {
		room, err := entity.NewRoom("A0A0A", entity.ClassicMode, 3, 3)
		require.NoError(t, err)
		room.Grid.Cells = game.Grid{
			{game.SymbolX, game.SymbolO, game.SymbolX},
			{game.SymbolO, game.SymbolX, game.SymbolO},
			{game.SymbolO, game.SymbolX, game.SymbolO},
		}

		state := DeriveState(room)

		assert.True(t, state.Draw)
		assert.Empty(t, state.Winner)
		assert.Empty(t, state.Turn)
	})
}

func TestDeriveState_Ultimate(t *testing.T) {
	t.Run("Last move pins the target board", func(t *testing.T) {
		room, err := entity.NewRoom("A0A0A", entity.UltimateMode, 0, 0)
		require.NoError(t, err)
		room.Grid.Cells[0][0] = game.SymbolX
		room.LastMove = &entity.Move{Row: 0, Col: 0}

		state := DeriveState(room)

		require.NotNil(t, state.TargetBoard)
		assert.Equal(t, 0, *state.TargetBoard)
		assert.Equal(t, game.SymbolO, state.Turn)
		assert.Len(t, state.LocalWinners, game.SubBoardCount)
	})

	t.Run("Resolved target board lifts the restriction", func(t *testing.T) {
		room, err := entity.NewRoom("A0A0A", entity.UltimateMode, 0, 0)
		require.NoError(t, err)
		// sub-board 0 already won by O
		for c := 0; c < 3; c++ {
			room.Grid.Cells[0][c] = game.SymbolO
		}
		// last move points back at sub-board 0
		room.Grid.Cells[3][3] = game.SymbolX
		room.LastMove = &entity.Move{Row: 3, Col: 3}

		state := DeriveState(room)

		assert.Nil(t, state.TargetBoard)
	})

	t.Run("Meta win reports a boards line", func(t *testing.T) {
		room, err := entity.NewRoom("A0A0A", entity.UltimateMode, 0, 0)
		require.NoError(t, err)
		// X wins sub-boards 0, 1 and 2 across their top rows
		for board := 0; board < 3; board++ {
			for c := 0; c < 3; c++ {
				room.Grid.Cells[0][board*3+c] = game.SymbolX
			}
		}

		state := DeriveState(room)

		assert.Equal(t, game.SymbolX, state.Winner)
		require.NotNil(t, state.WinLine)
		assert.Equal(t, game.LineBoards, state.WinLine.Kind)
		assert.Equal(t, []int{0, 1, 2}, state.WinLine.Boards)
		assert.Empty(t, state.Turn)
	})
}
