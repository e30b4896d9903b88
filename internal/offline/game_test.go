package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/game"
)

func TestNewClassic(t *testing.T) {
	t.Run("Validates dimensions like the room path", func(t *testing.T) {
		_, err := NewClassic(12, 3)
		require.ErrorIs(t, err, apperror.ErrInvalidRoomConfig)

		_, err = NewClassic(4, 5)
		require.ErrorIs(t, err, apperror.ErrInvalidRoomConfig)
	})
}

func TestGame_ApplyMove(t *testing.T) {
	t.Run("Alternates the current symbol after every accepted move", func(t *testing.T) {
		g, err := NewClassic(3, 3)
		require.NoError(t, err)

		require.NoError(t, g.ApplyMove(0, 0))
		assert.Equal(t, game.SymbolO, g.CurrentSymbol)

		require.NoError(t, g.ApplyMove(1, 1))
		assert.Equal(t, game.SymbolX, g.CurrentSymbol)
	})

	t.Run("Rejected move leaves the turn unchanged", func(t *testing.T) {
		g, err := NewClassic(3, 3)
		require.NoError(t, err)

		require.NoError(t, g.ApplyMove(0, 0))

		err = g.ApplyMove(0, 0)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, game.SymbolO, g.CurrentSymbol)

		err = g.ApplyMove(0, 9)
		require.ErrorIs(t, err, apperror.ErrOutOfBounds)
	})

	t.Run("Detects a win and stops play", func(t *testing.T) {
		g, err := NewClassic(3, 3)
		require.NoError(t, err)

		// X: top row, O: middle row
		moves := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}}
		for _, m := range moves {
			require.NoError(t, g.ApplyMove(m[0], m[1]))
		}

		assert.Equal(t, game.SymbolX, g.Winner)
		require.NotNil(t, g.WinLine)
		assert.Equal(t, game.LineCells, g.WinLine.Kind)
		assert.True(t, g.Finished())

		err = g.ApplyMove(2, 2)
		require.ErrorIs(t, err, apperror.ErrMatchDecided)
	})

	t.Run("Ultimate enforces the target board synchronously", func(t *testing.T) {
		g := NewUltimate()

		// X plays global (0,0), local (0,0) → O is sent to sub-board 0
		require.NoError(t, g.ApplyMove(0, 0))
		assert.Equal(t, 0, g.TargetBoard)

		err := g.ApplyMove(8, 8)
		require.ErrorIs(t, err, apperror.ErrWrongBoard)

		require.NoError(t, g.ApplyMove(1, 1))
	})
}

func TestGame_Restart(t *testing.T) {
	t.Run("Recreates an empty grid and clears derived state", func(t *testing.T) {
		g, err := NewClassic(4, 3)
		require.NoError(t, err)

		require.NoError(t, g.ApplyMove(0, 0))
		require.NoError(t, g.ApplyMove(1, 1))

		// When: restarting
		g.Restart()

		// Then: same dimensions, clean state, X to move
		assert.Equal(t, 4, g.Grid.Size())
		assert.Equal(t, 0, g.Grid.MoveCount())
		assert.Equal(t, game.SymbolX, g.CurrentSymbol)
		assert.Empty(t, g.Winner)
		assert.Nil(t, g.WinLine)
		assert.False(t, g.Draw)
		assert.Equal(t, game.AnyBoard, g.TargetBoard)
	})
}
