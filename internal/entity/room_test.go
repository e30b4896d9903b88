package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/game"
)

func TestStoredGrid_RoundTrip(t *testing.T) {
	t.Run("Serializing and parsing back yields an identical matrix", func(t *testing.T) {
		// Given: a grid with a few marks
		grid := game.NewGrid(3)
		grid[0][0] = game.SymbolX
		grid[1][2] = game.SymbolO
		stored := StoredGrid{Cells: grid}

		// When: round-tripping through the storage form
		data, err := json.Marshal(stored)
		require.NoError(t, err)

		var parsed StoredGrid
		require.NoError(t, json.Unmarshal(data, &parsed))

		// Then: the matrix is identical
		assert.Equal(t, stored.Cells, parsed.Cells)
	})

	t.Run("Wire shape is a single-element array holding the encoded matrix", func(t *testing.T) {
		// Given: an empty 3×3 grid
		stored := StoredGrid{Cells: game.NewGrid(3)}

		// When: marshaling
		data, err := json.Marshal(stored)
		require.NoError(t, err)

		// Then: the outer value is ["<json matrix>"]
		var column []string
		require.NoError(t, json.Unmarshal(data, &column))
		require.Len(t, column, 1)

		var matrix [][]string
		require.NoError(t, json.Unmarshal([]byte(column[0]), &matrix))
		assert.Len(t, matrix, 3)
	})

	t.Run("Rejects a column with more than one element", func(t *testing.T) {
		var parsed StoredGrid
		err := json.Unmarshal([]byte(`["[[]]","[[]]"]`), &parsed)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBadGridColumn)
	})
}

func TestNewRoom(t *testing.T) {
	t.Run("Classic room stores its dimensions", func(t *testing.T) {
		room, err := NewRoom("A1B2C", ClassicMode, 5, 4)

		require.NoError(t, err)
		require.NotNil(t, room.GridSize)
		require.NotNil(t, room.WinLength)
		assert.Equal(t, 5, *room.GridSize)
		assert.Equal(t, 4, *room.WinLength)
		assert.Equal(t, 5, room.Dimensions())
		assert.Equal(t, 4, room.EffectiveWinLength())
		assert.Len(t, room.Grid.Cells, 5)
	})

	t.Run("Ultimate room hardcodes 9×9 and nulls the dimensions", func(t *testing.T) {
		room, err := NewRoom("A1B2C", UltimateMode, 0, 0)

		require.NoError(t, err)
		assert.Nil(t, room.GridSize)
		assert.Nil(t, room.WinLength)
		assert.Equal(t, game.UltimateGridSize, room.Dimensions())
		assert.Equal(t, game.SubBoardSize, room.EffectiveWinLength())
		assert.Len(t, room.Grid.Cells, game.UltimateGridSize)
	})

	t.Run("Rejects win length above grid size", func(t *testing.T) {
		_, err := NewRoom("A1B2C", ClassicMode, 4, 5)

		require.ErrorIs(t, err, apperror.ErrInvalidRoomConfig)
	})

	t.Run("Rejects grid size outside 3..10", func(t *testing.T) {
		_, err := NewRoom("A1B2C", ClassicMode, 11, 3)
		require.ErrorIs(t, err, apperror.ErrInvalidRoomConfig)

		_, err = NewRoom("A1B2C", ClassicMode, 2, 3)
		require.ErrorIs(t, err, apperror.ErrInvalidRoomConfig)
	})

	t.Run("Rejects an unknown mode", func(t *testing.T) {
		_, err := NewRoom("A1B2C", "checkers", 3, 3)

		require.ErrorIs(t, err, ErrUnknownMode)
	})
}

func TestRoom_Reset(t *testing.T) {
	t.Run("Clears grid, votes and last move, keeps players and mode", func(t *testing.T) {
		// Given: a classic room mid-match
		room, err := NewRoom("A1B2C", ClassicMode, 3, 3)
		require.NoError(t, err)
		room.Players = []*Player{{Name: "ada", Status: StatusPlayer, Symbol: game.SymbolX, ClientID: "c1"}}
		room.Grid.Cells[0][0] = game.SymbolX
		room.RestartVotes[game.SymbolX] = true
		room.LastMove = &Move{Row: 0, Col: 0}

		// When: resetting
		room.Reset()

		// Then: match state clears, identity persists, match_id advances
		assert.Equal(t, game.EmptyCell, room.Grid.Cells[0][0])
		assert.Empty(t, room.RestartVotes)
		assert.Nil(t, room.LastMove)
		assert.Equal(t, 1, room.MatchID)
		assert.Len(t, room.Players, 1)
		assert.Equal(t, ClassicMode, room.Mode)
	})
}

func TestRoom_PlayerLookups(t *testing.T) {
	room := &Room{
		Players: []*Player{
			{Name: "ada", Status: StatusPlayer, Symbol: game.SymbolX, ClientID: "c1"},
			{Name: "bob", Status: StatusPlayer, Symbol: game.SymbolO, ClientID: "c2"},
			{Name: "eve", Status: StatusViewer, Symbol: game.SymbolNone, ClientID: "c3"},
		},
	}

	t.Run("PlayerByClientID finds the matching slot", func(t *testing.T) {
		player := room.PlayerByClientID("c2")

		require.NotNil(t, player)
		assert.Equal(t, "bob", player.Name)
	})

	t.Run("PlayerByClientID ignores an empty token", func(t *testing.T) {
		assert.Nil(t, room.PlayerByClientID(""))
	})

	t.Run("PlayerBySymbol skips viewers", func(t *testing.T) {
		assert.Nil(t, room.PlayerBySymbol(game.SymbolNone))
		require.NotNil(t, room.PlayerBySymbol(game.SymbolX))
	})

	t.Run("ActivePlayers excludes viewers", func(t *testing.T) {
		assert.Equal(t, 2, room.ActivePlayers())
	})
}

func TestRoom_JSONRoundTrip(t *testing.T) {
	t.Run("Full row survives a storage round trip", func(t *testing.T) {
		room, err := NewRoom("F00D5", UltimateMode, 0, 0)
		require.NoError(t, err)
		room.Players = []*Player{{Name: "ada", Status: StatusPlayer, Symbol: game.SymbolX, ClientID: "c1"}}
		room.Grid.Cells[4][4] = game.SymbolX
		room.LastMove = &Move{Row: 4, Col: 4}
		room.RestartVotes[game.SymbolX] = true

		data, err := json.Marshal(room)
		require.NoError(t, err)

		var parsed Room
		require.NoError(t, json.Unmarshal(data, &parsed))

		assert.Equal(t, room.Code, parsed.Code)
		assert.Equal(t, room.Mode, parsed.Mode)
		assert.Equal(t, room.Grid.Cells, parsed.Grid.Cells)
		assert.Equal(t, room.RestartVotes, parsed.RestartVotes)
		require.NotNil(t, parsed.LastMove)
		assert.Equal(t, 4, parsed.LastMove.Row)
		require.Len(t, parsed.Players, 1)
		assert.Equal(t, "c1", parsed.Players[0].ClientID)
	})
}
