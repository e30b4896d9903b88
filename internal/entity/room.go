package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/game"
	"github.com/metagrid/ultimatoe-backend/internal/pkg"
)

const (
	ClassicMode  = "classic"
	UltimateMode = "ultimate"

	// RoomCodeLength tracks the code generator so the two can't drift.
	RoomCodeLength = pkg.RoomCodeLength
)

var (
	ErrBadGridColumn = errors.New("grid column must be a single-element array")
	ErrUnknownMode   = errors.New("unknown game mode")
)

// StoredGrid wraps the board for persistence. The row stores the grid as a
// single-element JSON array holding the JSON-encoded matrix, a historical
// wire shape every consumer depends on.
type StoredGrid struct {
	Cells game.Grid
}

func (that StoredGrid) MarshalJSON() ([]byte, error) {
	inner, err := json.Marshal(that.Cells)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grid matrix: %w", err)
	}

	return json.Marshal([1]string{string(inner)})
}

func (that *StoredGrid) UnmarshalJSON(data []byte) error {
	var column []string
	if err := json.Unmarshal(data, &column); err != nil {
		return fmt.Errorf("failed to unmarshal grid column: %w", err)
	}

	if len(column) != 1 {
		return fmt.Errorf("%w: got %d elements", ErrBadGridColumn, len(column))
	}

	if err := json.Unmarshal([]byte(column[0]), &that.Cells); err != nil {
		return fmt.Errorf("failed to unmarshal grid matrix: %w", err)
	}

	return nil
}

// Move is the last applied move, kept so the authoritative writer can derive
// the Ultimate target board without a move log.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Room is the single shared row per active game.
type Room struct {
	Code         string          `json:"room_code"`
	Mode         string          `json:"mode"`
	GridSize     *int            `json:"grid_size"`
	WinLength    *int            `json:"win_length"`
	Players      []*Player       `json:"players"`
	Grid         StoredGrid      `json:"grid"`
	RestartVotes map[string]bool `json:"restart_votes"`
	MatchID      int             `json:"match_id"`
	LastMove     *Move           `json:"last_move,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewRoom builds a fresh room. Classic mode requires
// 3 ≤ winLength ≤ gridSize ≤ 10; Ultimate hardcodes a 9×9 board and ignores
// both parameters, storing them as null.
func NewRoom(code, mode string, gridSize, winLength int) (*Room, error) {
	room := &Room{
		Code:         code,
		Mode:         mode,
		Players:      []*Player{},
		RestartVotes: map[string]bool{},
	}

	switch mode {
	case ClassicMode:
		if gridSize < game.MinGridSize || gridSize > game.MaxGridSize {
			return nil, fmt.Errorf("%w: grid size %d", apperror.ErrInvalidRoomConfig, gridSize)
		}
		if winLength < game.MinWinLength || winLength > gridSize {
			return nil, fmt.Errorf("%w: win length %d on a %d×%d grid", apperror.ErrInvalidRoomConfig, winLength, gridSize, gridSize)
		}

		room.GridSize = &gridSize
		room.WinLength = &winLength
		room.Grid = StoredGrid{Cells: game.NewGrid(gridSize)}
	case UltimateMode:
		room.Grid = StoredGrid{Cells: game.NewGrid(game.UltimateGridSize)}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	return room, nil
}

func (that *Room) IsClassic() bool {
	return that.Mode == ClassicMode
}

func (that *Room) IsUltimate() bool {
	return that.Mode == UltimateMode
}

// Dimensions returns the side length of the room's board.
func (that *Room) Dimensions() int {
	if that.IsUltimate() {
		return game.UltimateGridSize
	}

	return *that.GridSize
}

// EffectiveWinLength returns the run length that decides the room's matches.
func (that *Room) EffectiveWinLength() int {
	if that.IsUltimate() {
		return game.SubBoardSize
	}

	return *that.WinLength
}

// PlayerByClientID re-associates a returning session with its slot.
func (that *Room) PlayerByClientID(clientID string) *Player {
	if clientID == "" {
		return nil
	}

	for _, player := range that.Players {
		if player.ClientID == clientID {
			return player
		}
	}

	return nil
}

func (that *Room) PlayerBySymbol(symbol string) *Player {
	for _, player := range that.Players {
		if player.Symbol == symbol && player.IsPlayer() {
			return player
		}
	}

	return nil
}

// ActivePlayers counts occupied player slots, excluding viewers.
func (that *Room) ActivePlayers() int {
	count := 0
	for _, player := range that.Players {
		if player.IsPlayer() {
			count++
		}
	}

	return count
}

// Reset clears the grid, votes and last move for a new match on the same
// board. Mode, dimensions and players persist.
func (that *Room) Reset() {
	that.Grid = StoredGrid{Cells: game.NewGrid(that.Dimensions())}
	that.RestartVotes = map[string]bool{}
	that.LastMove = nil
	that.MatchID++
}
