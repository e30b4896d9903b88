package websocket

import (
	"encoding/json"

	"github.com/metagrid/ultimatoe-backend/internal/entity"
	"github.com/metagrid/ultimatoe-backend/internal/usecase"
)

// Message is the envelope for every client/server exchange.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries request fields; which ones matter depends on the action.
type Payload struct {
	RoomCode   string `json:"room_code,omitempty"`
	Mode       string `json:"mode,omitempty"`
	GridSize   int    `json:"grid_size,omitempty"`
	WinLength  int    `json:"win_length,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	ClientID   string `json:"client_id,omitempty"`
	Symbol     string `json:"symbol,omitempty"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Vote       bool   `json:"vote,omitempty"`
	MatchID    int    `json:"match_id,omitempty"`
}

// ResponsePayload carries the room snapshot plus the state derived from it.
type ResponsePayload struct {
	Room   *entity.Room       `json:"room,omitempty"`
	State  *usecase.RoomState `json:"state,omitempty"`
	Player *entity.Player     `json:"player,omitempty"`
	Error  string             `json:"error,omitempty"`
}
