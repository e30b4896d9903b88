package apperror

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomExists        = errors.New("room code already taken")
	ErrCodeExhausted     = errors.New("could not allocate a unique room code")
	ErrInvalidRoomConfig = errors.New("invalid room configuration")

	ErrMatchDecided = errors.New("match is already decided")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrNotAPlayer   = errors.New("symbol does not belong to an active player")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrOutOfBounds  = errors.New("cell is out of bounds")
	ErrWrongBoard   = errors.New("move is outside the target board")
)
