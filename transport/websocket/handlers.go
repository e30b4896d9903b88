package websocket

import (
	"context"
	"errors"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/entity"
	"github.com/metagrid/ultimatoe-backend/internal/usecase"
)

func (that *Server) handleCreateRoom(ctx context.Context, sess *session, payload *Payload) error {
	log := that.logger.With("method", "handleCreateRoom")

	if payload.PlayerName == "" {
		return that.sendError(sess, "room:create", "player name is required")
	}

	room, player, err := that.rooms.CreateRoom(ctx, payload.Mode, payload.PlayerName, payload.GridSize, payload.WinLength)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendError(sess, "room:create", userMessage(err))
	}

	return that.sendMessage(sess, "room:create", ResponsePayload{
		Room:   room,
		State:  usecase.DeriveState(room),
		Player: player,
	})
}

func (that *Server) handleJoinRoom(ctx context.Context, sess *session, payload *Payload) error {
	log := that.logger.With("method", "handleJoinRoom", "code", payload.RoomCode)

	if payload.RoomCode == "" {
		return that.sendError(sess, "room:join", "room code is required")
	}

	if payload.PlayerName == "" {
		return that.sendError(sess, "room:join", "player name is required")
	}

	room, player, err := that.rooms.JoinRoom(ctx, payload.RoomCode, payload.PlayerName, payload.ClientID)
	if err != nil {
		log.Error("failed to join room", "error", err)
		return that.sendError(sess, "room:join", userMessage(err))
	}

	return that.sendMessage(sess, "room:join", ResponsePayload{
		Room:   room,
		State:  usecase.DeriveState(room),
		Player: player,
	})
}

func (that *Server) handleMove(ctx context.Context, sess *session, payload *Payload) error {
	log := that.logger.With("method", "handleMove", "code", payload.RoomCode)

	room, err := that.rooms.MakeMove(ctx, payload.RoomCode, payload.Row, payload.Col, payload.Symbol)
	if err != nil {
		log.Error("failed to make move", "error", err)
		return that.sendError(sess, "room:move", userMessage(err))
	}

	return that.sendMessage(sess, "room:move", ResponsePayload{
		Room:  room,
		State: usecase.DeriveState(room),
	})
}

func (that *Server) handleRestartVote(ctx context.Context, sess *session, payload *Payload) error {
	log := that.logger.With("method", "handleRestartVote", "code", payload.RoomCode)

	room, err := that.rooms.SetRestartVote(ctx, payload.RoomCode, payload.Symbol, payload.Vote)
	if err != nil {
		log.Error("failed to set restart vote", "error", err)
		return that.sendError(sess, "room:vote", userMessage(err))
	}

	return that.sendMessage(sess, "room:vote", ResponsePayload{
		Room:  room,
		State: usecase.DeriveState(room),
	})
}

func (that *Server) handleReset(ctx context.Context, sess *session, payload *Payload) error {
	log := that.logger.With("method", "handleReset", "code", payload.RoomCode)

	room, err := that.rooms.ResetGame(ctx, payload.RoomCode, payload.MatchID)
	if err != nil {
		log.Error("failed to reset game", "error", err)
		return that.sendError(sess, "room:reset", userMessage(err))
	}

	return that.sendMessage(sess, "room:reset", ResponsePayload{
		Room:  room,
		State: usecase.DeriveState(room),
	})
}

// handleWatch attaches the connection to the room's feed. The current
// snapshot is pushed immediately, then every feed event as room:state, and
// the tombstone as room:closed.
func (that *Server) handleWatch(ctx context.Context, sess *session, payload *Payload) error {
	log := that.logger.With("method", "handleWatch", "code", payload.RoomCode)

	room, err := that.rooms.GetRoom(ctx, payload.RoomCode)
	if err != nil {
		log.Error("failed to get room", "error", err)
		return that.sendError(sess, "room:watch", userMessage(err))
	}

	watchCtx := sess.startWatch(ctx)

	events, err := that.rooms.Subscribe(watchCtx, payload.RoomCode)
	if err != nil {
		log.Error("failed to subscribe", "error", err)
		return that.sendError(sess, "room:watch", userMessage(err))
	}

	// the snapshot goes out before the pump starts so clients always see
	// the current state first
	if err = that.sendMessage(sess, "room:watch", ResponsePayload{
		Room:  room,
		State: usecase.DeriveState(room),
	}); err != nil {
		return err
	}

	go func() {
		for update := range events {
			if update == nil {
				if sendErr := that.sendMessage(sess, "room:closed", ResponsePayload{}); sendErr != nil {
					log.Error("failed to push room closed", "error", sendErr)
				}
				return
			}

			if sendErr := that.sendMessage(sess, "room:state", ResponsePayload{
				Room:  update,
				State: usecase.DeriveState(update),
			}); sendErr != nil {
				log.Error("failed to push room state", "error", sendErr)
				return
			}
		}
	}()

	return nil
}

// userMessage maps domain errors to the user-facing text; anything
// unexpected collapses to a generic failure the user can retry.
func userMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, apperror.ErrCodeExhausted):
		return "could not allocate a room code, try again"
	case errors.Is(err, apperror.ErrInvalidRoomConfig),
		errors.Is(err, entity.ErrUnknownMode):
		return "invalid room configuration"
	case errors.Is(err, apperror.ErrMatchDecided):
		return "match is already decided"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "it's not your turn"
	case errors.Is(err, apperror.ErrNotAPlayer):
		return "spectators cannot play"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "cell is already occupied"
	case errors.Is(err, apperror.ErrOutOfBounds):
		return "cell is out of bounds"
	case errors.Is(err, apperror.ErrWrongBoard):
		return "move must be played in the target board"
	default:
		return "request failed, try again"
	}
}
