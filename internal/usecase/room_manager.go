package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/entity"
	"github.com/metagrid/ultimatoe-backend/internal/game"
	"github.com/metagrid/ultimatoe-backend/internal/pkg"
	"github.com/metagrid/ultimatoe-backend/internal/repository"
)

const codeAttempts = 10

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	Exists(ctx context.Context, code string) (bool, error)
	UpdateTx(ctx context.Context, code string, apply func(*entity.Room) error) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
	Subscribe(ctx context.Context, code string) (<-chan *entity.Room, error)
}

// RoomManager serializes every room mutation through the store and is the
// single authority on move legality.
type RoomManager struct {
	logger *slog.Logger
	rooms  roomRepo
}

func NewRoomManager(logger *slog.Logger, rooms roomRepo) *RoomManager {
	return &RoomManager{
		logger: logger,
		rooms:  rooms,
	}
}

// CreateRoom allocates a unique 5-character code, retrying up to 10 times on
// collision, and seeds the room with its creator as X.
func (that *RoomManager) CreateRoom(ctx context.Context, mode, playerName string, gridSize, winLength int) (*entity.Room, *entity.Player, error) {
	log := that.logger.With("method", "CreateRoom")

	creator := &entity.Player{
		Name:     playerName,
		Status:   entity.StatusPlayer,
		Symbol:   game.SymbolX,
		ClientID: pkg.GenerateClientID(),
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := pkg.GenerateRoomCode()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		room, err := entity.NewRoom(code, mode, gridSize, winLength)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build room: %w", err)
		}

		room.Players = []*entity.Player{creator}

		err = that.rooms.Create(ctx, room)
		if errors.Is(err, apperror.ErrRoomExists) {
			log.Debug("room code collision, retrying", "code", code)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info("room created", "code", code, "mode", mode)

		return room, creator, nil
	}

	return nil, nil, apperror.ErrCodeExhausted
}

// JoinRoom attaches a session to a room. A returning client id re-claims its
// old slot; a fresh joiner becomes O only when exactly one active player
// holds X, otherwise it joins as a viewer.
func (that *RoomManager) JoinRoom(ctx context.Context, code, playerName, clientID string) (*entity.Room, *entity.Player, error) {
	var joined *entity.Player

	room, err := that.rooms.UpdateTx(ctx, code, func(room *entity.Room) error {
		if existing := room.PlayerByClientID(clientID); existing != nil {
			joined = existing
			return repository.ErrNoChange
		}

		newcomer := &entity.Player{
			Name:     playerName,
			Status:   entity.StatusViewer,
			Symbol:   game.SymbolNone,
			ClientID: clientID,
		}
		if newcomer.ClientID == "" {
			newcomer.ClientID = pkg.GenerateClientID()
		}

		if room.ActivePlayers() == 1 && room.PlayerBySymbol(game.SymbolX) != nil {
			newcomer.Status = entity.StatusPlayer
			newcomer.Symbol = game.SymbolO
		}

		room.Players = append(room.Players, newcomer)
		joined = newcomer

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to join room: %w", err)
	}

	return room, joined, nil
}

// MakeMove re-validates legality and turn ownership at the write point and
// applies the move inside an optimistic transaction, so two near-simultaneous
// moves can never both land.
func (that *RoomManager) MakeMove(ctx context.Context, code string, row, col int, symbol string) (*entity.Room, error) {
	room, err := that.rooms.UpdateTx(ctx, code, func(room *entity.Room) error {
		if err := validateMove(room, row, col, symbol); err != nil {
			return err
		}

		room.Grid.Cells[row][col] = symbol
		room.LastMove = &entity.Move{Row: row, Col: col}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	return room, nil
}

func validateMove(room *entity.Room, row, col int, symbol string) error {
	if symbol != game.SymbolX && symbol != game.SymbolO {
		return fmt.Errorf("%w: %q", apperror.ErrNotAPlayer, symbol)
	}

	grid := room.Grid.Cells

	state := DeriveState(room)
	if state.Winner != game.EmptyCell || state.Draw {
		return apperror.ErrMatchDecided
	}

	if game.CurrentPlayer(grid) != symbol {
		return apperror.ErrNotYourTurn
	}

	size := grid.Size()
	if row < 0 || row >= size || col < 0 || col >= size {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrOutOfBounds, row, col)
	}

	if grid[row][col] != game.EmptyCell {
		return apperror.ErrCellOccupied
	}

	if room.IsUltimate() && room.LastMove != nil {
		winners := game.LocalWinners(grid)
		target := game.TargetBoard(room.LastMove.Row, room.LastMove.Col, grid, winners)
		if !game.IsValidUltimateMove(grid, row, col, target) {
			return fmt.Errorf("%w: target board %d", apperror.ErrWrongBoard, target)
		}
	}

	return nil
}

// SetRestartVote merges one boolean into the vote map. When both X and O
// have voted the reset runs in the same transaction.
func (that *RoomManager) SetRestartVote(ctx context.Context, code, symbol string, vote bool) (*entity.Room, error) {
	room, err := that.rooms.UpdateTx(ctx, code, func(room *entity.Room) error {
		if symbol != game.SymbolX && symbol != game.SymbolO {
			return fmt.Errorf("%w: %q", apperror.ErrNotAPlayer, symbol)
		}

		if room.RestartVotes == nil {
			room.RestartVotes = map[string]bool{}
		}
		room.RestartVotes[symbol] = vote

		if room.RestartVotes[game.SymbolX] && room.RestartVotes[game.SymbolO] {
			room.Reset()
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set restart vote: %w", err)
	}

	return room, nil
}

// ResetGame starts a new match only if the caller still observes the current
// match generation. A stale observedMatchID resolves as a silent no-op, so
// concurrent restart requests increment the counter exactly once.
func (that *RoomManager) ResetGame(ctx context.Context, code string, observedMatchID int) (*entity.Room, error) {
	log := that.logger.With("method", "ResetGame", "code", code)

	room, err := that.rooms.UpdateTx(ctx, code, func(room *entity.Room) error {
		if room.MatchID != observedMatchID {
			log.Debug("stale restart ignored", "observed", observedMatchID, "current", room.MatchID)
			return repository.ErrNoChange
		}

		room.Reset()

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}

	return room, nil
}

func (that *RoomManager) GetRoom(ctx context.Context, code string) (*entity.Room, error) {
	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// CloseRoom deletes the row; subscribers receive the terminal nil event.
func (that *RoomManager) CloseRoom(ctx context.Context, code string) error {
	if err := that.rooms.DeleteByCode(ctx, code); err != nil {
		return fmt.Errorf("failed to close room: %w", err)
	}

	return nil
}

// Subscribe opens the room's change feed. Consumers re-derive game state
// from every delivered snapshot and treat nil as "room gone".
func (that *RoomManager) Subscribe(ctx context.Context, code string) (<-chan *entity.Room, error) {
	events, err := that.rooms.Subscribe(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	return events, nil
}
