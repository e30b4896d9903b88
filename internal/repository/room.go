package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/entity"
)

// ErrNoChange aborts an UpdateTx closure without writing: the caller gets
// the room as currently stored and no feed event is published. Stale restart
// requests resolve through this path.
var ErrNoChange = errors.New("no change to apply")

var ErrTxRetriesExceeded = errors.New("transaction retries exceeded")

// tombstone is published on the room feed when the row is deleted.
const tombstone = "null"

const maxTxRetries = 5

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	Exists(ctx context.Context, code string) (bool, error)
	UpdateTx(ctx context.Context, code string, apply func(*entity.Room) error) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
	Subscribe(ctx context.Context, code string) (<-chan *entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func roomKey(code string) string {
	return "room:" + code
}

func feedKey(code string) string {
	return "room:" + code + ":feed"
}

// Create inserts a new row with SETNX so a code collision is detected
// atomically, and announces the room on its feed.
func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	created, err := that.client.SetNX(ctx, roomKey(room.Code), roomJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	if !created {
		return apperror.ErrRoomExists
	}

	if err = that.client.Publish(ctx, feedKey(room.Code), roomJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish room insert: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByCode(ctx context.Context, code string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(code)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

func (that *dbRoom) Exists(ctx context.Context, code string) (bool, error) {
	count, err := that.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check room existence: %w", err)
	}

	return count > 0, nil
}

// UpdateTx runs a read-modify-write cycle under WATCH, retrying when another
// writer touches the row between read and write. Every committed write is
// published to the room feed in the same transaction.
func (that *dbRoom) UpdateTx(ctx context.Context, code string, apply func(*entity.Room) error) (*entity.Room, error) {
	key := roomKey(code)

	var result *entity.Room

	txf := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get room by code: %w", err)
		}

		var room entity.Room
		if err = json.Unmarshal([]byte(response), &room); err != nil {
			return fmt.Errorf("failed to unmarshal room: %w", err)
		}

		if err = apply(&room); err != nil {
			if errors.Is(err, ErrNoChange) {
				result = &room
				return nil
			}
			return err
		}

		room.UpdatedAt = time.Now().UTC()

		roomJSON, err := json.Marshal(&room)
		if err != nil {
			return fmt.Errorf("could not marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, roomJSON, 0)
			pipe.Publish(ctx, feedKey(code), roomJSON)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to commit room update: %w", err)
		}

		result = &room

		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := that.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return nil, err
	}

	return nil, ErrTxRetriesExceeded
}

// DeleteByCode removes the row and publishes the tombstone so subscribers
// observe the room as gone.
func (that *dbRoom) DeleteByCode(ctx context.Context, code string) error {
	if err := that.client.Del(ctx, roomKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete room by code: %w", err)
	}

	if err := that.client.Publish(ctx, feedKey(code), tombstone).Err(); err != nil {
		return fmt.Errorf("failed to publish room delete: %w", err)
	}

	return nil
}

// Subscribe opens the change feed for one room. Every insert/update delivers
// the deserialized row; a delete delivers nil and closes the channel. The
// channel also closes when ctx ends. No buffering or replay is performed:
// consumers take the latest snapshot as truth.
func (that *dbRoom) Subscribe(ctx context.Context, code string) (<-chan *entity.Room, error) {
	sub := that.client.Subscribe(ctx, feedKey(code))

	// confirm the subscription before handing the channel out
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to room feed: %w", err)
	}

	events := make(chan *entity.Room, 8)

	go func() {
		defer close(events)
		defer func() { _ = sub.Close() }()

		feed := sub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-feed:
				if !ok {
					return
				}

				if msg.Payload == tombstone {
					select {
					case events <- nil:
					case <-ctx.Done():
					}
					return
				}

				var room entity.Room
				if err := json.Unmarshal([]byte(msg.Payload), &room); err != nil {
					continue
				}

				select {
				case events <- &room:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
