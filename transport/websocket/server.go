package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/metagrid/ultimatoe-backend/internal/entity"
)

type roomManager interface {
	CreateRoom(ctx context.Context, mode, playerName string, gridSize, winLength int) (*entity.Room, *entity.Player, error)
	JoinRoom(ctx context.Context, code, playerName, clientID string) (*entity.Room, *entity.Player, error)
	MakeMove(ctx context.Context, code string, row, col int, symbol string) (*entity.Room, error)
	SetRestartVote(ctx context.Context, code, symbol string, vote bool) (*entity.Room, error)
	ResetGame(ctx context.Context, code string, observedMatchID int) (*entity.Room, error)
	GetRoom(ctx context.Context, code string) (*entity.Room, error)
	Subscribe(ctx context.Context, code string) (<-chan *entity.Room, error)
}

type Server struct {
	logger   *slog.Logger
	rooms    roomManager
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, sess *session, payload *Payload) error
}

// session is one connected client. The write mutex serializes pushes from
// the watch goroutine with handler responses; gorilla allows one concurrent
// writer per connection.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *session, *Payload) error),
	}

	server.handlers["room:create"] = server.handleCreateRoom
	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["room:move"] = server.handleMove
	server.handlers["room:vote"] = server.handleRestartVote
	server.handlers["room:reset"] = server.handleReset
	server.handlers["room:watch"] = server.handleWatch

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  0, // connections are long-lived
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  0,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	sess := &session{conn: conn}

	defer func() {
		sess.stopWatch()
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	that.readLoop(ctx, sess)
}

func (that *Server) readLoop(ctx context.Context, sess *session) {
	log := that.logger.With("method", "readLoop")

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			_ = that.sendError(sess, message.Action, "unknown action")
			continue
		}

		var payload Payload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &payload); err != nil {
				log.Error("failed to unmarshal payload", "error", err)
				_ = that.sendError(sess, message.Action, "malformed payload")
				continue
			}
		}

		if err = handler(ctx, sess, &payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) sendMessage(sess *session, action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response := Message{
		Action:  action,
		Payload: payloadJSON,
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	if err = sess.conn.WriteJSON(response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// sendError surfaces a failure on the same action and leaves the session
// usable so the client may retry.
func (that *Server) sendError(sess *session, action, message string) error {
	return that.sendMessage(sess, action, ResponsePayload{Error: message})
}

// startWatch replaces the session's room feed; one watch per connection.
func (that *session) startWatch(parent context.Context) context.Context {
	that.watchMu.Lock()
	defer that.watchMu.Unlock()

	if that.watchCancel != nil {
		that.watchCancel()
	}

	ctx, cancel := context.WithCancel(parent)
	that.watchCancel = cancel

	return ctx
}

func (that *session) stopWatch() {
	that.watchMu.Lock()
	defer that.watchMu.Unlock()

	if that.watchCancel != nil {
		that.watchCancel()
		that.watchCancel = nil
	}
}
