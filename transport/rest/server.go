package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/metagrid/ultimatoe-backend/internal/apperror"
	"github.com/metagrid/ultimatoe-backend/internal/entity"
	"github.com/metagrid/ultimatoe-backend/internal/usecase"
)

type roomManager interface {
	GetRoom(ctx context.Context, code string) (*entity.Room, error)
	CloseRoom(ctx context.Context, code string) error
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,
	}
}

func (that *Server) router() http.Handler {
	router := chi.NewRouter()
	router.Get("/ping", that.handlePing)
	router.Get("/rooms/{code}", that.handleGetRoom)
	router.Delete("/rooms/{code}", that.handleDeleteRoom)

	return router
}

// Start - starts the HTTP server with the snapshot endpoints.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type roomResponse struct {
	Room  *entity.Room       `json:"room"`
	State *usecase.RoomState `json:"state"`
}

func (that *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleGetRoom")

	code := chi.URLParam(r, "code")

	room, err := that.rooms.GetRoom(r.Context(), code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("failed to get room", "code", code, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(roomResponse{Room: room, State: usecase.DeriveState(room)}); err != nil {
		log.Error("failed to encode room", "code", code, "error", err)
	}
}

// handleDeleteRoom is the external deletion actor: subscribers observe the
// tombstone and treat the room as gone.
func (that *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleDeleteRoom")

	code := chi.URLParam(r, "code")

	if err := that.rooms.CloseRoom(r.Context(), code); err != nil {
		log.Error("failed to close room", "code", code, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
