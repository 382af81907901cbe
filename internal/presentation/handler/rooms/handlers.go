package rooms

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/json"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/ws"
	"github.com/juanmoore-creator/elimpostor/internal/lobby"
	"github.com/juanmoore-creator/elimpostor/internal/presentation/utils"
	"github.com/juanmoore-creator/elimpostor/internal/session"
	"go.uber.org/zap"
)

type Handler struct {
	manager *lobby.Manager
	core    *ws.Core
	logger  *zap.SugaredLogger
}

func NewHandler(manager *lobby.Manager, core *ws.Core, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		manager: manager,
		core:    core,
		logger:  logger,
	}
}

func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	uid := utils.EnsurePlayerID(w, r)

	room, err := h.manager.CreateRoom(r.Context(), uid, req.Name, req.IsPublic)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusCreated, h.personalView(room, uid))
}

func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	uid := utils.EnsurePlayerID(w, r)
	code := chi.URLParam(r, "code")

	room, err := h.manager.JoinRoom(r.Context(), code, uid, req.Name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, h.personalView(room, uid))
}

func (h *Handler) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	uid := utils.EnsurePlayerID(w, r)
	code := chi.URLParam(r, "code")

	if err := h.manager.LeaveRoom(r.Context(), code, uid); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	uid := utils.EnsurePlayerID(w, r)
	code := chi.URLParam(r, "code")

	room, err := h.manager.StartGame(r.Context(), code, uid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, h.personalView(room, uid))
}

func (h *Handler) ResetGameHandler(w http.ResponseWriter, r *http.Request) {
	uid := utils.EnsurePlayerID(w, r)
	code := chi.URLParam(r, "code")

	room, err := h.manager.ResetGame(r.Context(), code, uid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, h.personalView(room, uid))
}

func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	uid := utils.EnsurePlayerID(w, r)
	code := chi.URLParam(r, "code")

	room, err := h.manager.GetRoom(r.Context(), code)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, h.personalView(room, uid))
}

// ListCategoriesHandler returns the names of the word categories a round
// can draw from. The word lists themselves stay server-side.
func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	json.Write(w, http.StatusOK, categoriesResponse{Categories: domain.Categories()})
}

func (h *Handler) ListPublicRoomsHandler(w http.ResponseWriter, r *http.Request) {
	roomsList, err := h.manager.ListPublicRooms(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, newFeedEntries(roomsList))
}

// WatchRoomHandler upgrades to a websocket and streams the caller's view of
// one room until the connection drops or the room closes.
func (h *Handler) WatchRoomHandler(w http.ResponseWriter, r *http.Request) {
	uid := utils.EnsurePlayerID(w, r)

	code, err := domain.NormalizeCode(chi.URLParam(r, "code"))
	if err != nil {
		json.WriteBadRequestError(w, "invalid room code")
		return
	}

	conn, err := h.core.Upgrade(w, r)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "code", code, "error", err)
		return
	}

	// The watch must outlive the handler; it ends with the connection.
	ctx, cancel := context.WithCancel(context.Background())

	sess, err := session.Attach(ctx, h.manager.Store(), code, uid, h.logger)
	if err != nil {
		msg := "failed to load room"
		if errors.Is(err, domain.ErrRoomNotFound) {
			msg = "room not found"
		}
		_ = conn.WriteJSON(ws.NewSyncError(code, msg))
		_ = conn.Close()
		cancel()
		return
	}

	client := ws.NewClient(conn, uid, code, h.logger)
	h.core.Register() <- client

	go client.WritePump()
	go client.ReadPump(h.core)

	go func() {
		defer cancel()
		defer sess.Close()

		for {
			select {
			case view, ok := <-sess.Views():
				if !ok {
					client.Close()
					return
				}
				client.Send(h.toWireMessage(code, view))

			case <-client.Closed():
				return
			}
		}
	}()

	h.logger.Infow("player watching room", "code", code, "uid", uid)
}

// WatchFeedHandler streams the public waiting-room list over a websocket.
func (h *Handler) WatchFeedHandler(w http.ResponseWriter, r *http.Request) {
	uid := utils.EnsurePlayerID(w, r)

	conn, err := h.core.Upgrade(w, r)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	watch, err := h.manager.Store().WatchPublicWaiting(ctx, lobby.PublicRoomLimit)
	if err != nil {
		_ = conn.WriteJSON(ws.NewSyncError("", "failed to load room list"))
		_ = conn.Close()
		cancel()
		return
	}

	client := ws.NewClient(conn, uid, "", h.logger)
	h.core.Register() <- client

	go client.WritePump()
	go client.ReadPump(h.core)

	go func() {
		defer cancel()
		defer watch.Close()

		for {
			select {
			case change, ok := <-watch.Events:
				if !ok {
					client.Close()
					return
				}
				if change.Err != nil {
					client.Send(ws.NewSyncError("", "room list sync error"))
					continue
				}
				client.Send(ws.NewFeedUpdated(newFeedEntries(change.Rooms)))

			case <-client.Closed():
				return
			}
		}
	}()
}

func (h *Handler) personalView(room *domain.Room, uid string) *sessionView {
	phase := session.PhaseLobby
	if room.Status == domain.StatusPlaying {
		phase = session.PhasePlaying
	}

	return newSessionView(session.View{
		Phase:      phase,
		Room:       room,
		IsHost:     room.IsHost(uid),
		IsImpostor: room.Status == domain.StatusPlaying && room.ImpostorID == uid,
	})
}

func (h *Handler) toWireMessage(code string, view session.View) *ws.WSMessage {
	if view.Phase == session.PhaseNone && view.Error != "" {
		return ws.NewRoomClosed(code, view.Error)
	}
	return ws.NewRoomUpdated(code, newSessionView(view))
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		json.WriteValidationError(w, err)
	case errors.Is(err, domain.ErrRoomNotFound):
		json.WriteError(w, http.StatusNotFound, "Room not found")
	case errors.Is(err, domain.ErrRoomExists):
		json.WriteError(w, http.StatusConflict, "Room already exists")
	case errors.Is(err, domain.ErrRoomFull):
		json.WriteError(w, http.StatusConflict, "Room is full")
	case errors.Is(err, domain.ErrGameStarted):
		json.WriteError(w, http.StatusConflict, "Game already in progress")
	case errors.Is(err, domain.ErrGameNotStarted):
		json.WriteError(w, http.StatusConflict, "Game has not started")
	case errors.Is(err, domain.ErrNotEnoughPlayer):
		json.WriteBadRequestError(w, "Not enough players to start")
	case errors.Is(err, domain.ErrNotHost):
		json.WriteError(w, http.StatusForbidden, "Only the host can do that")
	case errors.Is(err, domain.ErrVersionConflict):
		json.WriteError(w, http.StatusConflict, "Room changed concurrently, try again")
	default:
		json.WriteInternalError(w, err)
	}
}
