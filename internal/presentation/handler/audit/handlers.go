// Package audit exposes the room event trail. It is mounted only when a
// backend with an audit repository is configured.
package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/json"
	"go.uber.org/zap"
)

// How many entries one request returns at most, newest first.
const maxEntries = 50

type Handler struct {
	repo   domain.RoomAuditRepository
	logger *zap.SugaredLogger
}

func NewHandler(repo domain.RoomAuditRepository, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// GetRoomAuditHandler returns the recorded lifecycle events for one room,
// newest first. Deleted rooms keep their trail until the TTL expires it.
func (h *Handler) GetRoomAuditHandler(w http.ResponseWriter, r *http.Request) {
	code, err := domain.NormalizeCode(chi.URLParam(r, "code"))
	if err != nil {
		json.WriteBadRequestError(w, "invalid room code")
		return
	}

	entries, err := h.repo.GetByRoomCode(r.Context(), code, maxEntries)
	if err != nil {
		h.logger.Warnw("failed to load audit trail", "code", code, "error", err)
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, auditTrailResponse{
		RoomCode: code,
		Events:   newAuditEntries(entries),
	})
}
