package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAuditRepo serves canned entries keyed by room code.
type fakeAuditRepo struct {
	entries map[string][]domain.RoomAuditLog
}

func (f *fakeAuditRepo) Log(ctx context.Context, log *domain.RoomAuditLog) error {
	f.entries[log.RoomCode] = append(f.entries[log.RoomCode], *log)
	return nil
}

func (f *fakeAuditRepo) GetByRoomCode(ctx context.Context, roomCode string, limit int) ([]domain.RoomAuditLog, error) {
	logs := f.entries[roomCode]
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (f *fakeAuditRepo) EnsureIndexes(ctx context.Context) error { return nil }

func newTestRouter(repo domain.RoomAuditRepository) http.Handler {
	h := NewHandler(repo, zap.NewNop().Sugar())
	r := chi.NewRouter()
	r.Get("/api/rooms/{code}/audit", h.GetRoomAuditHandler)
	return r
}

func TestGetRoomAudit(t *testing.T) {
	repo := &fakeAuditRepo{entries: map[string][]domain.RoomAuditLog{}}
	require.NoError(t, repo.Log(context.Background(), domain.NewRoomCreatedLog("ABCD", true)))
	require.NoError(t, repo.Log(context.Background(), domain.NewPlayerJoinedLog("ABCD", 2)))

	srv := httptest.NewServer(newTestRouter(repo))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/rooms/abcd/audit")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var trail auditTrailResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trail))

	assert.Equal(t, "ABCD", trail.RoomCode)
	require.Len(t, trail.Events, 2)
	assert.Equal(t, domain.EventRoomCreated, trail.Events[0].EventType)
	assert.Equal(t, domain.EventPlayerJoined, trail.Events[1].EventType)
	assert.WithinDuration(t, time.Now(), trail.Events[0].Timestamp, time.Minute)
}

func TestGetRoomAudit_InvalidCode(t *testing.T) {
	repo := &fakeAuditRepo{entries: map[string][]domain.RoomAuditLog{}}

	srv := httptest.NewServer(newTestRouter(repo))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/rooms/toolong/audit")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRoomAudit_EmptyTrail(t *testing.T) {
	repo := &fakeAuditRepo{entries: map[string][]domain.RoomAuditLog{}}

	srv := httptest.NewServer(newTestRouter(repo))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/rooms/ZZZZ/audit")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var trail auditTrailResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trail))
	assert.Empty(t, trail.Events)
}
