package session

import (
	"context"
	"testing"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/persistence/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRoom(t *testing.T, store domain.RoomStore, players int) *domain.Room {
	t.Helper()

	room := domain.NewRoom("ROOM", "uid-1", "Ana", true)
	for i := 1; i < players; i++ {
		suffix := string(rune('1' + i))
		require.NoError(t, room.AddPlayer("uid-"+suffix, "P"+suffix))
	}
	require.NoError(t, store.Create(context.Background(), room))
	return room
}

func nextView(t *testing.T, s *Session) View {
	t.Helper()

	select {
	case v, ok := <-s.Views():
		require.True(t, ok, "views channel closed early")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view")
		return View{}
	}
}

func TestAttach_InitialSnapshot(t *testing.T) {
	store := repository.NewMemoryRoomStore()
	newTestRoom(t, store, 3)

	s, err := Attach(context.Background(), store, "ROOM", "uid-1", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer s.Close()

	v := nextView(t, s)
	require.Equal(t, PhaseLobby, v.Phase)
	require.True(t, v.IsHost)
	require.False(t, v.IsImpostor)
	require.Len(t, v.Room.Players, 3)
}

func TestAttach_UnknownRoom(t *testing.T) {
	store := repository.NewMemoryRoomStore()

	_, err := Attach(context.Background(), store, "ZZZZ", "uid-1", zap.NewNop().Sugar())
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestSession_GameStartTransitions(t *testing.T) {
	store := repository.NewMemoryRoomStore()
	room := newTestRoom(t, store, 3)

	s, err := Attach(context.Background(), store, "ROOM", "uid-2", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer s.Close()

	first := nextView(t, s)
	require.Equal(t, PhaseLobby, first.Phase)
	require.False(t, first.IsHost)

	require.NoError(t, room.StartRound())
	require.NoError(t, store.Update(context.Background(), room, room.Version))

	v := nextView(t, s)
	require.Equal(t, PhasePlaying, v.Phase)
	require.Equal(t, room.ImpostorID == "uid-2", v.IsImpostor)
	require.Equal(t, room.Word, v.Room.Word)
}

func TestSession_RoomClosed(t *testing.T) {
	store := repository.NewMemoryRoomStore()
	room := newTestRoom(t, store, 2)

	s, err := Attach(context.Background(), store, "ROOM", "uid-2", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer s.Close()

	nextView(t, s)

	require.NoError(t, store.Delete(context.Background(), "ROOM", room.Version))

	v := nextView(t, s)
	require.Equal(t, PhaseNone, v.Phase)
	require.Equal(t, "room closed", v.Error)
	require.Nil(t, v.Room)

	_, ok := <-s.Views()
	require.False(t, ok, "views channel should close after room closed")
}

func TestSession_CloseStopsViews(t *testing.T) {
	store := repository.NewMemoryRoomStore()
	newTestRoom(t, store, 2)

	s, err := Attach(context.Background(), store, "ROOM", "uid-1", zap.NewNop().Sugar())
	require.NoError(t, err)

	nextView(t, s)
	s.Close()

	select {
	case _, ok := <-s.Views():
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("views channel did not close after Close")
	}
}
