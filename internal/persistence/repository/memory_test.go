package repository

import (
	"context"
	"testing"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoom(t *testing.T, store domain.RoomStore, code string, isPublic bool) *domain.Room {
	t.Helper()

	room := domain.NewRoom(code, "uid-"+code, "Host", isPublic)
	require.NoError(t, store.Create(context.Background(), room))
	return room
}

func TestMemoryStore_CreateRejectsDuplicate(t *testing.T) {
	store := NewMemoryRoomStore()
	seedRoom(t, store, "AAAA", true)

	dup := domain.NewRoom("AAAA", "uid-2", "Other", true)
	require.ErrorIs(t, store.Create(context.Background(), dup), domain.ErrRoomExists)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryRoomStore()
	seedRoom(t, store, "AAAA", true)

	got, err := store.Get(context.Background(), "AAAA")
	require.NoError(t, err)

	got.HostID = "hijacked"

	again, err := store.Get(context.Background(), "AAAA")
	require.NoError(t, err)
	assert.Equal(t, "uid-AAAA", again.HostID, "mutating a returned room must not touch the store")
}

func TestMemoryStore_UpdateCAS(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	seedRoom(t, store, "AAAA", true)

	first, err := store.Get(ctx, "AAAA")
	require.NoError(t, err)
	second, err := store.Get(ctx, "AAAA")
	require.NoError(t, err)

	require.NoError(t, first.AddPlayer("uid-x", "X"))
	require.NoError(t, store.Update(ctx, first, first.Version))

	// Second writer still holds the old version.
	require.NoError(t, second.AddPlayer("uid-y", "Y"))
	require.ErrorIs(t, store.Update(ctx, second, second.Version), domain.ErrVersionConflict)

	current, err := store.Get(ctx, "AAAA")
	require.NoError(t, err)
	assert.Len(t, current.Players, 2)
	assert.Nil(t, current.FindPlayer("uid-y"))
	assert.Equal(t, first.Version, current.Version, "winning writer observes the bumped version")
}

func TestMemoryStore_UpdateMissingRoom(t *testing.T) {
	store := NewMemoryRoomStore()

	ghost := domain.NewRoom("GONE", "uid-1", "Ana", true)
	require.ErrorIs(t, store.Update(context.Background(), ghost, 0), domain.ErrRoomNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	room := seedRoom(t, store, "AAAA", true)

	require.NoError(t, store.Delete(ctx, "AAAA", room.Version))
	_, err := store.Get(ctx, "AAAA")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)

	require.ErrorIs(t, store.Delete(ctx, "AAAA", room.Version), domain.ErrRoomNotFound)
}

func TestMemoryStore_DeleteStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	room := seedRoom(t, store, "AAAA", true)
	before := room.Version

	// A write lands after the would-be deleter read the room.
	require.NoError(t, room.AddPlayer("uid-2", "Luis"))
	require.NoError(t, store.Update(ctx, room, room.Version))

	require.ErrorIs(t, store.Delete(ctx, "AAAA", before), domain.ErrVersionConflict)

	current, err := store.Get(ctx, "AAAA")
	require.NoError(t, err)
	assert.Len(t, current.Players, 2, "the committed join must survive")
}

func TestMemoryStore_ListPublicWaiting(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()

	seedRoom(t, store, "PUB1", true)
	seedRoom(t, store, "PRIV", false)

	playing := seedRoom(t, store, "PLAY", true)
	playing.Status = domain.StatusPlaying
	require.NoError(t, store.Update(ctx, playing, playing.Version))

	rooms, err := store.ListPublicWaiting(ctx, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "PUB1", rooms[0].Code)
}

func TestMemoryStore_WatchDeliversUpdatesAndDeletion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	room := seedRoom(t, store, "AAAA", true)

	watch, err := store.Watch(ctx, "AAAA")
	require.NoError(t, err)
	defer watch.Close()

	snapshot := nextRoomChange(t, watch)
	require.NotNil(t, snapshot.Room)
	assert.Equal(t, "AAAA", snapshot.Room.Code)

	require.NoError(t, room.AddPlayer("uid-2", "Luis"))
	require.NoError(t, store.Update(ctx, room, room.Version))

	updated := nextRoomChange(t, watch)
	require.NotNil(t, updated.Room)
	assert.Len(t, updated.Room.Players, 2)

	require.NoError(t, store.Delete(ctx, "AAAA", room.Version))

	deleted := nextRoomChange(t, watch)
	assert.True(t, deleted.Deleted)
}

func TestMemoryStore_WatchUnknownRoom(t *testing.T) {
	store := NewMemoryRoomStore()

	_, err := store.Watch(context.Background(), "ZZZZ")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestMemoryStore_WatchPublicWaitingFeed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	seedRoom(t, store, "PUB1", true)

	watch, err := store.WatchPublicWaiting(ctx, 20)
	require.NoError(t, err)
	defer watch.Close()

	snapshot := nextFeedChange(t, watch)
	require.Len(t, snapshot.Rooms, 1)

	seedRoom(t, store, "PUB2", true)

	update := nextFeedChange(t, watch)
	require.Len(t, update.Rooms, 2)
	// newest room first
	assert.Equal(t, "PUB2", update.Rooms[0].Code)
}

func nextRoomChange(t *testing.T, watch *domain.RoomWatch) domain.RoomChange {
	t.Helper()

	select {
	case change, ok := <-watch.Events:
		require.True(t, ok, "watch closed early")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for room change")
		return domain.RoomChange{}
	}
}

func nextFeedChange(t *testing.T, watch *domain.FeedWatch) domain.FeedChange {
	t.Helper()

	select {
	case change, ok := <-watch.Events:
		require.True(t, ok, "watch closed early")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed change")
		return domain.FeedChange{}
	}
}
