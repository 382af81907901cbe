package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)

		for _, c := range code {
			assert.Contains(t, codeChars, string(c))
		}
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "1")

		seen[code] = true
	}

	// 200 draws from 32^4 should essentially never all collide.
	assert.Greater(t, len(seen), 150)
}

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode(" ab2x ")
	require.NoError(t, err)
	assert.Equal(t, "AB2X", code)

	_, err = NormalizeCode("AB2")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeCode("")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeCode("TOOLONG")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewRoom(t *testing.T) {
	room := NewRoom("AB2X", "uid-1", "Ana", true)

	assert.Equal(t, StatusWaiting, room.Status)
	assert.Equal(t, "uid-1", room.HostID)
	assert.Empty(t, room.Category)
	assert.Empty(t, room.Word)
	assert.Empty(t, room.ImpostorID)
	assert.True(t, room.IsPublic)

	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].IsHost)
	assert.Equal(t, "Ana", room.Players[0].Name)
}

func TestAddPlayer(t *testing.T) {
	room := NewRoom("AB2X", "uid-1", "Ana", true)

	require.NoError(t, room.AddPlayer("uid-2", "Beto"))
	require.Len(t, room.Players, 2)
	assert.False(t, room.Players[1].IsHost)

	// Idempotent rejoin must not duplicate.
	require.NoError(t, room.AddPlayer("uid-2", "Beto"))
	assert.Len(t, room.Players, 2)

	// Joins never reassign the host.
	assert.Equal(t, "uid-1", room.HostID)
}

func TestAddPlayer_Full(t *testing.T) {
	room := NewRoom("AB2X", "uid-0", "Ana", true)
	for i := 1; i < MaxPlayers; i++ {
		require.NoError(t, room.AddPlayer(string(rune('a'+i)), "P"))
	}

	assert.ErrorIs(t, room.AddPlayer("overflow", "Tarde"), ErrRoomFull)
	assert.Len(t, room.Players, MaxPlayers)
}

func TestAddPlayer_AfterStart(t *testing.T) {
	room := threePlayerRoom(t)
	require.NoError(t, room.StartRound())

	assert.ErrorIs(t, room.AddPlayer("uid-4", "Dani"), ErrGameStarted)
}

func TestRemovePlayer_HostMigration(t *testing.T) {
	room := threePlayerRoom(t)

	wasHost, err := room.RemovePlayer("uid-1")
	require.NoError(t, err)
	assert.True(t, wasHost)

	// Second joiner inherits the room, everyone else stays non-host.
	require.Len(t, room.Players, 2)
	assert.Equal(t, "uid-2", room.HostID)
	assert.True(t, room.Players[0].IsHost)
	assert.False(t, room.Players[1].IsHost)

	hosts := 0
	for _, p := range room.Players {
		if p.IsHost {
			hosts++
		}
	}
	assert.Equal(t, 1, hosts)
}

func TestRemovePlayer_NonHost(t *testing.T) {
	room := threePlayerRoom(t)

	wasHost, err := room.RemovePlayer("uid-3")
	require.NoError(t, err)
	assert.False(t, wasHost)
	assert.Equal(t, "uid-1", room.HostID)
	assert.Len(t, room.Players, 2)
}

func TestRemovePlayer_LastLeaves(t *testing.T) {
	room := NewRoom("AB2X", "uid-1", "Ana", true)

	wasHost, err := room.RemovePlayer("uid-1")
	require.NoError(t, err)
	assert.True(t, wasHost)
	assert.True(t, room.Empty())
	assert.Empty(t, room.HostID)
}

func TestRemovePlayer_Missing(t *testing.T) {
	room := NewRoom("AB2X", "uid-1", "Ana", true)

	_, err := room.RemovePlayer("ghost")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestStartRound_NotEnoughPlayers(t *testing.T) {
	room := NewRoom("AB2X", "uid-1", "Ana", true)
	require.NoError(t, room.AddPlayer("uid-2", "Beto"))

	assert.ErrorIs(t, room.StartRound(), ErrNotEnoughPlayer)
	assert.Equal(t, StatusWaiting, room.Status)
	assert.Empty(t, room.Word)
}

func TestStartRound(t *testing.T) {
	room := threePlayerRoom(t)
	require.NoError(t, room.StartRound())

	assert.Equal(t, StatusPlaying, room.Status)
	assert.NotEmpty(t, room.Category)
	assert.NotEmpty(t, room.Word)

	// The impostor must be someone actually in the room.
	assert.NotNil(t, room.FindPlayer(room.ImpostorID))

	// The word must come from the chosen category's fixed list.
	assert.Contains(t, WordsInCategory(room.Category), room.Word)

	// Starting twice is rejected.
	assert.ErrorIs(t, room.StartRound(), ErrGameStarted)
}

func TestResetRound(t *testing.T) {
	room := threePlayerRoom(t)
	require.NoError(t, room.StartRound())

	playersBefore := len(room.Players)
	require.NoError(t, room.ResetRound())

	assert.Equal(t, StatusWaiting, room.Status)
	assert.Empty(t, room.Category)
	assert.Empty(t, room.Word)
	assert.Empty(t, room.ImpostorID)
	assert.Len(t, room.Players, playersBefore)

	assert.ErrorIs(t, room.ResetRound(), ErrGameNotStarted)
}

func TestStale(t *testing.T) {
	now := time.Now().UTC()

	old := NewRoom("AB2X", "uid-1", "Ana", true)
	old.CreatedAt = now.Add(-3 * time.Hour)
	assert.True(t, old.Stale(now))

	fresh := NewRoom("CD3Y", "uid-1", "Ana", true)
	fresh.CreatedAt = now.Add(-10 * time.Minute)
	assert.False(t, fresh.Stale(now))

	abandoned := NewRoom("EF4Z", "uid-1", "Ana", true)
	abandoned.CreatedAt = now.Add(-10 * time.Minute)
	abandoned.Players = nil
	assert.True(t, abandoned.Stale(now))
}

func TestRandomWord(t *testing.T) {
	for i := 0; i < 50; i++ {
		category, word := RandomWord()
		require.NotEmpty(t, category)
		require.NotEmpty(t, word)
		assert.Contains(t, WordsInCategory(category), word)
	}

	assert.Len(t, Categories(), 5)
	for _, c := range Categories() {
		assert.Len(t, WordsInCategory(c), 10, "category %s", c)
	}
}

func threePlayerRoom(t *testing.T) *Room {
	t.Helper()
	room := NewRoom(strings.Repeat("A", CodeLength), "uid-1", "Ana", true)
	require.NoError(t, room.AddPlayer("uid-2", "Beto"))
	require.NoError(t, room.AddPlayer("uid-3", "Carla"))
	return room
}
