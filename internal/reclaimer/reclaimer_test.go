package reclaimer

import (
	"context"
	"testing"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/lobby"
	"github.com/juanmoore-creator/elimpostor/internal/persistence/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun_SweepsStaleRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := repository.NewMemoryRoomStore()
	manager := lobby.NewManager(store, nil, zap.NewNop().Sugar())

	stale := domain.NewRoom("OLDR", "uid-1", "Ana", true)
	stale.CreatedAt = time.Now().Add(-3 * time.Hour)
	require.NoError(t, store.Create(ctx, stale))

	fresh := domain.NewRoom("NEWR", "uid-2", "Luis", true)
	require.NoError(t, store.Create(ctx, fresh))

	r := New(manager, 20*time.Millisecond, zap.NewNop().Sugar())
	go r.Run(ctx)

	require.Eventually(t, func() bool {
		_, err := store.Get(ctx, "OLDR")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond, "stale room should be reclaimed")

	_, err := store.Get(ctx, "NEWR")
	require.NoError(t, err, "fresh room must survive the sweep")
}
