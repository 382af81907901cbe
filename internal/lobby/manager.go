// Package lobby owns every state transition a room can make. Nothing else
// in the service writes rooms.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/profanity"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/validate"
	"go.uber.org/zap"
)

const (
	// How many fresh codes to try before giving up on creation. With a
	// 32^4 space and 2h reclamation this loop rarely runs twice.
	maxCodeAttempts = 5

	// How many times a read-modify-write is retried after losing a
	// version race to a concurrent writer.
	maxCasRetries = 3

	// PublicRoomLimit caps the discovery feed.
	PublicRoomLimit = 20
)

// EventPublisher receives room lifecycle notifications. Implementations
// must tolerate being called on hot paths; failures are logged, never
// propagated to the caller.
type EventPublisher interface {
	RoomCreated(ctx context.Context, room domain.Room) error
	RoomDeleted(ctx context.Context, room domain.Room, reason string) error
	PlayerJoined(ctx context.Context, room domain.Room, uid string) error
	PlayerLeft(ctx context.Context, room domain.Room, uid string, wasHost bool) error
	GameStarted(ctx context.Context, room domain.Room) error
	GameReset(ctx context.Context, room domain.Room) error
}

type Manager struct {
	store     domain.RoomStore
	publisher EventPublisher
	filter    *profanity.Filter
	logger    *zap.SugaredLogger

	validateName validate.Validator
}

func NewManager(store domain.RoomStore, publisher EventPublisher, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		store:     store,
		publisher: publisher,
		filter:    profanity.NewFilter(),
		logger:    logger,
		validateName: validate.Field("name",
			validate.Required(),
			validate.MaxLength(domain.MaxNameLength),
		),
	}
}

func (m *Manager) Store() domain.RoomStore {
	return m.store
}

func (m *Manager) cleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if err := m.validateName(name); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	if m.filter.Contains(name) {
		return "", fmt.Errorf("%w: name not allowed", domain.ErrInvalidInput)
	}
	return name, nil
}

// CreateRoom runs a best-effort reclamation pass, then allocates a fresh
// code and writes the room with its creator as host. A code collision is
// rejected by the store and retried with a new code.
func (m *Manager) CreateRoom(ctx context.Context, creatorID, displayName string, isPublic bool) (*domain.Room, error) {
	name, err := m.cleanName(displayName)
	if err != nil {
		return nil, err
	}

	if _, err := m.ReclaimStaleRooms(ctx); err != nil {
		m.logger.Warnw("reclamation pass before create failed", "error", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := domain.GenerateCode()
		if err != nil {
			return nil, err
		}

		room := domain.NewRoom(code, creatorID, name, isPublic)
		err = m.store.Create(ctx, room)
		if errors.Is(err, domain.ErrRoomExists) {
			m.logger.Infow("room code collision, regenerating", "code", code, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		m.logger.Infow("room created", "code", code, "host", creatorID, "public", isPublic)
		m.publish(func() error { return m.publisher.RoomCreated(ctx, *room) })
		return room, nil
	}

	return nil, fmt.Errorf("could not allocate a unique room code after %d attempts", maxCodeAttempts)
}

// JoinRoom appends the player to the room's roster. A repeated join by the
// same identity is an idempotent rejoin and never duplicates an entry or
// touches the host.
func (m *Manager) JoinRoom(ctx context.Context, rawCode, uid, displayName string) (*domain.Room, error) {
	name, err := m.cleanName(displayName)
	if err != nil {
		return nil, err
	}
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return nil, fmt.Errorf("%w: code must be exactly %d characters", domain.ErrInvalidInput, domain.CodeLength)
	}

	var joined *domain.Room
	err = m.withRetry(ctx, code, func(room *domain.Room) (write bool, err error) {
		// A running round admits nobody, not even a returning player.
		if room.Status == domain.StatusPlaying {
			return false, domain.ErrGameStarted
		}
		if room.FindPlayer(uid) != nil {
			joined = room
			return false, nil // rejoin, nothing to write
		}
		if err := room.AddPlayer(uid, name); err != nil {
			return false, err
		}
		joined = room
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Infow("player joined", "code", code, "uid", uid, "players", len(joined.Players))
	m.publish(func() error { return m.publisher.PlayerJoined(ctx, *joined, uid) })
	return joined, nil
}

// LeaveRoom removes the player. The departure, any host promotion and the
// roster shrink land in one conditional write, so no observer ever sees a
// window with zero or two hosts. The last player out deletes the room.
func (m *Manager) LeaveRoom(ctx context.Context, rawCode, uid string) error {
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return fmt.Errorf("%w: code must be exactly %d characters", domain.ErrInvalidInput, domain.CodeLength)
	}

	var (
		left    domain.Room
		wasHost bool
		deleted bool
	)
	err = m.withRetry(ctx, code, func(room *domain.Room) (bool, error) {
		var rmErr error
		wasHost, rmErr = room.RemovePlayer(uid)
		if rmErr != nil {
			return false, rmErr
		}
		left = *room

		if room.Empty() {
			// Conditional on the version read above, so a join that
			// committed in between surfaces as a conflict and retries.
			if err := m.store.Delete(ctx, code, room.Version); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
				return false, err
			}
			deleted = true
			return false, nil
		}
		deleted = false
		return true, nil
	})
	if err != nil {
		return err
	}

	if deleted {
		m.logger.Infow("room deleted, last player left", "code", code, "uid", uid)
		m.publish(func() error { return m.publisher.RoomDeleted(ctx, left, domain.DeleteReasonEmpty) })
		return nil
	}

	m.logger.Infow("player left", "code", code, "uid", uid, "was_host", wasHost, "players", len(left.Players))
	m.publish(func() error { return m.publisher.PlayerLeft(ctx, left, uid, wasHost) })
	return nil
}

// StartGame assigns the round's category, word and impostor in one atomic
// write. Only the current host may start, and only with three or more
// players present.
func (m *Manager) StartGame(ctx context.Context, rawCode, callerUID string) (*domain.Room, error) {
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return nil, fmt.Errorf("%w: code must be exactly %d characters", domain.ErrInvalidInput, domain.CodeLength)
	}

	var started *domain.Room
	err = m.withRetry(ctx, code, func(room *domain.Room) (bool, error) {
		if !room.IsHost(callerUID) {
			return false, domain.ErrNotHost
		}
		if err := room.StartRound(); err != nil {
			return false, err
		}
		started = room
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Infow("game started", "code", code, "category", started.Category, "players", len(started.Players))
	m.publish(func() error { return m.publisher.GameStarted(ctx, *started) })
	return started, nil
}

// ResetGame returns the room to WAITING and clears the round fields.
// Host-only; the roster is untouched.
func (m *Manager) ResetGame(ctx context.Context, rawCode, callerUID string) (*domain.Room, error) {
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return nil, fmt.Errorf("%w: code must be exactly %d characters", domain.ErrInvalidInput, domain.CodeLength)
	}

	var reset *domain.Room
	err = m.withRetry(ctx, code, func(room *domain.Room) (bool, error) {
		if !room.IsHost(callerUID) {
			return false, domain.ErrNotHost
		}
		if err := room.ResetRound(); err != nil {
			return false, err
		}
		reset = room
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Infow("game reset", "code", code)
	m.publish(func() error { return m.publisher.GameReset(ctx, *reset) })
	return reset, nil
}

// GetRoom fetches one room by code.
func (m *Manager) GetRoom(ctx context.Context, rawCode string) (*domain.Room, error) {
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return nil, fmt.Errorf("%w: code must be exactly %d characters", domain.ErrInvalidInput, domain.CodeLength)
	}
	return m.store.Get(ctx, code)
}

// ListPublicRooms returns the discovery snapshot: public rooms still in
// WAITING, newest first, capped.
func (m *Manager) ListPublicRooms(ctx context.Context) ([]*domain.Room, error) {
	return m.store.ListPublicWaiting(ctx, PublicRoomLimit)
}

// ReclaimStaleRooms deletes public rooms older than two hours or left with
// no players. Best effort: an error on one room does not stop the scan.
func (m *Manager) ReclaimStaleRooms(ctx context.Context) (int, error) {
	rooms, err := m.store.ListPublic(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	reclaimed := 0
	for _, room := range rooms {
		if !room.Stale(now) {
			continue
		}

		if err := m.store.Delete(ctx, room.Code, room.Version); err != nil {
			if errors.Is(err, domain.ErrRoomNotFound) || errors.Is(err, domain.ErrVersionConflict) {
				continue // gone already, or touched since the scan
			}
			m.logger.Warnw("failed to reclaim room", "code", room.Code, "error", err)
			continue
		}

		reclaimed++
		m.logger.Infow("room reclaimed", "code", room.Code,
			"age", now.Sub(room.CreatedAt).Round(time.Second), "players", len(room.Players))
		m.publish(func() error { return m.publisher.RoomDeleted(ctx, *room, domain.DeleteReasonReclaimed) })
	}

	return reclaimed, nil
}

// withRetry runs a read-modify-write against the room, retrying a bounded
// number of times when a concurrent writer wins the version race.
func (m *Manager) withRetry(ctx context.Context, code string, mutate func(*domain.Room) (write bool, err error)) error {
	var lastErr error
	for attempt := 0; attempt <= maxCasRetries; attempt++ {
		room, err := m.store.Get(ctx, code)
		if err != nil {
			return err
		}

		write, err := mutate(room)
		if errors.Is(err, domain.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return err
		}
		if !write {
			return nil
		}

		err = m.store.Update(ctx, room, room.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (m *Manager) publish(fn func() error) {
	if m.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		m.logger.Warnw("failed to publish room event", "error", err)
	}
}
