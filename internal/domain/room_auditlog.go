package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RoomEventType string

const (
	EventRoomCreated     RoomEventType = "room_created"
	EventRoomDeleted     RoomEventType = "room_deleted"
	EventRoomReclaimed   RoomEventType = "room_reclaimed"
	EventPlayerJoined    RoomEventType = "player_joined"
	EventPlayerLeft      RoomEventType = "player_left"
	EventHostTransferred RoomEventType = "host_transferred"
	EventGameStarted     RoomEventType = "game_started"
	EventGameReset       RoomEventType = "game_reset"
)

// Reasons attached to room deletion events. Publishers route on these, so
// the lobby and the event layer must agree on the exact strings.
const (
	DeleteReasonEmpty     = "last_player_left"
	DeleteReasonReclaimed = "reclaimed"
)

type RoomAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RoomCode  string         `bson:"room_code" json:"roomCode"`
	EventType RoomEventType  `bson:"event_type" json:"eventType"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// RoomAuditRepository persists the event trail. Aging out old entries is
// the TTL index's job, not a repository method.
type RoomAuditRepository interface {
	Log(ctx context.Context, log *RoomAuditLog) error
	GetByRoomCode(ctx context.Context, roomCode string, limit int) ([]RoomAuditLog, error)
	EnsureIndexes(ctx context.Context) error
}

func newAuditLog(roomCode string, eventType RoomEventType, metadata map[string]any) *RoomAuditLog {
	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomCode:  roomCode,
		EventType: eventType,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

func NewRoomCreatedLog(roomCode string, isPublic bool) *RoomAuditLog {
	return newAuditLog(roomCode, EventRoomCreated, map[string]any{
		"is_public": isPublic,
	})
}

func NewRoomDeletedLog(roomCode string, reason string) *RoomAuditLog {
	return newAuditLog(roomCode, EventRoomDeleted, map[string]any{
		"reason": reason, // "last_player_left", "reclaimed"
	})
}

func NewRoomReclaimedLog(roomCode string, age time.Duration, playerCount int) *RoomAuditLog {
	return newAuditLog(roomCode, EventRoomReclaimed, map[string]any{
		"age_seconds":  age.Seconds(),
		"player_count": playerCount,
	})
}

func NewPlayerJoinedLog(roomCode string, playerCount int) *RoomAuditLog {
	return newAuditLog(roomCode, EventPlayerJoined, map[string]any{
		"player_count": playerCount,
	})
}

func NewPlayerLeftLog(roomCode string, playerCount int, wasHost bool) *RoomAuditLog {
	return newAuditLog(roomCode, EventPlayerLeft, map[string]any{
		"player_count": playerCount,
		"was_host":     wasHost,
	})
}

func NewHostTransferredLog(roomCode string, newHostID string) *RoomAuditLog {
	return newAuditLog(roomCode, EventHostTransferred, map[string]any{
		"new_host_id": newHostID,
	})
}

func NewGameStartedLog(roomCode string, category string, playerCount int) *RoomAuditLog {
	return newAuditLog(roomCode, EventGameStarted, map[string]any{
		"category":     category,
		"player_count": playerCount,
	})
}

func NewGameResetLog(roomCode string) *RoomAuditLog {
	return newAuditLog(roomCode, EventGameReset, map[string]any{})
}
