package events

import (
	"context"
	"encoding/json"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/contracts"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/messaging"
)

// RoomPublisher pushes room lifecycle events onto the room exchange.
type RoomPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRoomPublisher(rabbitmq *messaging.RabbitMQ) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *RoomPublisher) RoomCreated(ctx context.Context, room domain.Room) error {
	return p.publish(ctx, contracts.EventRoomCreated, messaging.RoomEventData{
		Room: room,
	})
}

func (p *RoomPublisher) RoomDeleted(ctx context.Context, room domain.Room, reason string) error {
	return p.publish(ctx, deletionRoutingKey(reason), messaging.RoomEventData{
		Room:   room,
		Reason: reason,
	})
}

// A reclaimed room rides its own routing key so the audit trail can tell
// sweeper deletions apart from last-player-left ones.
func deletionRoutingKey(reason string) string {
	if reason == domain.DeleteReasonReclaimed {
		return contracts.EventRoomReclaimed
	}
	return contracts.EventRoomDeleted
}

func (p *RoomPublisher) PlayerJoined(ctx context.Context, room domain.Room, uid string) error {
	return p.publish(ctx, contracts.EventPlayerJoined, messaging.RoomEventData{
		Room: room,
		UID:  uid,
	})
}

func (p *RoomPublisher) PlayerLeft(ctx context.Context, room domain.Room, uid string, wasHost bool) error {
	if err := p.publish(ctx, contracts.EventPlayerLeft, messaging.RoomEventData{
		Room:    room,
		UID:     uid,
		WasHost: wasHost,
	}); err != nil {
		return err
	}

	// A departing host means the remaining snapshot already carries the
	// promoted successor.
	if wasHost && len(room.Players) > 0 {
		return p.publish(ctx, contracts.EventHostTransferred, messaging.RoomEventData{
			Room: room,
			UID:  room.HostID,
		})
	}

	return nil
}

func (p *RoomPublisher) GameStarted(ctx context.Context, room domain.Room) error {
	return p.publish(ctx, contracts.EventGameStarted, messaging.RoomEventData{
		Room: room,
	})
}

func (p *RoomPublisher) GameReset(ctx context.Context, room domain.Room) error {
	return p.publish(ctx, contracts.EventGameReset, messaging.RoomEventData{
		Room: room,
	})
}

func (p *RoomPublisher) publish(ctx context.Context, routingKey string, payload messaging.RoomEventData) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomCode: payload.Room.Code,
		Data:     data,
	})
}
