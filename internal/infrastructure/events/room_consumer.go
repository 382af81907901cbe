package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/domain"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/contracts"
	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// roomConsumer drains the rooms queue and writes one audit log entry per
// lifecycle event.
type roomConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.RoomAuditRepository
	logger   *zap.SugaredLogger
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ, audit domain.RoomAuditRepository, logger *zap.SugaredLogger) *roomConsumer {
	return &roomConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
		logger:   logger,
	}
}

func (c *roomConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.RoomsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			c.logger.Warnw("failed to unmarshal amqp message", "error", err)
			return err
		}

		var payload messaging.RoomEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			c.logger.Warnw("failed to unmarshal room event", "error", err)
			return err
		}

		entry := c.toAuditLog(msg.RoutingKey, payload)
		if entry == nil {
			c.logger.Warnw("unknown room event", "routingKey", msg.RoutingKey)
			return nil
		}

		return c.audit.Log(ctx, entry)
	})
}

func (c *roomConsumer) toAuditLog(routingKey string, payload messaging.RoomEventData) *domain.RoomAuditLog {
	room := payload.Room

	switch routingKey {
	case contracts.EventRoomCreated:
		return domain.NewRoomCreatedLog(room.Code, room.IsPublic)
	case contracts.EventRoomDeleted:
		return domain.NewRoomDeletedLog(room.Code, payload.Reason)
	case contracts.EventRoomReclaimed:
		return domain.NewRoomReclaimedLog(room.Code, time.Since(room.CreatedAt), len(room.Players))
	case contracts.EventPlayerJoined:
		return domain.NewPlayerJoinedLog(room.Code, len(room.Players))
	case contracts.EventPlayerLeft:
		return domain.NewPlayerLeftLog(room.Code, len(room.Players), payload.WasHost)
	case contracts.EventHostTransferred:
		return domain.NewHostTransferredLog(room.Code, payload.UID)
	case contracts.EventGameStarted:
		return domain.NewGameStartedLog(room.Code, room.Category, len(room.Players))
	case contracts.EventGameReset:
		return domain.NewGameResetLog(room.Code)
	default:
		return nil
	}
}
