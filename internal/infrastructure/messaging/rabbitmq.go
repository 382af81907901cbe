package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/juanmoore-creator/elimpostor/internal/infrastructure/contracts"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoomExchange       = "rooms"
	DeadLetterExchange = "dlx"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %v", err)
	}

	rmq := &RabbitMQ{
		conn:    conn,
		Channel: ch,
	}

	if err := rmq.setup(); err != nil {
		rmq.Close()
		return nil, err
	}

	return rmq, nil
}

func (r *RabbitMQ) setup() error {
	if err := r.Channel.ExchangeDeclare(
		RoomExchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %v", RoomExchange, err)
	}

	if err := r.Channel.ExchangeDeclare(
		DeadLetterExchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %v", DeadLetterExchange, err)
	}

	if err := r.declareAndBindQueue(DeadLetterQueue, []string{""}, DeadLetterExchange); err != nil {
		return err
	}

	return r.declareAndBindQueue(RoomsQueue, []string{
		contracts.EventRoomCreated,
		contracts.EventRoomDeleted,
		contracts.EventRoomReclaimed,
		contracts.EventPlayerJoined,
		contracts.EventPlayerLeft,
		contracts.EventHostTransferred,
		contracts.EventGameStarted,
		contracts.EventGameReset,
	}, RoomExchange)
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

func (r *RabbitMQ) declareAndBindQueue(queueName string, messageTypes []string, exchange string) error {
	var args amqp.Table
	if queueName != DeadLetterQueue {
		args = amqp.Table{
			"x-dead-letter-exchange": DeadLetterExchange,
		}
	}

	q, err := r.Channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		args,      // arguments with DLX config
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %v", queueName, err)
	}

	for _, msg := range messageTypes {
		if err := r.Channel.QueueBind(
			q.Name,   // queue name
			msg,      // routing key
			exchange, // exchange
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %v", queueName, err)
		}
	}

	return nil
}

// PublishMessage publishes a persistent JSON message to the room exchange
// under the given routing key.
func (r *RabbitMQ) PublishMessage(ctx context.Context, routingKey string, msg contracts.AmqpMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.Channel.PublishWithContext(ctx,
		RoomExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// ConsumeMessages delivers queue messages to handler. A handler error nacks
// without requeue, routing the message to the dead letter exchange.
func (r *RabbitMQ) ConsumeMessages(queueName string, handler func(ctx context.Context, msg amqp.Delivery) error) error {
	deliveries, err := r.Channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %v", queueName, err)
	}

	go func() {
		for d := range deliveries {
			if err := handler(context.Background(), d); err != nil {
				log.Printf("failed to handle message %s: %v", d.RoutingKey, err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}()

	return nil
}
