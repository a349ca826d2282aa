package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"empowerpwd/logger"
	"empowerpwd/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitBus publishes message events to a topic exchange keyed by the
// recipient (user.<id>) and fans them out to local WebSocket connections.
type RabbitBus struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// NewRabbitBus connects and declares the exchange.
func NewRabbitBus(url, exchange string) (*RabbitBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	logger.Log.Infof("RabbitMQ initialized, exchange %s", exchange)
	return &RabbitBus{conn: conn, channel: channel, exchange: exchange}, nil
}

func routingKey(userID int64) string {
	return fmt.Sprintf("user.%d", userID)
}

func (b *RabbitBus) Publish(ctx context.Context, event models.MessageEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channel.PublishWithContext(ctx,
		b.exchange,
		routingKey(event.UserID),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}

// StartConsumer binds a queue private to this instance so every server
// sees every event and pushes those of its own connections.
func (b *RabbitBus) StartConsumer(ctx context.Context, queuePrefix string, ws *WSConnManager) error {
	host, _ := os.Hostname()
	queueName := fmt.Sprintf("%s.%s.%d", queuePrefix, host, os.Getpid())

	q, err := b.channel.QueueDeclare(
		queueName,
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := b.channel.QueueBind(q.Name, "user.*", b.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	msgs, err := b.channel.Consume(
		q.Name,
		"",
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Log.Warn("RabbitMQ delivery channel closed")
					return
				}
				if err := handleDelivery(ws, msg); err != nil {
					logger.Log.Warnf("Dropping message event: %v", err)
				}
			}
		}
	}()
	logger.Log.Infof("Consuming message events from %s", q.Name)
	return nil
}

// handleDelivery pushes one consumed event to the local connections of its
// recipient.
func handleDelivery(ws *WSConnManager, msg amqp.Delivery) error {
	var event models.MessageEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal message event: %w", err)
	}
	if event.UserID <= 0 {
		return fmt.Errorf("message event %q without recipient", event.Event)
	}
	return pushEvent(ws, event)
}

func (b *RabbitBus) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
