package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher delivers notification events. Publishing is best effort: callers
// log failures and carry on with the request.
type Publisher interface {
	Publish(ctx context.Context, queueName string, event interface{}) error
}

// AMQPPublisher publishes persistent JSON messages to RabbitMQ, declaring
// the queue on each publish so the broker side stays idempotent.
type AMQPPublisher struct {
	url    string
	logger *slog.Logger
}

func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

func (p *AMQPPublisher) Publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq dial failed", "queue", queueName, "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", "queue", queueName, "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		p.logger.Warn("rabbitmq queue declare failed", "queue", queueName, "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.logger.Warn("rabbitmq publish failed", "queue", queueName, "error", err)
		return err
	}
	return nil
}

// NoopPublisher is used when no broker URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
