package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"missing-kids/internal/kid"

	amqp "github.com/rabbitmq/amqp091-go"
)

const KidUpdatedEvent = "kid.updated"

type KidUpdatedMessage struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Kid       kid.Kid   `json:"kid"`
}

type PublishingChannel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

type RabbitPublisher struct {
	conn       *amqp.Connection
	ch         PublishingChannel
	exchange   string
	routingKey string
	logger     *log.Logger
}

func NewRabbitPublisher(uri, exchange, routingKey string, logger *log.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connection failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel creation failed: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare failed: %w", err)
	}

	if logger != nil {
		logger.Printf("rabbitmq exchange %q ready", exchange)
	}

	return &RabbitPublisher{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (p *RabbitPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *RabbitPublisher) PublishKidUpdated(ctx context.Context, k *kid.Kid) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(KidUpdatedMessage{
		Event:     KidUpdatedEvent,
		Timestamp: time.Now().UTC(),
		Kid:       *k,
	})
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    fmt.Sprintf("kid-%d", k.CaseID),
			Body:         body,
		},
	)
}
