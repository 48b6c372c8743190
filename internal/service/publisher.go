// Package service holds adapters between the scheduling core and outside
// systems.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/queue"
)

// Channel is the part of an AMQP channel the publisher needs.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Dialer opens a channel to the broker for a single publish.
type Dialer func() (Channel, func(), error)

// AMQPPublisher sends lesson events to the durable lessons.changed queue.
// Every publish opens its own connection, so a broker outage only costs the
// events raised while it lasts.
type AMQPPublisher struct {
	dial  Dialer
	queue string
	log   *zap.Logger
}

// NewAMQPPublisher publishes to the broker at url.
func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
	return NewPublisherWithDialer(dialURL(url), log)
}

// NewPublisherWithDialer is NewAMQPPublisher with a custom channel source.
func NewPublisherWithDialer(d Dialer, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{dial: d, queue: queue.LessonsQueueName, log: log}
}

func dialURL(url string) Dialer {
	return func() (Channel, func(), error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
		}
		return ch, func() { _ = conn.Close() }, nil
	}
}

// PublishLessonEvent marshals ev and publishes it as a persistent message.
func (p *AMQPPublisher) PublishLessonEvent(ctx context.Context, ev queue.LessonEvent) error {
	ch, closeConn, err := p.dial()
	if err != nil {
		return err
	}
	defer closeConn()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal lesson event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.log.Debug("lesson event published",
		zap.String("action", ev.Action),
		zap.Strings("lesson_ids", ev.LessonIDs))
	return nil
}

// Discard drops every event.  It stands in when EVENTS_ENABLED is false.
type Discard struct{}

func (Discard) PublishLessonEvent(context.Context, queue.LessonEvent) error { return nil }
