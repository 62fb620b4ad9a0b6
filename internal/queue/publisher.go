package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const notificationQueueName = "coachbox.notifications"

// Publisher publishes notification events to RabbitMQ. Errors are logged
// and returned so callers can ignore failures without interrupting the
// main request flow; a nil *Publisher is a no-op, which lets the broker be
// optional in deployments that do not run one.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// ProgrammingUpdated announces that a new week of programming materials
// was ingested.
func (p *Publisher) ProgrammingUpdated(ctx context.Context, weekNumber int) error {
	return p.publish(ctx, NotificationEvent{
		Kind:       KindProgrammingUpdated,
		WeekNumber: weekNumber,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// UserSignedUp announces a new account.
func (p *Publisher) UserSignedUp(ctx context.Context, userID uint64, email string) error {
	return p.publish(ctx, NotificationEvent{
		Kind:       KindUserSignedUp,
		UserID:     userID,
		UserEmail:  email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// publish dials, declares the queue (idempotent, durable) and sends one
// persistent message. A connection per publish keeps the publisher robust
// against broker restarts at the cost of a little latency, which is fine
// for the volume these events see.
func (p *Publisher) publish(ctx context.Context, event NotificationEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		notificationQueueName, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		notificationQueueName, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
