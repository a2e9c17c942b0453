package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinema-admin/internal/model"
	q "github.com/iliyamo/cinema-admin/internal/queue"
)

// EventPublisher delivers transaction events.  Implementations must be
// safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, ev q.TransactionEvent) error
}

// AMQPPublisher publishes events to the durable transaction queue on a
// RabbitMQ broker.  Each call dials, declares and publishes; sales are
// rare enough that a pooled channel is not worth its reconnect logic.
type AMQPPublisher struct {
	URL string
}

// maxDialTimeout caps the broker connect when ctx carries no deadline.
const maxDialTimeout = 2 * time.Second

// dialTimeout is the time left before ctx expires, capped at
// maxDialTimeout.  amqp.Dial does not take a context.
func dialTimeout(ctx context.Context, now time.Time) time.Duration {
	d := maxDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := deadline.Sub(now); left < d {
			d = left
		}
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

// Publish sends ev as a persistent JSON message.  Errors are returned so
// the caller can log them; they never undo the sale.  The broker connect
// is bounded by ctx so an unreachable broker cannot hold the response.
func (p *AMQPPublisher) Publish(ctx context.Context, ev q.TransactionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout(ctx, time.Now())),
	})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.QueueName, // name
		true,        // durable
		false,       // autoDelete
		false,       // exclusive
		false,       // noWait
		nil,         // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",          // default exchange
		q.QueueName, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // store on disk
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// newTransactionEvent builds the event for tr.  st may be nil.
func newTransactionEvent(kind string, tr *model.Transaction, st *model.Showtime, at time.Time) q.TransactionEvent {
	ev := q.TransactionEvent{
		Type:          kind,
		TransactionID: tr.ID,
		ShowtimeID:    tr.ShowtimeID,
		Seats:         tr.Seats,
		TotalPrice:    tr.TotalPrice,
		PaymentMethod: string(tr.PaymentMethod),
		Status:        string(tr.Status),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
	if st != nil {
		ev.StartsAt = st.StartTime.UTC().Format(time.RFC3339)
		if st.Movie != nil {
			ev.MovieTitle = st.Movie.Title
		}
	}
	return ev
}
