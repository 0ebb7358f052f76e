// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged and returned so callers can ignore failures without interrupting
// the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/seatflow/seating-service/internal/model"
	q "github.com/seatflow/seating-service/internal/queue"
)

const seatBookedQueueName = "seat.booked"

// PublishSeatBooked publishes a SeatBookedEvent to the seat.booked queue.
// The function never panics; any error is logged and returned so the caller
// can choose to ignore it. Messages are marked as persistent.
func PublishSeatBooked(ctx context.Context, event q.SeatBookedEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
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

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(seatBookedQueueName, true, false, false, false, nil); err != nil {
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
		"",                  // default exchange
		seatBookedQueueName, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}

// BookedPublisher adapts PublishSeatBooked to the booking.EventSink
// interface consumed by the coordinator.
type BookedPublisher struct{}

// SeatBooked builds a SeatBookedEvent for the finalized reservation and
// publishes it. Publish failures are already logged; the booking itself is
// durable by the time this runs, so the error is dropped.
func (BookedPublisher) SeatBooked(ctx context.Context, res model.Reservation, bookedAt time.Time) {
	_ = PublishSeatBooked(ctx, q.SeatBookedEvent{
		EventID:      uuid.NewString(),
		CorrelatorID: res.CorrelatorID,
		ShowingID:    res.ShowingID,
		MovieName:    res.Title,
		SeatNumber:   res.SeatNumber,
		Showtime:     res.StartsAt.UTC().Format(time.RFC3339),
		BookedAt:     bookedAt.UTC().Format(time.RFC3339),
	})
}
