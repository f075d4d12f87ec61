package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/nanafes/reservation-api/internal/model"
)

const reservationQueueName = "reservation.events"

// Publisher emits reservation events to RabbitMQ. It implements the
// booking event sink; publishing is best effort and never fails the
// request that triggered it, so every error ends up in the log rather
// than in an HTTP response.
type Publisher struct {
	url string
	log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a Publisher that dials url on first use and
// redials after a broken connection.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// ReservationBooked implements the booking event sink.
func (p *Publisher) ReservationBooked(ctx context.Context, res *model.Reservation, slot *model.TimeSlot) {
	ev := ReservationBookedEvent{
		ReservationID: res.ID,
		LineUserID:    res.OwnerID,
		BookedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if slot != nil {
		ev.TimeSlotID = slot.ID
		ev.SlotTime = slot.SlotTime.UTC().Format(time.RFC3339)
	}
	p.publish(ctx, ev)
}

// ReservationCancelled implements the booking event sink.
func (p *Publisher) ReservationCancelled(ctx context.Context, res *model.Reservation) {
	p.publish(ctx, ReservationCancelledEvent{
		ReservationID: res.ID,
		LineUserID:    res.OwnerID,
		SlotTime:      res.StartTime.UTC().Format(time.RFC3339),
		CancelledAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Publisher) publish(ctx context.Context, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshal event", zap.Error(err))
		return
	}
	ch, err := p.channel()
	if err != nil {
		p.log.Warn("broker unavailable, event dropped", zap.Error(err))
		return
	}
	err = ch.PublishWithContext(ctx, "", reservationQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Warn("publish event failed", zap.Error(err))
		p.reset()
	}
}

// channel returns the cached channel, dialing and declaring the queue
// when needed.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(reservationQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close tears down the broker connection.
func (p *Publisher) Close() { p.reset() }
