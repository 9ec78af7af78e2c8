package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

// StatusNotification is published by the Booking Service whenever a
// booking changes status outside this gateway.
type StatusNotification struct {
	BookingID uint                 `json:"booking_id"`
	Status    models.BookingStatus `json:"status"`
	Reason    string               `json:"reason,omitempty"`
}

// BookingRefresher re-fetches open views of a booking.
type BookingRefresher interface {
	RefreshBooking(ctx context.Context, bookingID uint) int
}

type StatusConsumer struct {
	views   BookingRefresher
	timeout time.Duration
}

func NewStatusConsumer(views BookingRefresher, timeout time.Duration) *StatusConsumer {
	return &StatusConsumer{views: views, timeout: timeout}
}

// Start drains msgs in the background. The notification only triggers a
// fetch; its status value is never applied to a view directly.
func (sc *StatusConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			sc.handleMessage(msg)
		}
		log.Println("[StatusConsumer] channel closed, stopping consumer")
	}()
}

func (sc *StatusConsumer) handleMessage(msg amqp.Delivery) {
	var n StatusNotification
	if err := json.Unmarshal(msg.Body, &n); err != nil || n.BookingID == 0 {
		log.Printf("[StatusConsumer] dropping malformed notification %q: %v", msg.RoutingKey, err)
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sc.timeout)
	defer cancel()

	refreshed := sc.views.RefreshBooking(ctx, n.BookingID)
	log.Printf("[StatusConsumer] booking %d is now %s, refreshed %d views", n.BookingID, n.Status, refreshed)
	msg.Ack(false)
}
