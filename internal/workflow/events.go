package workflow

import (
	"log"
	"time"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

const (
	EventBookingSubmitted = "workflow.booking_submitted"
	EventBookingUpdated   = "workflow.booking_updated"
	EventPaymentSubmitted = "workflow.payment_submitted"
	EventBookingCancelled = "workflow.booking_cancelled"
)

type Event struct {
	Type      string               `json:"type"`
	BookingID uint                 `json:"booking_id"`
	VehicleID uint                 `json:"vehicle_id,omitempty"`
	Status    models.BookingStatus `json:"status,omitempty"`
	At        time.Time            `json:"at"`
}

func publish(p Publisher, eventType string, b *models.Booking) {
	if p == nil || b == nil {
		return
	}
	ev := Event{
		Type:      eventType,
		BookingID: b.ID,
		VehicleID: b.Vehicle.ID,
		Status:    b.Status,
		At:        time.Now().UTC(),
	}
	if err := p.Publish(eventType, ev); err != nil {
		log.Printf("[Workflow] publish %s for booking %d: %v", eventType, b.ID, err)
	}
}
