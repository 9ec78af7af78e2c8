package workflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
)

// AvailabilityChecker asks the Booking Service whether a vehicle is free.
// Every failure reads as unavailable.
type AvailabilityChecker struct {
	client  bookingapi.Client
	timeout time.Duration
}

func NewAvailabilityChecker(client bookingapi.Client, timeout time.Duration) *AvailabilityChecker {
	return &AvailabilityChecker{client: client, timeout: timeout}
}

func (a *AvailabilityChecker) Check(ctx context.Context, vehicleID uint, start, end civil.Date) (bool, error) {
	if start.IsZero() || end.IsZero() {
		return false, &ValidationError{Field: "start_date", Message: "Please select rental dates"}
	}
	if !start.Before(end) {
		return false, &ValidationError{Field: "end_date", Message: "End date must be after start date"}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	available, err := a.client.CheckAvailability(ctx, vehicleID, start, end)
	if err != nil {
		log.Printf("[Workflow] availability check for vehicle %d %s..%s failed: %v", vehicleID, start, end, err)
		return false, fmt.Errorf("check availability: %w", err)
	}
	return available, nil
}
