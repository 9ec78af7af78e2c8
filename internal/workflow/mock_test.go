package workflow

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

// --- Mock bookingapi.Client ---

type mockClient struct {
	availabilityFn func(ctx context.Context, vehicleID uint, start, end civil.Date) (bool, error)
	createFn       func(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error)
	updateFn       func(ctx context.Context, id uint, req dto.CreateBookingRequest) (*models.Booking, error)
	summaryFn      func(ctx context.Context, id uint) (*models.Booking, error)
	paymentFn      func(ctx context.Context, id uint, req dto.PaymentRequest) (*models.Payment, error)
	cancelFn       func(ctx context.Context, id uint) (*models.Booking, error)
	getFn          func(ctx context.Context, id uint) (*models.Booking, error)
	vehicleFn      func(ctx context.Context, id uint) (*models.Vehicle, error)

	availabilityCalls int
	createCalls       int
	updateCalls       int
	summaryCalls      int
	paymentCalls      int
	cancelCalls       int
	getCalls          int
}

func (m *mockClient) CheckAvailability(ctx context.Context, vehicleID uint, start, end civil.Date) (bool, error) {
	m.availabilityCalls++
	return m.availabilityFn(ctx, vehicleID, start, end)
}
func (m *mockClient) CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	m.createCalls++
	return m.createFn(ctx, req)
}
func (m *mockClient) UpdateBooking(ctx context.Context, id uint, req dto.CreateBookingRequest) (*models.Booking, error) {
	m.updateCalls++
	return m.updateFn(ctx, id, req)
}
func (m *mockClient) GetBookingSummary(ctx context.Context, id uint) (*models.Booking, error) {
	m.summaryCalls++
	return m.summaryFn(ctx, id)
}
func (m *mockClient) SubmitPayment(ctx context.Context, id uint, req dto.PaymentRequest) (*models.Payment, error) {
	m.paymentCalls++
	return m.paymentFn(ctx, id, req)
}
func (m *mockClient) CancelBooking(ctx context.Context, id uint) (*models.Booking, error) {
	m.cancelCalls++
	return m.cancelFn(ctx, id)
}
func (m *mockClient) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	m.getCalls++
	return m.getFn(ctx, id)
}
func (m *mockClient) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	return m.vehicleFn(ctx, id)
}

// --- Mock Publisher ---

type mockPublisher struct {
	keys []string
}

func (p *mockPublisher) Publish(routingKey string, payload any) error {
	p.keys = append(p.keys, routingKey)
	return nil
}

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedToday(s string) Option {
	d := date(s)
	return WithToday(func() civil.Date { return d })
}
