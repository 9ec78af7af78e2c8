package workflow

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

// Summary is the checkout step for a submitted booking. Everything it shows
// and charges comes from the Booking Service, keyed by the booking id.
type Summary struct {
	client    bookingapi.Client
	bookingID uint
	opts      options
	life      lifetime

	mu      sync.Mutex
	booking *models.Booking
	method  models.PaymentMethod
	paying  bool
	payKey  string
	payment *models.Payment
}

func NewSummary(client bookingapi.Client, bookingID uint, opts ...Option) *Summary {
	return &Summary{
		client:    client,
		bookingID: bookingID,
		opts:      buildOptions(opts),
		life:      newLifetime(),
		method:    models.MethodCard,
	}
}

func (s *Summary) BookingID() uint { return s.bookingID }

// Load fetches the authoritative booking and totals.
func (s *Summary) Load(ctx context.Context) (*models.Booking, error) {
	cctx, cancel := s.life.bind(ctx)
	b, err := s.client.GetBookingSummary(cctx, s.bookingID)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.life.closed() {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		b.ID = s.bookingID
	}
	if s.booking != nil && !s.booking.TotalAmount.Equal(b.TotalAmount) {
		s.payKey = ""
	}
	s.booking = b
	return cloneBooking(b), nil
}

func (s *Summary) SelectPaymentMethod(m models.PaymentMethod) error {
	if !m.Valid() {
		return &ValidationError{Field: "payment_method", Message: fmt.Sprintf("Unsupported payment method %q", m)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life.closed() {
		return ErrClosed
	}
	if s.method != m {
		s.payKey = ""
	}
	s.method = m
	return nil
}

func (s *Summary) PaymentMethod() models.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// Pay submits payment for the loaded booking's total_amount and refuses when
// the summary carried no total. The displayed booking is only replaced by a
// fresh fetch after the payment succeeded.
func (s *Summary) Pay(ctx context.Context) (*models.Payment, error) {
	s.mu.Lock()
	switch {
	case s.life.closed():
		s.mu.Unlock()
		return nil, ErrClosed
	case s.booking == nil, s.booking.TotalAmount.IsZero():
		s.mu.Unlock()
		return nil, ErrNotLoaded
	case s.paying:
		s.mu.Unlock()
		return nil, ErrBusy
	case !ActionsFor(*s.booking, s.opts.today()).Has(ActionPay):
		s.mu.Unlock()
		return nil, ErrActionNotAllowed
	}
	req := dto.PaymentRequest{
		PaymentMethod: s.method,
		Amount:        s.booking.TotalAmount,
	}
	if s.payKey == "" {
		s.payKey = uuid.NewString()
	}
	key := s.payKey
	s.paying = true
	s.mu.Unlock()

	cctx, cancel := s.life.bind(bookingapi.WithIdempotencyKey(ctx, key))
	payment, err := s.client.SubmitPayment(cctx, s.bookingID, req)
	cancel()

	s.mu.Lock()
	s.paying = false
	if s.life.closed() {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		if !bookingapi.IsTransient(err) {
			s.payKey = ""
		}
		s.mu.Unlock()
		log.Printf("[Workflow] payment for booking %d failed: %v", s.bookingID, err)
		return nil, err
	}
	s.payment = payment
	s.payKey = ""
	s.mu.Unlock()

	b, err := s.Load(ctx)
	if err != nil {
		log.Printf("[Workflow] refresh after payment for booking %d: %v", s.bookingID, err)
	}
	publish(s.opts.publisher, EventPaymentSubmitted, b)
	return payment, nil
}

func (s *Summary) Booking() *models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBooking(s.booking)
}

func (s *Summary) Payment() *models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payment == nil {
		return nil
	}
	p := *s.payment
	return &p
}

// DurationHint is the checkout page's display-only day count.
func (s *Summary) DurationHint() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booking == nil {
		return 0
	}
	return SummaryDurationDays(s.booking.StartDate, s.booking.EndDate)
}

func (s *Summary) Close() { s.life.close() }

func cloneBooking(b *models.Booking) *models.Booking {
	if b == nil {
		return nil
	}
	out := *b
	out.StatusHistory = append([]models.StatusChange(nil), b.StatusHistory...)
	return &out
}
