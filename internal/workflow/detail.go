package workflow

import (
	"context"
	"log"
	"sync"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

// Detail shows a persisted booking, its status history and the actions
// the customer may take. Status only changes from what the Booking Service
// returns.
type Detail struct {
	client    bookingapi.Client
	bookingID uint
	opts      options
	life      lifetime

	mu         sync.Mutex
	booking    *models.Booking
	cancelling bool
}

func NewDetail(client bookingapi.Client, bookingID uint, opts ...Option) *Detail {
	return &Detail{
		client:    client,
		bookingID: bookingID,
		opts:      buildOptions(opts),
		life:      newLifetime(),
	}
}

func (d *Detail) BookingID() uint { return d.bookingID }

func (d *Detail) Load(ctx context.Context) (*models.Booking, error) {
	return d.Refresh(ctx)
}

// Refresh replaces the displayed booking with a fresh fetch. On failure
// the current one stays.
func (d *Detail) Refresh(ctx context.Context) (*models.Booking, error) {
	cctx, cancel := d.life.bind(ctx)
	b, err := d.client.GetBooking(cctx, d.bookingID)
	cancel()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.life.closed() {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		b.ID = d.bookingID
	}
	d.booking = b
	return cloneBooking(b), nil
}

// Cancel asks the Booking Service to cancel. A failed call leaves the view
// as it was.
func (d *Detail) Cancel(ctx context.Context) (*models.Booking, error) {
	d.mu.Lock()
	switch {
	case d.life.closed():
		d.mu.Unlock()
		return nil, ErrClosed
	case d.booking == nil:
		d.mu.Unlock()
		return nil, ErrNotLoaded
	case d.cancelling:
		d.mu.Unlock()
		return nil, ErrBusy
	case !ActionsFor(*d.booking, d.opts.today()).Has(ActionCancel):
		d.mu.Unlock()
		return nil, ErrActionNotAllowed
	}
	d.cancelling = true
	d.mu.Unlock()

	cctx, cancel := d.life.bind(ctx)
	updated, err := d.client.CancelBooking(cctx, d.bookingID)
	cancel()

	d.mu.Lock()
	d.cancelling = false
	if d.life.closed() {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		d.mu.Unlock()
		log.Printf("[Workflow] cancel booking %d failed: %v", d.bookingID, err)
		return nil, err
	}
	if updated != nil {
		d.booking = updated
	} else {
		d.booking.Status = models.StatusCancelled
	}
	current := cloneBooking(d.booking)
	d.mu.Unlock()

	publish(d.opts.publisher, EventBookingCancelled, current)

	fresh, err := d.Refresh(ctx)
	if err != nil {
		log.Printf("[Workflow] refresh after cancel for booking %d: %v", d.bookingID, err)
		return current, nil
	}
	return fresh, nil
}

func (d *Detail) Booking() *models.Booking {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneBooking(d.booking)
}

// History is the status history exactly as the Booking Service ordered it.
func (d *Detail) History() []models.StatusChange {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.booking == nil {
		return nil
	}
	return append([]models.StatusChange(nil), d.booking.StatusHistory...)
}

func (d *Detail) Actions() ActionSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.booking == nil {
		return 0
	}
	return ActionsFor(*d.booking, d.opts.today())
}

func (d *Detail) Close() { d.life.close() }
