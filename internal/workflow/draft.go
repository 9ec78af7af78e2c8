package workflow

import (
	"context"
	"log"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

type DraftState string

const (
	StateEmpty                DraftState = "empty"
	StateDatesSelected        DraftState = "dates_selected"
	StateAvailabilityChecking DraftState = "availability_checking"
	StateAvailable            DraftState = "available"
	StateUnavailable          DraftState = "unavailable"
	StateSubmitting           DraftState = "submitting"
	StateSubmitted            DraftState = "submitted"
	StateSubmissionFailed     DraftState = "submission_failed"
)

type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityChecking    Availability = "checking"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// Details are the non-date fields of a draft.
type Details struct {
	PickupTime      string
	ReturnTime      string
	PickupLocation  string
	ReturnLocation  string
	SpecialRequests string
}

// DraftSnapshot is a consistent copy of a draft form for rendering.
type DraftSnapshot struct {
	State        DraftState
	Draft        models.BookingDraft
	Vehicle      *models.Vehicle
	Availability Availability
	CanSubmit    bool
	Problems     ValidationErrors
	Estimate     *Estimate
	BookingID    uint
	EditingID    uint
	LastError    error
}

// DraftForm is the booking form state machine. Submission is only possible
// after a successful availability check for the dates currently selected.
type DraftForm struct {
	client  bookingapi.Client
	checker *AvailabilityChecker
	opts    options
	life    lifetime

	mu           sync.Mutex
	state        DraftState
	draft        models.BookingDraft
	vehicle      models.Vehicle
	availability Availability
	generation   uint64
	submitKey    string
	editingID    uint
	bookingID    uint
	lastErr      error
}

func NewDraftForm(client bookingapi.Client, checker *AvailabilityChecker, vehicle models.Vehicle, opts ...Option) *DraftForm {
	return &DraftForm{
		client:       client,
		checker:      checker,
		opts:         buildOptions(opts),
		life:         newLifetime(),
		state:        StateEmpty,
		draft:        models.BookingDraft{VehicleID: vehicle.ID},
		vehicle:      vehicle,
		availability: AvailabilityUnknown,
	}
}

// NewEditForm reopens a pending booking. The dates must be re-checked
// before the change can be submitted.
func NewEditForm(client bookingapi.Client, checker *AvailabilityChecker, vehicle models.Vehicle, b models.Booking, opts ...Option) (*DraftForm, error) {
	o := buildOptions(opts)
	if !ActionsFor(b, o.today()).Has(ActionEdit) {
		return nil, ErrActionNotAllowed
	}

	f := NewDraftForm(client, checker, vehicle, opts...)
	f.editingID = b.ID
	f.draft = models.BookingDraft{
		VehicleID:       b.Vehicle.ID,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		PickupTime:      b.PickupTime,
		ReturnTime:      b.ReturnTime,
		PickupLocation:  b.PickupLocation,
		ReturnLocation:  b.ReturnLocation,
		SpecialRequests: b.SpecialRequests,
	}
	if f.draft.HasDates() {
		f.state = StateDatesSelected
	}
	return f, nil
}

// SelectDates replaces the date range. Any earlier availability answer is
// forgotten, even when the new range is rejected.
func (f *DraftForm) SelectDates(start, end civil.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return err
	}

	f.generation++
	f.submitKey = ""
	f.availability = AvailabilityUnknown
	f.lastErr = nil
	if f.state != StateEmpty {
		f.state = StateDatesSelected
	}

	today := f.opts.today()
	last := today.AddDays(BookingWindow)
	switch {
	case start.IsZero() || !start.IsValid():
		return &ValidationError{Field: "start_date", Message: "Please select a start date"}
	case end.IsZero() || !end.IsValid():
		return &ValidationError{Field: "end_date", Message: "Please select an end date"}
	case start.Before(today) || start.After(last):
		return &ValidationError{Field: "start_date", Message: "Start date must be between today and 90 days from now"}
	case end.Before(today) || end.After(last):
		return &ValidationError{Field: "end_date", Message: "End date must be between today and 90 days from now"}
	}

	f.draft.StartDate = start
	f.draft.EndDate = end
	f.state = StateDatesSelected
	return nil
}

func (f *DraftForm) SetDetails(d Details) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.editableLocked(); err != nil {
		return err
	}
	f.draft.PickupTime = d.PickupTime
	f.draft.ReturnTime = d.ReturnTime
	f.draft.PickupLocation = d.PickupLocation
	f.draft.ReturnLocation = d.ReturnLocation
	f.draft.SpecialRequests = d.SpecialRequests
	f.submitKey = ""
	return nil
}

// CheckAvailability runs the explicit availability check for the current
// range. Only the latest check counts; an answer superseded by a newer
// check or a date change is dropped, as is one arriving after Close.
func (f *DraftForm) CheckAvailability(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if err := f.editableLocked(); err != nil {
		f.mu.Unlock()
		return false, err
	}
	if !f.draft.HasDates() {
		f.mu.Unlock()
		return false, &ValidationError{Field: "start_date", Message: "Please select rental dates"}
	}
	f.generation++
	gen := f.generation
	vehicleID, start, end := f.draft.VehicleID, f.draft.StartDate, f.draft.EndDate
	f.availability = AvailabilityChecking
	f.state = StateAvailabilityChecking
	f.mu.Unlock()

	cctx, cancel := f.life.bind(ctx)
	available, err := f.checker.Check(cctx, vehicleID, start, end)
	cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.life.closed() {
		return false, ErrClosed
	}
	if gen != f.generation {
		return false, ErrStaleResult
	}

	f.lastErr = err
	if available {
		f.availability = AvailabilityAvailable
		f.state = StateAvailable
	} else {
		f.availability = AvailabilityUnavailable
		f.state = StateUnavailable
	}
	return available, err
}

// Validate runs the local checks that gate submission.
func (f *DraftForm) Validate() ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validateDraft(f.draft, f.opts.today())
}

func (f *DraftForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked() == nil
}

// Submit sends the draft. It refuses locally, without a request, unless the
// current range was confirmed available and the draft validates. A failed
// submission requires a new availability check. Retries of an unchanged
// draft after a transient failure reuse the same idempotency key.
func (f *DraftForm) Submit(ctx context.Context) (*models.Booking, error) {
	f.mu.Lock()
	if err := f.canSubmitLocked(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	req := dto.NewCreateBookingRequest(trimmed(f.draft))
	editingID := f.editingID
	if f.submitKey == "" {
		f.submitKey = uuid.NewString()
	}
	key := f.submitKey
	f.state = StateSubmitting
	f.mu.Unlock()

	cctx, cancel := f.life.bind(bookingapi.WithIdempotencyKey(ctx, key))
	var (
		booking *models.Booking
		err     error
	)
	if editingID != 0 {
		booking, err = f.client.UpdateBooking(cctx, editingID, req)
	} else {
		booking, err = f.client.CreateBooking(cctx, req)
	}
	cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.life.closed() {
		return nil, ErrClosed
	}

	if err != nil {
		log.Printf("[Workflow] submit draft for vehicle %d failed: %v", req.Vehicle, err)
		f.state = StateSubmissionFailed
		f.availability = AvailabilityUnavailable
		f.generation++
		f.lastErr = err
		if !bookingapi.IsTransient(err) {
			f.submitKey = ""
		}
		return nil, err
	}

	f.state = StateSubmitted
	f.bookingID = booking.ID
	f.lastErr = nil
	f.draft = models.BookingDraft{VehicleID: f.draft.VehicleID}

	if editingID != 0 {
		publish(f.opts.publisher, EventBookingUpdated, booking)
	} else {
		publish(f.opts.publisher, EventBookingSubmitted, booking)
	}
	return booking, nil
}

// Estimate is the display-only price hint for the selected range.
func (f *DraftForm) Estimate() (Estimate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.estimateLocked()
}

func (f *DraftForm) Snapshot() DraftSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := f.vehicle
	snap := DraftSnapshot{
		State:        f.state,
		Draft:        f.draft,
		Vehicle:      &v,
		Availability: f.availability,
		CanSubmit:    f.canSubmitLocked() == nil,
		BookingID:    f.bookingID,
		EditingID:    f.editingID,
		LastError:    f.lastErr,
	}
	if f.state != StateSubmitted {
		snap.Problems = validateDraft(f.draft, f.opts.today())
	}
	if est, ok := f.estimateLocked(); ok {
		snap.Estimate = &est
	}
	return snap
}

// Close ends the view. Requests still in flight are cancelled and their
// answers ignored.
func (f *DraftForm) Close() {
	f.life.close()
}

func (f *DraftForm) editableLocked() error {
	switch {
	case f.life.closed():
		return ErrClosed
	case f.state == StateSubmitting:
		return ErrBusy
	case f.state == StateSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}

func (f *DraftForm) canSubmitLocked() error {
	if err := f.editableLocked(); err != nil {
		return err
	}
	if f.availability != AvailabilityAvailable {
		return ErrAvailabilityRequired
	}
	if problems := validateDraft(f.draft, f.opts.today()); len(problems) > 0 {
		return problems
	}
	return nil
}

func (f *DraftForm) estimateLocked() (Estimate, bool) {
	d := f.draft
	if !d.HasDates() || d.EndDate.Before(d.StartDate) {
		return Estimate{}, false
	}
	return EstimateDraft(d.StartDate, d.EndDate, f.vehicle.DailyRate), true
}

func validateDraft(d models.BookingDraft, today civil.Date) ValidationErrors {
	var problems ValidationErrors
	if !d.HasDates() {
		problems = append(problems, &ValidationError{Field: "start_date", Message: "Please select rental dates"})
	} else {
		problems = append(problems, validateRange(d.StartDate, d.EndDate, today)...)
	}
	if strings.TrimSpace(d.PickupLocation) == "" {
		problems = append(problems, &ValidationError{Field: "pickup_location", Message: "Pickup location is required"})
	}
	if strings.TrimSpace(d.ReturnLocation) == "" {
		problems = append(problems, &ValidationError{Field: "return_location", Message: "Return location is required"})
	}
	return problems
}

// validateRange applies the date rules: no past start, end strictly after
// start, at most MaxRentalDays between them.
func validateRange(start, end, today civil.Date) ValidationErrors {
	var problems ValidationErrors
	if start.Before(today) {
		problems = append(problems, &ValidationError{Field: "start_date", Message: "Start date cannot be in the past"})
	}
	if !start.Before(end) {
		problems = append(problems, &ValidationError{Field: "end_date", Message: "End date must be after start date"})
	} else if end.DaysSince(start) > MaxRentalDays {
		problems = append(problems, &ValidationError{Field: "end_date", Message: "Maximum booking duration is 30 days"})
	}
	return problems
}

func trimmed(d models.BookingDraft) models.BookingDraft {
	d.PickupLocation = strings.TrimSpace(d.PickupLocation)
	d.ReturnLocation = strings.TrimSpace(d.ReturnLocation)
	return d
}
