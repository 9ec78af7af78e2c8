package service

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi/bookingapitest"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/credentials"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/workflow"
)

func setup(t *testing.T) (*bookingapitest.Server, *bookingService) {
	t.Helper()
	srv := bookingapitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddVehicle(models.Vehicle{ID: 3, Name: "Civic", DailyRate: decimal.NewFromInt(100)})

	client := bookingapi.NewClient(srv.URL, credentials.NewProvider(credentials.NewMemoryStore()))
	checker := workflow.NewAvailabilityChecker(client, time.Second)
	svc := NewBookingService(client, checker, time.Minute).(*bookingService)
	return srv, svc
}

func pendingIn(srv *bookingapitest.Server, days int) uint {
	start := civil.DateOf(time.Now()).AddDays(days)
	return srv.PutBooking(models.Booking{
		Vehicle:        models.VehicleRef{ID: 3},
		StartDate:      start,
		EndDate:        start.AddDays(2),
		PickupLocation: "Airport",
		ReturnLocation: "Downtown",
		DailyRate:      decimal.NewFromInt(100),
		TotalAmount:    decimal.NewFromInt(220),
		Status:         models.StatusPending,
		PaymentStatus:  models.PaymentPending,
	})
}

func TestOpenDraft_LoadsVehicle(t *testing.T) {
	_, svc := setup(t)

	sid, form, err := svc.OpenDraft(context.Background(), 3)

	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	assert.Equal(t, "Civic", form.Snapshot().Vehicle.Name)

	again, err := svc.Draft(sid)
	require.NoError(t, err)
	assert.Same(t, form, again)
}

func TestOpenDraft_UnknownVehicle(t *testing.T) {
	_, svc := setup(t)

	_, _, err := svc.OpenDraft(context.Background(), 99)

	assert.ErrorIs(t, err, bookingapi.ErrNotFound)
	assert.Empty(t, svc.sessions)
}

func TestLookup_WrongKind(t *testing.T) {
	srv, svc := setup(t)
	id := pendingIn(srv, 5)
	sid, _, err := svc.OpenDetail(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Draft(sid)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Summary(sid)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Detail(sid)
	assert.NoError(t, err)
}

func TestOpenEdit_PendingOnly(t *testing.T) {
	srv, svc := setup(t)
	id := pendingIn(srv, 5)

	_, form, err := svc.OpenEdit(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, form.Snapshot().EditingID)

	srv.SetStatus(id, models.StatusConfirmed, "Payment completed")
	_, _, err = svc.OpenEdit(context.Background(), id)
	assert.ErrorIs(t, err, workflow.ErrActionNotAllowed)
}

func TestClose_EndsView(t *testing.T) {
	_, svc := setup(t)
	sid, form, err := svc.OpenDraft(context.Background(), 3)
	require.NoError(t, err)

	require.NoError(t, svc.Close(sid))

	assert.ErrorIs(t, form.SetDetails(workflow.Details{}), workflow.ErrClosed)
	assert.ErrorIs(t, svc.Close(sid), ErrSessionNotFound)
}

func TestSweep_ClosesIdleSessions(t *testing.T) {
	_, svc := setup(t)
	now := time.Now()
	svc.now = func() time.Time { return now }

	idle, form, err := svc.OpenDraft(context.Background(), 3)
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	active, _, err := svc.OpenDraft(context.Background(), 3)
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	assert.Equal(t, 1, svc.Sweep())

	_, err = svc.Draft(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, form.SetDetails(workflow.Details{}), workflow.ErrClosed)
	_, err = svc.Draft(active)
	assert.NoError(t, err)
}

func TestRefreshBooking_UpdatesOpenViews(t *testing.T) {
	srv, svc := setup(t)
	id := pendingIn(srv, 5)
	other := pendingIn(srv, 6)

	_, detail, err := svc.OpenDetail(context.Background(), id)
	require.NoError(t, err)
	_, summary, err := svc.OpenSummary(context.Background(), id)
	require.NoError(t, err)
	_, _, err = svc.OpenDetail(context.Background(), other)
	require.NoError(t, err)

	srv.SetStatus(id, models.StatusConfirmed, "Confirmed by operator")
	n := svc.RefreshBooking(context.Background(), id)

	assert.Equal(t, 2, n)
	assert.Equal(t, models.StatusConfirmed, detail.Booking().Status)
	assert.Equal(t, models.StatusConfirmed, summary.Booking().Status)
}
