package bookingapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi/bookingapitest"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/credentials"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

func date(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func setup(t *testing.T) (*bookingapitest.Server, bookingapi.Client, credentials.Provider) {
	t.Helper()
	srv := bookingapitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddVehicle(models.Vehicle{ID: 3, Name: "Civic", DailyRate: decimal.NewFromInt(100)})

	creds := credentials.NewProvider(credentials.NewMemoryStore())
	require.NoError(t, creds.Set(context.Background(), "secret"))
	srv.SetToken("secret")

	return srv, bookingapi.NewClient(srv.URL, creds), creds
}

func TestCheckAvailability_SendsISODates(t *testing.T) {
	srv, c, _ := setup(t)

	ok, err := c.CheckAvailability(context.Background(), 3, date("2024-01-01"), date("2024-01-03"))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"2024-01-01..2024-01-03"}, srv.AvailabilityQueries())
}

func TestCheckAvailability_Negative(t *testing.T) {
	srv, c, _ := setup(t)
	srv.SetUnavailable(3, true)

	ok, err := c.CheckAvailability(context.Background(), 3, date("2024-01-01"), date("2024-01-03"))

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateBooking_RoundTrip(t *testing.T) {
	_, c, _ := setup(t)
	ctx := context.Background()

	created, err := c.CreateBooking(ctx, dto.CreateBookingRequest{
		Vehicle:        3,
		StartDate:      date("2024-01-01"),
		EndDate:        date("2024-01-03"),
		PickupTime:     "10:00",
		ReturnTime:     "18:00",
		PickupLocation: "Airport",
		ReturnLocation: "Downtown",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	summary, err := c.GetBookingSummary(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), summary.Vehicle.ID)
	require.NotNil(t, summary.Vehicle.Vehicle)
	assert.Equal(t, "Civic", summary.Vehicle.Vehicle.Name)
	assert.Equal(t, date("2024-01-01"), summary.StartDate)
	assert.Equal(t, date("2024-01-03"), summary.EndDate)
	assert.Equal(t, "Airport", summary.PickupLocation)
	assert.Equal(t, "Downtown", summary.ReturnLocation)
	assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(220)))
}

func TestIdempotencyKey_SentOnlyWhenAttached(t *testing.T) {
	srv, c, _ := setup(t)
	req := dto.CreateBookingRequest{Vehicle: 3, StartDate: date("2024-01-01"), EndDate: date("2024-01-03")}

	plain, err := c.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	ctx := bookingapi.WithIdempotencyKey(context.Background(), "draft-7")
	first, err := c.CreateBooking(ctx, req)
	require.NoError(t, err)
	replayed, err := c.CreateBooking(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "draft-7", "draft-7"}, srv.IdempotencyKeys("POST /bookings/"))
	assert.NotEqual(t, plain.ID, first.ID)
	assert.Equal(t, first.ID, replayed.ID)
}

func TestCreateBooking_UnavailableIsConflict(t *testing.T) {
	srv, c, _ := setup(t)
	srv.SetUnavailable(3, true)

	_, err := c.CreateBooking(context.Background(), dto.CreateBookingRequest{
		Vehicle: 3, StartDate: date("2024-01-01"), EndDate: date("2024-01-03"),
		PickupLocation: "A", ReturnLocation: "B",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, bookingapi.ErrVehicleUnavailable)
	assert.Equal(t, "Vehicle is not available for the selected dates", err.Error())
	assert.False(t, bookingapi.IsTransient(err))
}

func TestCreateBooking_FieldErrorMessage(t *testing.T) {
	_, c, _ := setup(t)

	_, err := c.CreateBooking(context.Background(), dto.CreateBookingRequest{
		Vehicle: 99, StartDate: date("2024-01-01"), EndDate: date("2024-01-03"),
	})

	var apiErr *bookingapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "vehicle", apiErr.Field)
	assert.ErrorIs(t, err, bookingapi.ErrRejected)
}

func TestUnauthorized_ClearsTokenAndNotifies(t *testing.T) {
	srv, c, creds := setup(t)
	srv.SetToken("rotated")

	invalidated := false
	creds.OnInvalidate(func() { invalidated = true })

	_, err := c.GetBooking(context.Background(), 1)

	assert.ErrorIs(t, err, bookingapi.ErrUnauthorized)
	assert.True(t, invalidated)
	_, ok := creds.Get(context.Background())
	assert.False(t, ok)
}

func TestServerError_IsTransient(t *testing.T) {
	srv, c, _ := setup(t)
	srv.Fail("GET /bookings/", http.StatusBadGateway, nil)

	_, err := c.GetBooking(context.Background(), 1)

	assert.ErrorIs(t, err, bookingapi.ErrServer)
	assert.True(t, bookingapi.IsTransient(err))
}

func TestTransportError_IsTransient(t *testing.T) {
	srv, c, _ := setup(t)
	srv.Close()

	_, err := c.GetBooking(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, bookingapi.IsTransient(err))
}

func TestSubmitPayment_SendsAmountGiven(t *testing.T) {
	srv, c, _ := setup(t)
	id := srv.PutBooking(models.Booking{
		Vehicle: models.VehicleRef{ID: 3}, Status: models.StatusPending,
		PaymentStatus: models.PaymentPending, TotalAmount: decimal.RequireFromString("330.00"),
	})

	p, err := c.SubmitPayment(context.Background(), id, dto.PaymentRequest{
		PaymentMethod: models.MethodUPI,
		Amount:        decimal.RequireFromString("330.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, p.PaymentStatus)
	sent := srv.LastPaymentRequest()
	require.NotNil(t, sent)
	assert.Equal(t, models.MethodUPI, sent.PaymentMethod)
	assert.Equal(t, "330", sent.Amount.String())
}

func TestCancelBooking_MessageOnlyResponse(t *testing.T) {
	srv, c, _ := setup(t)
	srv.SetCancelReturnsMessage(true)
	id := srv.PutBooking(models.Booking{
		Vehicle: models.VehicleRef{ID: 3}, Status: models.StatusPending,
		StartDate: civil.DateOf(time.Now()).AddDays(5),
	})

	b, err := c.CancelBooking(context.Background(), id)

	require.NoError(t, err)
	assert.Nil(t, b)
	stored, _ := srv.Booking(id)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestContextCancelled(t *testing.T) {
	srv, c, _ := setup(t)
	srv.SetAvailabilityDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, err := c.CheckAvailability(ctx, 3, date("2024-01-01"), date("2024-01-03"))

	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type mapCache struct {
	items map[uint]*models.Vehicle
	puts  int
}

func (m *mapCache) Get(ctx context.Context, id uint) (*models.Vehicle, bool) {
	v, ok := m.items[id]
	return v, ok
}

func (m *mapCache) Put(ctx context.Context, v *models.Vehicle) {
	m.items[v.ID] = v
	m.puts++
}

func TestGetVehicle_UsesCache(t *testing.T) {
	srv := bookingapitest.NewServer()
	defer srv.Close()
	srv.AddVehicle(models.Vehicle{ID: 3, Name: "Civic", DailyRate: decimal.NewFromInt(100)})

	cache := &mapCache{items: map[uint]*models.Vehicle{}}
	c := bookingapi.NewClient(srv.URL, credentials.NewProvider(credentials.NewMemoryStore()),
		bookingapi.WithVehicleCache(cache))

	v1, err := c.GetVehicle(context.Background(), 3)
	require.NoError(t, err)
	v2, err := c.GetVehicle(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "Civic", v1.Name)
	assert.Same(t, v1, v2)
	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, 1, srv.RequestCount("GET /vehicles/3/"))
}
