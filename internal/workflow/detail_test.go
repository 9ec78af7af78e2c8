package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

func confirmedBooking() *models.Booking {
	t0 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:            8,
		Vehicle:       models.VehicleRef{ID: 3},
		StartDate:     date("2024-01-10"),
		EndDate:       date("2024-01-12"),
		Status:        models.StatusConfirmed,
		PaymentStatus: models.PaymentPaid,
		StatusHistory: []models.StatusChange{
			{OldStatus: models.StatusPending, NewStatus: models.StatusConfirmed, Reason: "Payment completed", CreatedAt: t0.Add(time.Hour)},
			{NewStatus: models.StatusPending, Reason: "Booking created", CreatedAt: t0},
		},
	}
}

func detailClient() *mockClient {
	return &mockClient{
		getFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return confirmedBooking(), nil
		},
	}
}

func TestDetail_HistoryKeepsReceivedOrder(t *testing.T) {
	d := NewDetail(detailClient(), 8, fixedToday("2024-01-01"))
	_, err := d.Load(context.Background())
	require.NoError(t, err)

	h := d.History()

	require.Len(t, h, 2)
	assert.Equal(t, "Payment completed", h[0].Reason)
	assert.Equal(t, "Booking created", h[1].Reason)
	assert.Equal(t, []Action{ActionCancel}, d.Actions().List())
}

func TestDetail_CancelFailureLeavesView(t *testing.T) {
	client := detailClient()
	client.cancelFn = func(ctx context.Context, id uint) (*models.Booking, error) {
		return nil, errors.New("timeout")
	}
	d := NewDetail(client, 8, fixedToday("2024-01-01"))
	_, err := d.Load(context.Background())
	require.NoError(t, err)

	_, err = d.Cancel(context.Background())

	require.Error(t, err)
	assert.Equal(t, models.StatusConfirmed, d.Booking().Status)
	assert.Equal(t, []Action{ActionCancel}, d.Actions().List())
	assert.Equal(t, 1, client.getCalls)
}

func TestDetail_CancelSuccess(t *testing.T) {
	client := detailClient()
	cancelled := false
	client.cancelFn = func(ctx context.Context, id uint) (*models.Booking, error) {
		cancelled = true
		return nil, nil
	}
	client.getFn = func(ctx context.Context, id uint) (*models.Booking, error) {
		b := confirmedBooking()
		if cancelled {
			b.Status = models.StatusCancelled
		}
		return b, nil
	}
	pub := &mockPublisher{}
	d := NewDetail(client, 8, fixedToday("2024-01-01"), WithPublisher(pub))
	_, err := d.Load(context.Background())
	require.NoError(t, err)

	b, err := d.Cancel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.Empty(t, d.Actions().List())
	assert.Equal(t, 2, client.getCalls)
	assert.Equal(t, []string{EventBookingCancelled}, pub.keys)
}

func TestDetail_CancelSucceedsWhenRefreshFails(t *testing.T) {
	client := detailClient()
	client.cancelFn = func(ctx context.Context, id uint) (*models.Booking, error) {
		client.getFn = func(ctx context.Context, id uint) (*models.Booking, error) {
			return nil, errors.New("connection refused")
		}
		return nil, nil
	}
	d := NewDetail(client, 8, fixedToday("2024-01-01"))
	_, err := d.Load(context.Background())
	require.NoError(t, err)

	b, err := d.Cancel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.Equal(t, models.StatusCancelled, d.Booking().Status)
}

func TestDetail_CancelNotAllowedAfterStart(t *testing.T) {
	client := detailClient()
	d := NewDetail(client, 8, fixedToday("2024-01-11"))
	_, err := d.Load(context.Background())
	require.NoError(t, err)

	_, err = d.Cancel(context.Background())

	assert.ErrorIs(t, err, ErrActionNotAllowed)
	assert.Equal(t, 0, client.cancelCalls)
}

func TestDetail_RefreshFailureKeepsCurrent(t *testing.T) {
	client := detailClient()
	d := NewDetail(client, 8, fixedToday("2024-01-01"))
	_, err := d.Load(context.Background())
	require.NoError(t, err)

	client.getFn = func(ctx context.Context, id uint) (*models.Booking, error) {
		return nil, errors.New("boom")
	}
	_, err = d.Refresh(context.Background())

	require.Error(t, err)
	require.NotNil(t, d.Booking())
	assert.Equal(t, models.StatusConfirmed, d.Booking().Status)
}
