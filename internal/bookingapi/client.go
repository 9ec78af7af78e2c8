package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/credentials"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

// Client is the Booking Service REST surface used by the booking workflow.
type Client interface {
	CheckAvailability(ctx context.Context, vehicleID uint, start, end civil.Date) (bool, error)
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID uint, req dto.CreateBookingRequest) (*models.Booking, error)
	GetBookingSummary(ctx context.Context, bookingID uint) (*models.Booking, error)
	SubmitPayment(ctx context.Context, bookingID uint, req dto.PaymentRequest) (*models.Payment, error)
	CancelBooking(ctx context.Context, bookingID uint) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID uint) (*models.Booking, error)
	GetVehicle(ctx context.Context, vehicleID uint) (*models.Vehicle, error)
}

// VehicleCache keeps read copies of vehicles between page views.
type VehicleCache interface {
	Get(ctx context.Context, id uint) (*models.Vehicle, bool)
	Put(ctx context.Context, v *models.Vehicle)
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches key to the POST or PATCH sent with ctx. Reuse
// the key when retrying the same logical operation.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

type Option func(*client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *client) { c.http.Timeout = d }
}

// WithAuthScheme sets the Authorization prefix, "Token" by default.
func WithAuthScheme(scheme string) Option {
	return func(c *client) { c.scheme = scheme }
}

func WithVehicleCache(cache VehicleCache) Option {
	return func(c *client) { c.vehicles = cache }
}

type client struct {
	baseURL  string
	http     *http.Client
	creds    credentials.Provider
	scheme   string
	vehicles VehicleCache
}

func NewClient(baseURL string, creds credentials.Provider, opts ...Option) Client {
	c := &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
		scheme:  "Token",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) CheckAvailability(ctx context.Context, vehicleID uint, start, end civil.Date) (bool, error) {
	q := url.Values{}
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())

	var resp dto.AvailabilityResponse
	path := fmt.Sprintf("/vehicles/%d/availability/?%s", vehicleID, q.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsAvailable, nil
}

func (c *client) CreateBooking(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	var b models.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings/", req, &b); err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, errors.New("create booking: response carries no booking id")
	}
	return &b, nil
}

// UpdateBooking changes a pending booking's dates, times or locations.
func (c *client) UpdateBooking(ctx context.Context, bookingID uint, req dto.CreateBookingRequest) (*models.Booking, error) {
	var b models.Booking
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/bookings/%d/update/", bookingID), req, &b); err != nil {
		return nil, err
	}
	if b.ID == 0 {
		b.ID = bookingID
	}
	return &b, nil
}

func (c *client) GetBookingSummary(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bookings/%d/summary/", bookingID), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *client) SubmitPayment(ctx context.Context, bookingID uint, req dto.PaymentRequest) (*models.Payment, error) {
	var p models.Payment
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/bookings/%d/payment/", bookingID), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CancelBooking returns the updated booking when the service sends one back,
// nil when it only acknowledges the cancellation.
func (c *client) CancelBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel/", bookingID), nil, &b); err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (c *client) GetBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bookings/%d/", bookingID), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *client) GetVehicle(ctx context.Context, vehicleID uint) (*models.Vehicle, error) {
	if c.vehicles != nil {
		if v, ok := c.vehicles.Get(ctx, vehicleID); ok {
			return v, nil
		}
	}

	var v models.Vehicle
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/vehicles/%d/", vehicleID), nil, &v); err != nil {
		return nil, err
	}

	if c.vehicles != nil {
		c.vehicles.Put(ctx, &v)
	}
	return &v, nil
}

func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key, _ := ctx.Value(idempotencyKey{}).(string); key != "" && (method == http.MethodPost || method == http.MethodPatch) {
		req.Header.Set("Idempotency-Key", key)
	}
	token, ok := c.creds.Get(ctx)
	if ok {
		req.Header.Set("Authorization", c.scheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized {
			log.Printf("[BookingAPI] %s %s: 401, invalidating credentials", method, path)
			c.creds.Invalidate(context.WithoutCancel(ctx), token)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
