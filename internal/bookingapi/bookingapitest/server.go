// Package bookingapitest runs an in-memory Booking Service for tests.
package bookingapitest

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

var taxRate = decimal.NewFromFloat(0.10)

// Server mimics the Booking Service endpoints the workflow uses. Change its
// behaviour through the setters; the zero configuration accepts everything.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	vehicles map[uint]*models.Vehicle
	bookings map[uint]*models.Booking
	byKey    map[string]uint
	nextID   uint

	// Token, when set, must be presented as "Token <Token>".
	Token string
	// Unavailable lists vehicles whose availability answer is false.
	Unavailable map[uint]bool
	// Failures maps "METHOD /path-prefix" to a status returned once.
	Failures map[string]Failure
	// AvailabilityDelay stalls availability answers.
	AvailabilityDelay time.Duration
	// CancelReturnsMessage makes cancel answer {"message": ...} instead of
	// the updated booking.
	CancelReturnsMessage bool

	Requests     []string
	Keys         []string
	LastCreate   *dto.CreateBookingRequest
	LastPayment  *dto.PaymentRequest
	AvailQueries []string
}

type Failure struct {
	Status int
	Body   map[string]any
}

func NewServer() *Server {
	s := &Server{
		vehicles:    map[uint]*models.Vehicle{},
		bookings:    map[uint]*models.Booking{},
		byKey:       map[string]uint{},
		nextID:      1,
		Unavailable: map[uint]bool{},
		Failures:    map[string]Failure{},
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.record, s.failures, s.auth)

	e.GET("/vehicles/:id/", s.getVehicle)
	e.GET("/vehicles/:id/availability/", s.availability)
	e.POST("/bookings/", s.createBooking)
	e.PATCH("/bookings/:id/update/", s.updateBooking)
	e.GET("/bookings/:id/", s.getBooking)
	e.GET("/bookings/:id/summary/", s.getBooking)
	e.POST("/bookings/:id/payment/", s.pay)
	e.POST("/bookings/:id/cancel/", s.cancel)

	s.Server = httptest.NewServer(e)
	return s
}

func (s *Server) AddVehicle(v models.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = &v
}

// PutBooking stores b as-is, assigning an id when it has none.
func (s *Server) PutBooking(b models.Booking) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextID
		s.nextID++
	}
	s.bookings[b.ID] = &b
	return b.ID
}

func (s *Server) Booking(id uint) (models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, false
	}
	return *b, true
}

// SetStatus simulates an operator or date-driven transition.
func (s *Server) SetStatus(id uint, status models.BookingStatus, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		transition(b, status, reason)
	}
}

func (s *Server) SetUnavailable(vehicleID uint, unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unavailable[vehicleID] = unavailable
}

func (s *Server) SetAvailabilityDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AvailabilityDelay = d
}

func (s *Server) SetCancelReturnsMessage(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CancelReturnsMessage = v
}

func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Token = token
}

func (s *Server) Fail(route string, status int, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failures[route] = Failure{Status: status, Body: body}
}

func (s *Server) AvailabilityQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.AvailQueries...)
}

func (s *Server) LastCreateRequest() *dto.CreateBookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastCreate
}

func (s *Server) LastPaymentRequest() *dto.PaymentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastPayment
}

// IdempotencyKeys lists the Idempotency-Key header of every request whose
// "METHOD /path" starts with prefix, "" where none was sent.
func (s *Server) IdempotencyKeys(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for i, r := range s.Requests {
		if strings.HasPrefix(r, prefix) {
			keys = append(keys, s.Keys[i])
		}
	}
	return keys
}

func (s *Server) RequestCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.Requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.Requests = append(s.Requests, c.Request().Method+" "+c.Request().URL.Path)
		s.Keys = append(s.Keys, c.Request().Header.Get("Idempotency-Key"))
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) failures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Request().URL.Path
		s.mu.Lock()
		for route, f := range s.Failures {
			if strings.HasPrefix(key, route) {
				delete(s.Failures, route)
				s.mu.Unlock()
				if f.Body == nil {
					return c.NoContent(f.Status)
				}
				return c.JSON(f.Status, f.Body)
			}
		}
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		want := s.Token
		s.mu.Unlock()
		if want != "" && c.Request().Header.Get("Authorization") != "Token "+want {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
		}
		return next(c)
	}
}

func idParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func (s *Server) getVehicle(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	v, ok := s.vehicles[id]
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) availability(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delay := s.AvailabilityDelay
	unavailable := s.Unavailable[id]
	s.AvailQueries = append(s.AvailQueries, c.QueryParam("start_date")+".."+c.QueryParam("end_date"))
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request().Context().Done():
			return nil
		}
	}
	return c.JSON(http.StatusOK, dto.AvailabilityResponse{IsAvailable: !unavailable})
}

func (s *Server) createBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"non_field_errors": []string{"Invalid payload"}})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastCreate = &req
	key := c.Request().Header.Get("Idempotency-Key")
	if id, ok := s.byKey[key]; ok && key != "" {
		return c.JSON(http.StatusCreated, s.bookings[id])
	}
	v, ok := s.vehicles[req.Vehicle]
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]any{"vehicle": []string{"Invalid pk - object does not exist."}})
	}
	if s.Unavailable[req.Vehicle] {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"non_field_errors": []string{"Vehicle is not available for the selected dates"},
		})
	}
	if !req.StartDate.Before(req.EndDate) {
		return c.JSON(http.StatusBadRequest, map[string]any{"non_field_errors": []string{"End date must be after start date"}})
	}

	days := req.EndDate.DaysSince(req.StartDate)
	subtotal := v.DailyRate.Mul(decimal.NewFromInt(int64(days)))
	tax := subtotal.Mul(taxRate).Round(2)
	now := time.Now().UTC()

	b := &models.Booking{
		ID:              s.nextID,
		Vehicle:         models.VehicleRef{ID: v.ID},
		User:            models.CustomerRef{ID: 1},
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PickupTime:      req.PickupTime,
		ReturnTime:      req.ReturnTime,
		PickupLocation:  req.PickupLocation,
		ReturnLocation:  req.ReturnLocation,
		SpecialRequests: req.SpecialRequests,
		TotalDays:       days,
		DailyRate:       v.DailyRate,
		Subtotal:        subtotal,
		TaxAmount:       tax,
		TotalAmount:     subtotal.Add(tax),
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusHistory: []models.StatusChange{
			{NewStatus: models.StatusPending, Reason: "Booking created", CreatedAt: now},
		},
	}
	s.nextID++
	s.bookings[b.ID] = b
	if key != "" {
		s.byKey[key] = b.ID
	}
	return c.JSON(http.StatusCreated, b)
}

func (s *Server) updateBooking(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"non_field_errors": []string{"Invalid payload"}})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Booking not found"})
	}
	if b.Status != models.StatusPending {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Only pending bookings can be changed"})
	}
	if s.Unavailable[b.Vehicle.ID] {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Vehicle is not available for the selected dates"})
	}

	b.StartDate, b.EndDate = req.StartDate, req.EndDate
	b.PickupTime, b.ReturnTime = req.PickupTime, req.ReturnTime
	b.PickupLocation, b.ReturnLocation = req.PickupLocation, req.ReturnLocation
	b.SpecialRequests = req.SpecialRequests
	b.TotalDays = req.EndDate.DaysSince(req.StartDate)
	b.Subtotal = b.DailyRate.Mul(decimal.NewFromInt(int64(b.TotalDays)))
	b.TaxAmount = b.Subtotal.Mul(taxRate).Round(2)
	b.TotalAmount = b.Subtotal.Add(b.TaxAmount)
	b.UpdatedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, b)
}

func (s *Server) getBooking(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Booking not found"})
	}
	out := *b
	if v, ok := s.vehicles[b.Vehicle.ID]; ok {
		out.Vehicle = models.VehicleRef{ID: v.ID, Vehicle: v}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) pay(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"amount": []string{"A valid number is required."}})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastPayment = &req
	b, ok := s.bookings[id]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Booking not found"})
	}
	if b.PaymentStatus == models.PaymentPaid {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Payment already completed"})
	}

	b.PaymentStatus = models.PaymentPaid
	transition(b, models.StatusConfirmed, "Payment completed")
	return c.JSON(http.StatusCreated, models.Payment{
		ID:            b.ID,
		Amount:        b.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentPaid,
		CreatedAt:     time.Now().UTC(),
	})
}

func (s *Server) cancel(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Booking not found"})
	}
	if b.Status == models.StatusCompleted || b.Status == models.StatusCancelled {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot cancel this booking"})
	}
	if b.StartDate.Before(civil.DateOf(time.Now())) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot cancel booking after start date"})
	}

	transition(b, models.StatusCancelled, "Cancelled by user")
	if s.CancelReturnsMessage {
		return c.JSON(http.StatusOK, map[string]string{"message": "Booking cancelled successfully"})
	}
	return c.JSON(http.StatusOK, b)
}

func transition(b *models.Booking, to models.BookingStatus, reason string) {
	now := time.Now().UTC()
	b.StatusHistory = append(b.StatusHistory, models.StatusChange{
		OldStatus: b.Status,
		NewStatus: to,
		Reason:    reason,
		CreatedAt: now,
	})
	b.Status = to
	b.UpdatedAt = now
}
