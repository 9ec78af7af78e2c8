package dto

import (
	"github.com/shopspring/decimal"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

type ErrorResponse struct {
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	Field    string `json:"field,omitempty"`
	LoginURL string `json:"login_url,omitempty"`
}

type EstimateResponse struct {
	DurationDays int             `json:"duration_days"`
	DailyRate    decimal.Decimal `json:"daily_rate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Display      string          `json:"display"`
}

type DraftResponse struct {
	SessionID    string            `json:"session_id"`
	State        string            `json:"state"`
	Draft        DraftView         `json:"draft"`
	Availability string            `json:"availability"`
	CanSubmit    bool              `json:"can_submit"`
	Problems     []FieldProblem    `json:"problems,omitempty"`
	Estimate     *EstimateResponse `json:"estimate,omitempty"`
	BookingID    uint              `json:"booking_id,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
	Vehicle      *models.Vehicle   `json:"vehicle,omitempty"`
}

type DraftView struct {
	VehicleID       uint   `json:"vehicle_id"`
	StartDate       string `json:"start_date,omitempty"`
	EndDate         string `json:"end_date,omitempty"`
	PickupTime      string `json:"pickup_time,omitempty"`
	ReturnTime      string `json:"return_time,omitempty"`
	PickupLocation  string `json:"pickup_location,omitempty"`
	ReturnLocation  string `json:"return_location,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type SummaryResponse struct {
	SessionID     string               `json:"session_id"`
	Booking       *models.Booking      `json:"booking"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	DurationDays  int                  `json:"duration_days"`
	TotalDisplay  string               `json:"total_display"`
	Payment       *models.Payment      `json:"payment,omitempty"`
}

type DetailResponse struct {
	SessionID    string                `json:"session_id"`
	Booking      *models.Booking       `json:"booking"`
	Actions      []string              `json:"actions"`
	History      []models.StatusChange `json:"history"`
	TotalDisplay string                `json:"total_display"`
}

type TokenResponse struct {
	Authenticated bool `json:"authenticated"`
}
