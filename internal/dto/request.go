package dto

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

// Booking Service wire payloads.

type CreateBookingRequest struct {
	Vehicle         uint       `json:"vehicle"`
	StartDate       civil.Date `json:"start_date"`
	EndDate         civil.Date `json:"end_date"`
	PickupTime      string     `json:"pickup_time,omitempty"`
	ReturnTime      string     `json:"return_time,omitempty"`
	PickupLocation  string     `json:"pickup_location"`
	ReturnLocation  string     `json:"return_location"`
	SpecialRequests string     `json:"special_requests"`
}

func NewCreateBookingRequest(d models.BookingDraft) CreateBookingRequest {
	return CreateBookingRequest{
		Vehicle:         d.VehicleID,
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		PickupTime:      d.PickupTime,
		ReturnTime:      d.ReturnTime,
		PickupLocation:  d.PickupLocation,
		ReturnLocation:  d.ReturnLocation,
		SpecialRequests: d.SpecialRequests,
	}
}

type AvailabilityResponse struct {
	IsAvailable bool `json:"is_available"`
}

type PaymentRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal      `json:"amount"`
}

// Gateway request payloads.

type OpenDraftRequest struct {
	VehicleID uint `json:"vehicle_id"`
}

type SelectDatesRequest struct {
	StartDate civil.Date `json:"start_date"`
	EndDate   civil.Date `json:"end_date"`
}

type DraftDetailsRequest struct {
	PickupTime      string `json:"pickup_time"`
	ReturnTime      string `json:"return_time"`
	PickupLocation  string `json:"pickup_location"`
	ReturnLocation  string `json:"return_location"`
	SpecialRequests string `json:"special_requests"`
}

type PaymentMethodRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

type TokenRequest struct {
	Token string `json:"token"`
}
