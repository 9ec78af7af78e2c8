package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusActive    BookingStatus = "active"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking is the Booking Service's record. The gateway only reads it and
// asks the service to mutate it.
type Booking struct {
	ID              uint            `json:"id"`
	Vehicle         VehicleRef      `json:"vehicle"`
	User            CustomerRef     `json:"user"`
	StartDate       civil.Date      `json:"start_date"`
	EndDate         civil.Date      `json:"end_date"`
	PickupTime      string          `json:"pickup_time,omitempty"`
	ReturnTime      string          `json:"return_time,omitempty"`
	PickupLocation  string          `json:"pickup_location"`
	ReturnLocation  string          `json:"return_location"`
	SpecialRequests string          `json:"special_requests,omitempty"`
	TotalDays       int             `json:"total_days,omitempty"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          BookingStatus   `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status,omitempty"`
	StatusHistory   []StatusChange  `json:"status_history,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StatusChange is one entry of a booking's server-side transition log.
type StatusChange struct {
	OldStatus BookingStatus `json:"old_status"`
	NewStatus BookingStatus `json:"new_status"`
	Reason    string        `json:"reason,omitempty"`
	ChangedBy *Customer     `json:"changed_by,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type Customer struct {
	ID        uint   `json:"id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
