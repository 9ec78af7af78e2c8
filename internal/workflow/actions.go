package workflow

import (
	"cloud.google.com/go/civil"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

type Action string

const (
	ActionCancel Action = "cancel"
	ActionEdit   Action = "edit"
	ActionPay    Action = "pay"
)

var actionOrder = []Action{ActionCancel, ActionEdit, ActionPay}

type ActionSet uint8

const (
	canCancel ActionSet = 1 << iota
	canEdit
	canPay
)

func bitOf(a Action) ActionSet {
	switch a {
	case ActionCancel:
		return canCancel
	case ActionEdit:
		return canEdit
	case ActionPay:
		return canPay
	}
	return 0
}

func (s ActionSet) Has(a Action) bool { return s&bitOf(a) != 0 }

func (s ActionSet) Without(a Action) ActionSet { return s &^ bitOf(a) }

func (s ActionSet) List() []Action {
	out := []Action{}
	for _, a := range actionOrder {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// AllowedActions decides which customer actions to offer. The Booking
// Service still authorizes every call.
func AllowedActions(status models.BookingStatus, payment models.PaymentStatus) ActionSet {
	var s ActionSet
	if status == models.StatusPending || status == models.StatusConfirmed {
		s |= canCancel
	}
	if status == models.StatusPending {
		s |= canEdit
	}
	if status == models.StatusPending && payment == models.PaymentPending {
		s |= canPay
	}
	return s
}

// ActionsFor applies AllowedActions to b and withdraws cancel once the
// rental period has begun.
func ActionsFor(b models.Booking, today civil.Date) ActionSet {
	s := AllowedActions(b.Status, paymentStatusOf(b))
	if !b.StartDate.IsZero() && b.StartDate.Before(today) {
		s = s.Without(ActionCancel)
	}
	return s
}

// The summary endpoint omits payment_status; an unpaid pending booking is
// the only state that can reach it without one.
func paymentStatusOf(b models.Booking) models.PaymentStatus {
	if b.PaymentStatus == "" {
		return models.PaymentPending
	}
	return b.PaymentStatus
}
