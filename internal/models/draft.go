package models

import "cloud.google.com/go/civil"

// BookingDraft is an unsubmitted booking request. It only ever lives in
// memory and is dropped on submission or when its view closes.
type BookingDraft struct {
	VehicleID       uint
	StartDate       civil.Date
	EndDate         civil.Date
	PickupTime      string
	ReturnTime      string
	PickupLocation  string
	ReturnLocation  string
	SpecialRequests string
}

func (d BookingDraft) HasDates() bool {
	return !d.StartDate.IsZero() && !d.EndDate.IsZero()
}
