package handler

import (
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/workflow"
)

func toDraftResponse(sid string, snap workflow.DraftSnapshot) dto.DraftResponse {
	d := snap.Draft
	resp := dto.DraftResponse{
		SessionID:    sid,
		State:        string(snap.State),
		Availability: string(snap.Availability),
		CanSubmit:    snap.CanSubmit,
		BookingID:    snap.BookingID,
		Vehicle:      snap.Vehicle,
		Draft: dto.DraftView{
			VehicleID:       d.VehicleID,
			PickupTime:      d.PickupTime,
			ReturnTime:      d.ReturnTime,
			PickupLocation:  d.PickupLocation,
			ReturnLocation:  d.ReturnLocation,
			SpecialRequests: d.SpecialRequests,
		},
	}
	if !d.StartDate.IsZero() {
		resp.Draft.StartDate = d.StartDate.String()
	}
	if !d.EndDate.IsZero() {
		resp.Draft.EndDate = d.EndDate.String()
	}
	for _, p := range snap.Problems {
		resp.Problems = append(resp.Problems, dto.FieldProblem{Field: p.Field, Message: p.Message})
	}
	if est := snap.Estimate; est != nil {
		resp.Estimate = &dto.EstimateResponse{
			DurationDays: est.DurationDays,
			DailyRate:    est.DailyRate,
			Subtotal:     est.Subtotal,
			Tax:          est.Tax,
			Total:        est.Total,
			Display:      workflow.FormatUSD(est.Total),
		}
	}
	if snap.LastError != nil {
		resp.LastError = workflow.UserMessage(snap.LastError, workflow.GenericFailure)
	}
	return resp
}

func toSummaryResponse(sid string, s *workflow.Summary) dto.SummaryResponse {
	b := s.Booking()
	resp := dto.SummaryResponse{
		SessionID:     sid,
		Booking:       b,
		PaymentMethod: s.PaymentMethod(),
		DurationDays:  s.DurationHint(),
		Payment:       s.Payment(),
	}
	if b != nil {
		resp.TotalDisplay = workflow.FormatUSD(b.TotalAmount)
	}
	return resp
}

func toDetailResponse(sid string, d *workflow.Detail) dto.DetailResponse {
	b := d.Booking()
	resp := dto.DetailResponse{
		SessionID: sid,
		Booking:   b,
		Actions:   []string{},
		History:   d.History(),
	}
	if resp.History == nil {
		resp.History = []models.StatusChange{}
	}
	for _, a := range d.Actions().List() {
		resp.Actions = append(resp.Actions, string(a))
	}
	if b != nil {
		resp.TotalDisplay = workflow.FormatUSD(b.TotalAmount)
	}
	return resp
}
