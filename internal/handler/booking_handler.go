package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/credentials"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/middleware"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/service"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/workflow"
)

type BookingHandler struct {
	svc   service.BookingService
	creds credentials.Provider
}

func NewBookingHandler(svc service.BookingService, creds credentials.Provider) *BookingHandler {
	return &BookingHandler{svc: svc, creds: creds}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	drafts := api.Group("/drafts")
	drafts.POST("", h.OpenDraft)
	drafts.GET("/:sid", h.GetDraft)
	drafts.PUT("/:sid/dates", h.SelectDates)
	drafts.PUT("/:sid/details", h.SetDetails)
	drafts.POST("/:sid/availability", h.CheckAvailability)
	drafts.POST("/:sid/submit", h.SubmitDraft)
	drafts.DELETE("/:sid", h.CloseSession)

	api.POST("/bookings/:id/edit", h.OpenEdit)
	api.POST("/bookings/:id/summary", h.OpenSummary)
	api.POST("/bookings/:id/detail", h.OpenDetail)

	summaries := api.Group("/summaries")
	summaries.GET("/:sid", h.GetSummary)
	summaries.PUT("/:sid/payment-method", h.SelectPaymentMethod)
	summaries.POST("/:sid/pay", h.Pay)
	summaries.DELETE("/:sid", h.CloseSession)

	details := api.Group("/details")
	details.GET("/:sid", h.GetDetail)
	details.POST("/:sid/refresh", h.RefreshDetail)
	details.POST("/:sid/cancel", h.CancelBooking)
	details.DELETE("/:sid", h.CloseSession)

	api.GET("/session/token", h.TokenStatus)
	api.POST("/session/token", h.SetToken)
	api.DELETE("/session/token", h.ClearToken)
}

// --- Drafts ---

func (h *BookingHandler) OpenDraft(c echo.Context) error {
	var req dto.OpenDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VehicleID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "vehicle_id is required")
	}

	sid, form, err := h.svc.OpenDraft(c.Request().Context(), req.VehicleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDraftResponse(sid, form.Snapshot()))
}

func (h *BookingHandler) OpenEdit(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	sid, form, err := h.svc.OpenEdit(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDraftResponse(sid, form.Snapshot()))
}

func (h *BookingHandler) GetDraft(c echo.Context) error {
	sid := c.Param("sid")
	form, err := h.svc.Draft(sid)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(http.StatusOK, toDraftResponse(sid, form.Snapshot()))
}

func (h *BookingHandler) SelectDates(c echo.Context) error {
	sid := c.Param("sid")
	form, err := h.svc.Draft(sid)
	if err != nil {
		return sessionError(err)
	}

	var req dto.SelectDatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "dates must be YYYY-MM-DD")
	}
	if err := form.SelectDates(req.StartDate, req.EndDate); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(sid, form.Snapshot()))
}

func (h *BookingHandler) SetDetails(c echo.Context) error {
	sid := c.Param("sid")
	form, err := h.svc.Draft(sid)
	if err != nil {
		return sessionError(err)
	}

	var req dto.DraftDetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := form.SetDetails(workflow.Details{
		PickupTime:      req.PickupTime,
		ReturnTime:      req.ReturnTime,
		PickupLocation:  req.PickupLocation,
		ReturnLocation:  req.ReturnLocation,
		SpecialRequests: req.SpecialRequests,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(sid, form.Snapshot()))
}

func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	sid := c.Param("sid")
	form, err := h.svc.Draft(sid)
	if err != nil {
		return sessionError(err)
	}

	if _, err := form.CheckAvailability(c.Request().Context()); err != nil {
		return middleware.Failure(err, "Unable to check availability. Please try again.")
	}
	return c.JSON(http.StatusOK, toDraftResponse(sid, form.Snapshot()))
}

func (h *BookingHandler) SubmitDraft(c echo.Context) error {
	sid := c.Param("sid")
	form, err := h.svc.Draft(sid)
	if err != nil {
		return sessionError(err)
	}

	if _, err := form.Submit(c.Request().Context()); err != nil {
		return middleware.Failure(err, workflow.SubmitFailure)
	}
	return c.JSON(http.StatusCreated, toDraftResponse(sid, form.Snapshot()))
}

func (h *BookingHandler) CloseSession(c echo.Context) error {
	if err := h.svc.Close(c.Param("sid")); err != nil {
		return sessionError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Summary and payment ---

func (h *BookingHandler) OpenSummary(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	sid, summary, err := h.svc.OpenSummary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSummaryResponse(sid, summary))
}

func (h *BookingHandler) GetSummary(c echo.Context) error {
	sid := c.Param("sid")
	summary, err := h.svc.Summary(sid)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(http.StatusOK, toSummaryResponse(sid, summary))
}

func (h *BookingHandler) SelectPaymentMethod(c echo.Context) error {
	sid := c.Param("sid")
	summary, err := h.svc.Summary(sid)
	if err != nil {
		return sessionError(err)
	}

	var req dto.PaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := summary.SelectPaymentMethod(req.PaymentMethod); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSummaryResponse(sid, summary))
}

func (h *BookingHandler) Pay(c echo.Context) error {
	sid := c.Param("sid")
	summary, err := h.svc.Summary(sid)
	if err != nil {
		return sessionError(err)
	}

	if _, err := summary.Pay(c.Request().Context()); err != nil {
		return middleware.Failure(err, workflow.PaymentFailure)
	}
	return c.JSON(http.StatusCreated, toSummaryResponse(sid, summary))
}

// --- Detail ---

func (h *BookingHandler) OpenDetail(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}
	sid, detail, err := h.svc.OpenDetail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDetailResponse(sid, detail))
}

func (h *BookingHandler) GetDetail(c echo.Context) error {
	sid := c.Param("sid")
	detail, err := h.svc.Detail(sid)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(http.StatusOK, toDetailResponse(sid, detail))
}

func (h *BookingHandler) RefreshDetail(c echo.Context) error {
	sid := c.Param("sid")
	detail, err := h.svc.Detail(sid)
	if err != nil {
		return sessionError(err)
	}

	if _, err := detail.Refresh(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailResponse(sid, detail))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	sid := c.Param("sid")
	detail, err := h.svc.Detail(sid)
	if err != nil {
		return sessionError(err)
	}

	if _, err := detail.Cancel(c.Request().Context()); err != nil {
		return middleware.Failure(err, workflow.CancelFailure)
	}
	return c.JSON(http.StatusOK, toDetailResponse(sid, detail))
}

// --- Credentials ---

func (h *BookingHandler) TokenStatus(c echo.Context) error {
	_, ok := h.creds.Get(c.Request().Context())
	return c.JSON(http.StatusOK, dto.TokenResponse{Authenticated: ok})
}

func (h *BookingHandler) SetToken(c echo.Context) error {
	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}
	if err := h.creds.Set(c.Request().Context(), req.Token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store token")
	}
	return c.JSON(http.StatusOK, dto.TokenResponse{Authenticated: true})
}

func (h *BookingHandler) ClearToken(c echo.Context) error {
	if err := h.creds.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear token")
	}
	return c.NoContent(http.StatusNoContent)
}

func bookingID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	return uint(id), nil
}

func sessionError(err error) error {
	if errors.Is(err, service.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return err
}
