package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const idempotencyKeyHeader = "Idempotency-Key"

type bookingRequest struct {
	ScheduleID       string  `json:"schedule_id" validate:"required,uuid"`
	PackageID        *string `json:"package_id" validate:"omitempty,uuid"`
	ParticipantCount int     `json:"participant_count" validate:"gte=1"`
}

func (r bookingRequest) input() service.BookingInput {
	input := service.BookingInput{
		ScheduleID:   uuid.MustParse(r.ScheduleID),
		Participants: r.ParticipantCount,
	}
	if r.PackageID != nil {
		id := uuid.MustParse(*r.PackageID)
		input.PackageID = &id
	}
	return input
}

type bookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type BookingHandler struct {
	bookings *service.BookingService
	log      logrus.FieldLogger
}

func RegisterBookings(api *echo.Group, auth Authenticator, bookings *service.BookingService, log logrus.FieldLogger) {
	h := &BookingHandler{bookings: bookings, log: log}
	g := api.Group("/bookings", RequireAuth(auth))
	g.POST("/quote", h.quote)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PATCH("/:id/status", h.updateStatus)

	api.GET("/users/me/bookings", h.listMine, RequireAuth(auth))
}

func (h *BookingHandler) quote(c echo.Context) error {
	var req bookingRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	quote, err := h.bookings.Quote(c.Request().Context(), req.input())
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("quote", quote))
}

func (h *BookingHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var req bookingRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	input := req.input()
	if key := c.Request().Header.Get(idempotencyKeyHeader); key != "" {
		input.IdempotencyKey = &key
	}

	result, err := h.bookings.CreateBooking(c.Request().Context(), user.ID, input)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}

func (h *BookingHandler) get(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	booking, err := h.bookings.GetBooking(c.Request().Context(), id, user)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("booking", booking))
}

func (h *BookingHandler) updateStatus(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var req bookingStatusRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	booking, err := h.bookings.UpdateStatus(c.Request().Context(), id, req.Status, user)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("booking", booking))
}

func (h *BookingHandler) listMine(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	var page pageQuery
	if ok, err := bindRequest(c, &page); !ok {
		return err
	}
	bookings, err := h.bookings.ListByUser(c.Request().Context(), user.ID, page.Limit, page.Offset)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("bookings", bookings))
}
