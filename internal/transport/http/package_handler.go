package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type itineraryRequest struct {
	DayNumber   int     `json:"day_number"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
}

type packageRequest struct {
	DestinationID string             `json:"destination_id" validate:"required,uuid"`
	Title         string             `json:"title" validate:"required"`
	Description   *string            `json:"description"`
	DurationDays  int                `json:"duration_days"`
	Price         decimal.Decimal    `json:"price"`
	Quota         int                `json:"quota"`
	Status        string             `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Itineraries   []itineraryRequest `json:"itineraries" validate:"dive"`
	Facilities    []string           `json:"facilities"`
	HotelIDs      []string           `json:"hotel_ids" validate:"dive,uuid"`
}

type packageUpdateRequest struct {
	DestinationID *string             `json:"destination_id" validate:"omitempty,uuid"`
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	DurationDays  *int                `json:"duration_days"`
	Price         *decimal.Decimal    `json:"price"`
	Quota         *int                `json:"quota"`
	Status        *string             `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Itineraries   *[]itineraryRequest `json:"itineraries" validate:"omitempty,dive"`
	Facilities    *[]string           `json:"facilities"`
	HotelIDs      *[]string           `json:"hotel_ids" validate:"omitempty,dive,uuid"`
}

type adminPackageQuery struct {
	pageQuery
	Status string `query:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type scheduleRequest struct {
	DepartureDate  time.Time `json:"departure_date" validate:"required"`
	ReturnDate     time.Time `json:"return_date" validate:"required"`
	AvailableQuota *int      `json:"available_quota"`
}

func (r packageRequest) input() service.PackageInput {
	return service.PackageInput{
		DestinationID: uuid.MustParse(r.DestinationID),
		Title:         r.Title,
		Description:   r.Description,
		DurationDays:  r.DurationDays,
		Price:         r.Price,
		Quota:         r.Quota,
		Status:        domain.PackageStatus(r.Status),
		Itineraries:   toItineraries(r.Itineraries),
		Facilities:    r.Facilities,
		HotelIDs:      parseUUIDs(r.HotelIDs),
	}
}

func (r packageUpdateRequest) fields() domain.PackageFields {
	fields := domain.PackageFields{
		Title:        r.Title,
		Description:  r.Description,
		DurationDays: r.DurationDays,
		Price:        r.Price,
		Quota:        r.Quota,
		Facilities:   r.Facilities,
	}
	if r.DestinationID != nil {
		id := uuid.MustParse(*r.DestinationID)
		fields.DestinationID = &id
	}
	if r.Status != nil {
		status := domain.PackageStatus(*r.Status)
		fields.Status = &status
	}
	if r.Itineraries != nil {
		items := toItineraries(*r.Itineraries)
		fields.Itineraries = &items
	}
	if r.HotelIDs != nil {
		ids := parseUUIDs(*r.HotelIDs)
		fields.HotelIDs = &ids
	}
	return fields
}

func toItineraries(items []itineraryRequest) []domain.Itinerary {
	out := make([]domain.Itinerary, 0, len(items))
	for _, item := range items {
		out = append(out, domain.Itinerary{DayNumber: item.DayNumber, Title: item.Title, Description: item.Description})
	}
	return out
}

// parseUUIDs expects values that already passed the uuid validator.
func parseUUIDs(raw []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		out = append(out, uuid.MustParse(v))
	}
	return out
}

type PackageHandler struct {
	packages  *service.PackageService
	schedules *service.ScheduleService
	log       logrus.FieldLogger
}

func RegisterPackages(api, admin *echo.Group, packages *service.PackageService, schedules *service.ScheduleService, log logrus.FieldLogger) {
	h := &PackageHandler{packages: packages, schedules: schedules, log: log}

	public := api.Group("/packages")
	public.GET("", h.listPublic)
	public.GET("/:id", h.getPublic)
	public.GET("/:id/schedules", h.listSchedules)

	admin.GET("/packages", h.listAdmin)
	admin.POST("/packages", h.create)
	admin.GET("/packages/:id", h.getAdmin)
	admin.PUT("/packages/:id", h.update)
	admin.DELETE("/packages/:id", h.delete)
	admin.POST("/packages/:id/schedules", h.createSchedule)
	admin.DELETE("/schedules/:id", h.deleteSchedule)
}

func (h *PackageHandler) listPublic(c echo.Context) error {
	var page pageQuery
	if ok, err := bindRequest(c, &page); !ok {
		return err
	}
	items, err := h.packages.ListPublic(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("packages", items))
}

func (h *PackageHandler) getPublic(c echo.Context) error {
	return h.get(c, true)
}

func (h *PackageHandler) getAdmin(c echo.Context) error {
	return h.get(c, false)
}

func (h *PackageHandler) get(c echo.Context, publicOnly bool) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	detail, err := h.packages.Get(c.Request().Context(), id, publicOnly)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("package", detail))
}

func (h *PackageHandler) listSchedules(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	schedules, err := h.schedules.ListByPackage(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("schedules", schedules))
}

func (h *PackageHandler) listAdmin(c echo.Context) error {
	var q adminPackageQuery
	if ok, err := bindRequest(c, &q); !ok {
		return err
	}
	var status *domain.PackageStatus
	if q.Status != "" {
		s := domain.PackageStatus(q.Status)
		status = &s
	}
	items, err := h.packages.ListAdmin(c.Request().Context(), status, q.Limit, q.Offset)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("packages", items))
}

func (h *PackageHandler) create(c echo.Context) error {
	var req packageRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	detail, err := h.packages.Create(c.Request().Context(), req.input())
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, util.Data("package", detail))
}

func (h *PackageHandler) update(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var req packageUpdateRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	detail, err := h.packages.Update(c.Request().Context(), id, req.fields())
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("package", detail))
}

func (h *PackageHandler) delete(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	if err := h.packages.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PackageHandler) createSchedule(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var req scheduleRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	schedule, err := h.schedules.Create(c.Request().Context(), id, service.ScheduleInput{
		DepartureDate:  req.DepartureDate,
		ReturnDate:     req.ReturnDate,
		AvailableQuota: req.AvailableQuota,
	})
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, util.Data("schedule", schedule))
}

func (h *PackageHandler) deleteSchedule(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	if err := h.schedules.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
