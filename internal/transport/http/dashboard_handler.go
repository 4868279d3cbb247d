package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type recentBookingsQuery struct {
	Limit int `query:"limit" validate:"gte=0"`
}

type DashboardHandler struct {
	dashboard *service.DashboardService
	log       logrus.FieldLogger
}

func RegisterDashboard(admin *echo.Group, dashboard *service.DashboardService, log logrus.FieldLogger) {
	h := &DashboardHandler{dashboard: dashboard, log: log}
	admin.GET("/dashboard/stats", h.stats)
	admin.GET("/dashboard/recent-bookings", h.recentBookings)
}

func (h *DashboardHandler) stats(c echo.Context) error {
	stats, err := h.dashboard.GetStats(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("stats", stats))
}

func (h *DashboardHandler) recentBookings(c echo.Context) error {
	var q recentBookingsQuery
	if ok, err := bindRequest(c, &q); !ok {
		return err
	}
	bookings, err := h.dashboard.GetRecentBookings(c.Request().Context(), q.Limit)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("bookings", bookings))
}
