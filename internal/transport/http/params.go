package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type pageQuery struct {
	Limit  int `query:"limit" validate:"gte=0,lte=100"`
	Offset int `query:"offset" validate:"gte=0"`
}

// bindRequest binds and validates req, writing the 400 itself. The
// returned bool is false when the handler should stop.
func bindRequest(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	return true, nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
}

func uuidParam(c echo.Context, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, false, c.JSON(http.StatusBadRequest, util.Error("invalid "+name))
	}
	return id, true, nil
}

func int64Param(c echo.Context, name string) (int64, bool, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || n <= 0 {
		return 0, false, c.JSON(http.StatusBadRequest, util.Error("invalid "+name))
	}
	return n, true, nil
}
