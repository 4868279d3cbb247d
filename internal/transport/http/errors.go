package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const genericFailure = "something went wrong, please try again later"

// statusFor maps an error kind to its response status. Order matters:
// the specific kinds come before ErrNotFound and ErrValidation.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountInactive), errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrBookingRejected),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrConflictOnDelete),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the message of known kinds. Store and
// unexpected failures are logged and answered generically.
func writeServiceError(c echo.Context, log logrus.FieldLogger, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
		return c.JSON(status, util.Error(genericFailure))
	}
	return c.JSON(status, util.Error(err.Error()))
}
