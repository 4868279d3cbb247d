package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type reviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

type ReviewHandler struct {
	reviews *service.ReviewService
	log     logrus.FieldLogger
}

func RegisterReviews(api *echo.Group, auth Authenticator, reviews *service.ReviewService, log logrus.FieldLogger) {
	h := &ReviewHandler{reviews: reviews, log: log}
	api.GET("/packages/:id/reviews", h.list)
	api.POST("/packages/:id/reviews", h.create, RequireAuth(auth))
}

func (h *ReviewHandler) list(c echo.Context) error {
	packageID, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var page pageQuery
	if ok, err := bindRequest(c, &page); !ok {
		return err
	}
	result, err := h.reviews.ListPackageReviews(c.Request().Context(), packageID, page.Limit, page.Offset)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	packageID, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var req reviewRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	review, aggregate, err := h.reviews.CreateReview(c.Request().Context(), user.ID, packageID, service.ReviewCreateInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{
		"review":    review,
		"aggregate": aggregate,
	})
}
