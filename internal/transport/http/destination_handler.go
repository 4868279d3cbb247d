package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/media"
	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const thumbnailField = "thumbnail"

type destinationRequest struct {
	Name        *string `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	CityID      *int64  `form:"city_id" json:"city_id"`
	CountryID   *int64  `form:"country_id" json:"country_id"`
}

func (r destinationRequest) input() service.DestinationInput {
	return service.DestinationInput{
		Name:        r.Name,
		Description: r.Description,
		CityID:      r.CityID,
		CountryID:   r.CountryID,
	}
}

type DestinationHandler struct {
	destinations *service.DestinationService
	masterData   *service.MasterDataService
	log          logrus.FieldLogger
}

func RegisterDestinations(api, admin *echo.Group, destinations *service.DestinationService, masterData *service.MasterDataService, log logrus.FieldLogger) {
	h := &DestinationHandler{destinations: destinations, masterData: masterData, log: log}

	public := api.Group("/destinations")
	public.GET("", h.list)
	public.GET("/master/countries", h.countries)
	public.GET("/master/cities/:countryId", h.cities)
	public.GET("/:id", h.get)

	admin.POST("/destinations", h.create)
	admin.PUT("/destinations/:id", h.update)
	admin.DELETE("/destinations/:id", h.delete)
}

func (h *DestinationHandler) list(c echo.Context) error {
	var page pageQuery
	if ok, err := bindRequest(c, &page); !ok {
		return err
	}
	items, err := h.destinations.List(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("destinations", items))
}

func (h *DestinationHandler) get(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	dest, err := h.destinations.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("destination", dest))
}

func (h *DestinationHandler) countries(c echo.Context) error {
	countries, err := h.masterData.ListCountries(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("countries", countries))
}

func (h *DestinationHandler) cities(c echo.Context) error {
	countryID, ok, err := int64Param(c, "countryId")
	if !ok {
		return err
	}
	cities, err := h.masterData.ListCities(c.Request().Context(), countryID)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("cities", cities))
}

func (h *DestinationHandler) create(c echo.Context) error {
	var req destinationRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	thumbnail, closeFile, err := thumbnailUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid thumbnail upload"))
	}
	defer closeFile()

	dest, err := h.destinations.Create(c.Request().Context(), req.input(), thumbnail)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, util.Data("destination", dest))
}

func (h *DestinationHandler) update(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var req destinationRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	thumbnail, closeFile, err := thumbnailUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid thumbnail upload"))
	}
	defer closeFile()

	dest, err := h.destinations.Update(c.Request().Context(), id, req.input(), thumbnail)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("destination", dest))
}

func (h *DestinationHandler) delete(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	if err := h.destinations.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// thumbnailUpload returns nil when the request carries no thumbnail part.
func thumbnailUpload(c echo.Context) (*media.Upload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(thumbnailField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}
	return &media.Upload{
		Reader:      file,
		Size:        header.Size,
		FileName:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
	}, func() { _ = file.Close() }, nil
}
