package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type profileRequest struct {
	FullName       *string `json:"full_name"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	Gender         *string `json:"gender"`
	IdentityNumber *string `json:"identity_number"`
}

func (r profileRequest) fields() domain.ProfileFields {
	return domain.ProfileFields{
		FullName:       r.FullName,
		Phone:          r.Phone,
		Address:        r.Address,
		Gender:         r.Gender,
		IdentityNumber: r.IdentityNumber,
	}
}

type customerCreateRequest struct {
	profileRequest
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type customerUpdateRequest struct {
	profileRequest
	Email  *string `json:"email" validate:"omitempty,email"`
	Status *string `json:"status"`
}

type customerStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func userStatus(raw string) domain.UserStatus {
	return domain.UserStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

type CustomerHandler struct {
	customers *service.CustomerService
	log       logrus.FieldLogger
}

func RegisterCustomers(admin *echo.Group, customers *service.CustomerService, log logrus.FieldLogger) {
	h := &CustomerHandler{customers: customers, log: log}
	admin.GET("/customers", h.list)
	admin.POST("/customers", h.create)
	admin.GET("/customers/:id", h.get)
	admin.PATCH("/customers/:id", h.update)
	admin.PATCH("/customers/:id/status", h.updateStatus)
}

func (h *CustomerHandler) list(c echo.Context) error {
	var page pageQuery
	if ok, err := bindRequest(c, &page); !ok {
		return err
	}
	items, err := h.customers.List(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("customers", items))
}

func (h *CustomerHandler) get(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	user, err := h.customers.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("customer", user))
}

func (h *CustomerHandler) create(c echo.Context) error {
	var req customerCreateRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	user, err := h.customers.Create(c.Request().Context(), service.CustomerCreateInput{
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.fields(),
	})
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, util.Data("customer", user))
}

func (h *CustomerHandler) update(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var req customerUpdateRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	input := service.CustomerUpdateInput{Email: req.Email, Profile: req.fields()}
	if req.Status != nil {
		status := userStatus(*req.Status)
		input.Status = &status
	}
	user, err := h.customers.Update(c.Request().Context(), id, input)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("customer", user))
}

func (h *CustomerHandler) updateStatus(c echo.Context) error {
	id, ok, err := uuidParam(c, "id")
	if !ok {
		return err
	}
	var req customerStatusRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	user, err := h.customers.UpdateStatus(c.Request().Context(), id, userStatus(req.Status))
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, util.Data("customer", user))
}
