package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type AuthHandler struct {
	auth *service.AuthService
	log  logrus.FieldLogger
}

func RegisterAuth(api *echo.Group, auth *service.AuthService, log logrus.FieldLogger) {
	h := &AuthHandler{auth: auth, log: log}
	g := api.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/google", h.google)
	g.GET("/me", h.me, RequireAuth(auth))
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	result, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) google(c echo.Context) error {
	var req googleLoginRequest
	if ok, err := bindRequest(c, &req); !ok {
		return err
	}
	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return writeServiceError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}
