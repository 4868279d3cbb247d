package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/service"
)

const APIPrefix = "/api/v1"

type RouterConfig struct {
	AllowOrigins []string
	SwaggerSpec  string
	BodyLimit    string
	Logger       logrus.FieldLogger
}

type Services struct {
	Auth         *service.AuthService
	Bookings     *service.BookingService
	Dashboard    *service.DashboardService
	Packages     *service.PackageService
	Schedules    *service.ScheduleService
	Destinations *service.DestinationService
	MasterData   *service.MasterDataService
	Customers    *service.CustomerService
	Reviews      *service.ReviewService
}

func NewRouter(cfg RouterConfig, svc Services) *echo.Echo {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "8M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	allowCredentials := true
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	e.Use(accessLog(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(requestBodyDump())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
			idempotencyKeyHeader,
		},
		AllowCredentials: allowCredentials,
	}))

	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}
	e.GET("/health", health)

	api := e.Group(APIPrefix)
	api.GET("/health", health)
	RegisterSwagger(api, cfg.SwaggerSpec, log)

	admin := api.Group("/admin", RequireAuth(svc.Auth), RequireAdmin())

	RegisterAuth(api, svc.Auth, log)
	RegisterBookings(api, svc.Auth, svc.Bookings, log)
	RegisterDashboard(admin, svc.Dashboard, log)
	RegisterPackages(api, admin, svc.Packages, svc.Schedules, log)
	RegisterReviews(api, svc.Auth, svc.Reviews, log)
	RegisterDestinations(api, admin, svc.Destinations, svc.MasterData, log)
	RegisterCustomers(admin, svc.Customers, log)
	return e
}
