package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/media"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/memory"
	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const (
	countryIndonesia int64 = 1
	countryJapan     int64 = 2
	cityBali         int64 = 10
	cityKyoto        int64 = 20
)

type testServer struct {
	e           *echo.Echo
	store       *memory.Store
	storage     *memory.ObjectStorage
	jwt         *util.JWTManager
	admin       *domain.User
	customer    *domain.User
	destination *domain.Destination
	pkg         *domain.TravelPackage
	schedule    *domain.Schedule
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestServer wires the full router over the in-memory store with one
// admin, one customer and an active package with five open seats.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.AddCountry(domain.Country{ID: countryIndonesia, Name: "Indonesia"})
	store.AddCountry(domain.Country{ID: countryJapan, Name: "Japan"})
	store.AddCity(domain.City{ID: cityBali, CountryID: countryIndonesia, Name: "Bali"})
	store.AddCity(domain.City{ID: cityKyoto, CountryID: countryJapan, Name: "Kyoto"})

	s := &testServer{
		store:   store,
		storage: memory.NewObjectStorage(),
		jwt:     util.NewJWTManager("handler-test-secret", time.Hour),
	}
	s.admin = s.addUser(t, "admin@example.com", domain.RoleAdmin)
	s.customer = s.addUser(t, "customer@example.com", domain.RoleCustomer)

	name := "Bali"
	city, country := cityBali, countryIndonesia
	dest, err := store.Destinations().Create(ctx, domain.DestinationFields{Name: &name, CityID: &city, CountryID: &country})
	require.NoError(t, err)
	s.destination = dest

	pkg, err := store.Packages().Create(ctx, &domain.TravelPackage{
		ID:            uuid.New(),
		DestinationID: dest.ID,
		Title:         "Bali Escape",
		DurationDays:  4,
		Price:         decimal.NewFromInt(5_000_000),
		Quota:         5,
		Status:        domain.PackageStatusActive,
	}, domain.PackageContents{
		Itineraries: []domain.Itinerary{{DayNumber: 1, Title: "Arrival"}},
		Facilities:  []string{"Breakfast"},
	})
	require.NoError(t, err)
	s.pkg = pkg

	departure := time.Now().Add(30 * 24 * time.Hour).UTC()
	s.schedule, err = store.Schedules().Create(ctx, &domain.Schedule{
		ID:             uuid.New(),
		PackageID:      pkg.ID,
		DepartureDate:  departure,
		ReturnDate:     departure.Add(4 * 24 * time.Hour),
		AvailableQuota: 5,
	})
	require.NoError(t, err)

	log := quietLogger()
	bookings := service.NewBookingService(store.Bookings(), store.Schedules(), store.Packages(), service.BookingServiceConfig{
		Pricing: service.DefaultPricingPolicy(),
		Logger:  log,
	})
	dashboard := service.NewDashboardService(store.Bookings(), store.Users(), store.Packages(), store.Destinations(), store.Reviews(),
		service.DashboardServiceConfig{Logger: log})
	destinations := service.NewDestinationService(store.Destinations(), store.MasterData(), s.storage, media.NewThumbnailProcessor(0, 0),
		service.DestinationServiceConfig{Bucket: "travel-assets", Logger: log})

	svc := Services{
		Auth:         service.NewAuthService(store.Users(), s.jwt, service.AuthServiceConfig{Logger: log}),
		Bookings:     bookings,
		Dashboard:    dashboard,
		Packages:     service.NewPackageService(store.Packages(), store.Schedules(), store.Destinations(), store.Reviews(), service.PackageServiceConfig{Logger: log}),
		Schedules:    service.NewScheduleService(store.Schedules(), store.Packages(), service.ScheduleServiceConfig{Logger: log}),
		Destinations: destinations,
		MasterData:   service.NewMasterDataService(store.MasterData(), memory.NewLookupCache(), service.MasterDataServiceConfig{Logger: log}),
		Customers:    service.NewCustomerService(store.Users(), service.CustomerServiceConfig{Logger: log}),
		Reviews:      service.NewReviewService(store.Reviews(), store.Packages(), service.ReviewServiceConfig{Logger: log}),
	}
	s.e = NewRouter(RouterConfig{Logger: log}, svc)
	return s
}

func (s *testServer) addUser(t *testing.T, email string, role domain.UserRole) *domain.User {
	t.Helper()
	user, err := s.store.Users().Create(context.Background(), &domain.User{
		ID:     uuid.New(),
		Email:  email,
		Role:   role,
		Status: domain.UserStatusActive,
	}, domain.ProfileFields{})
	require.NoError(t, err)
	return user
}

func (s *testServer) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token, _, err := s.jwt.Generate(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (s *testServer) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
