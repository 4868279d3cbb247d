package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/memory"
)

const (
	countryIndonesia int64 = 1
	countryJapan     int64 = 2
	cityBali         int64 = 10
	cityJakarta      int64 = 11
	cityKyoto        int64 = 20
)

type fixture struct {
	store       *memory.Store
	admin       *domain.User
	customer    *domain.User
	destination *domain.Destination
	pkg         *domain.TravelPackage
	schedule    *domain.Schedule
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedMasterData(store *memory.Store) {
	store.AddCountry(domain.Country{ID: countryIndonesia, Name: "Indonesia"})
	store.AddCountry(domain.Country{ID: countryJapan, Name: "Japan"})
	store.AddCity(domain.City{ID: cityJakarta, CountryID: countryIndonesia, Name: "Jakarta"})
	store.AddCity(domain.City{ID: cityBali, CountryID: countryIndonesia, Name: "Bali"})
	store.AddCity(domain.City{ID: cityKyoto, CountryID: countryJapan, Name: "Kyoto"})
}

// newFixture seeds one admin, one customer and a single active package with
// one future schedule holding available seats.
func newFixture(t *testing.T, price string, quota, available int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	seedMasterData(store)

	f := &fixture{store: store}
	f.admin = addUser(t, store, "admin@example.com", domain.RoleAdmin)
	f.customer = addUser(t, store, "customer@example.com", domain.RoleCustomer)

	name := "Bali"
	city, country := cityBali, countryIndonesia
	dest, err := store.Destinations().Create(ctx, domain.DestinationFields{Name: &name, CityID: &city, CountryID: &country})
	require.NoError(t, err)
	f.destination = dest

	pkg, err := store.Packages().Create(ctx, &domain.TravelPackage{
		ID:            uuid.New(),
		DestinationID: dest.ID,
		Title:         "Bali Escape",
		DurationDays:  4,
		Price:         decimal.RequireFromString(price),
		Quota:         quota,
		Status:        domain.PackageStatusActive,
	}, domain.PackageContents{
		Itineraries: []domain.Itinerary{{DayNumber: 1, Title: "Arrival"}},
		Facilities:  []string{"Breakfast"},
	})
	require.NoError(t, err)
	f.pkg = pkg

	f.schedule = addSchedule(t, store, pkg.ID, available)
	return f
}

func addUser(t *testing.T, store *memory.Store, email string, role domain.UserRole) *domain.User {
	t.Helper()
	user, err := store.Users().Create(context.Background(), &domain.User{
		ID:     uuid.New(),
		Email:  email,
		Role:   role,
		Status: domain.UserStatusActive,
	}, domain.ProfileFields{})
	require.NoError(t, err)
	return user
}

func addSchedule(t *testing.T, store *memory.Store, packageID uuid.UUID, available int) *domain.Schedule {
	t.Helper()
	departure := time.Now().Add(30 * 24 * time.Hour).UTC()
	schedule, err := store.Schedules().Create(context.Background(), &domain.Schedule{
		ID:             uuid.New(),
		PackageID:      packageID,
		DepartureDate:  departure,
		ReturnDate:     departure.Add(4 * 24 * time.Hour),
		AvailableQuota: available,
	})
	require.NoError(t, err)
	return schedule
}

func (f *fixture) bookingService() *BookingService {
	return NewBookingService(f.store.Bookings(), f.store.Schedules(), f.store.Packages(), BookingServiceConfig{
		Pricing: DefaultPricingPolicy(),
		Logger:  quietLogger(),
	})
}

func (f *fixture) availableQuota(t *testing.T, scheduleID uuid.UUID) int {
	t.Helper()
	schedule, err := f.store.Schedules().FindByID(context.Background(), scheduleID)
	require.NoError(t, err)
	return schedule.AvailableQuota
}

func (f *fixture) bookingCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.store.Bookings().Count(context.Background(), domain.BookingCountFilter{})
	require.NoError(t, err)
	return n
}
