package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

func seedSchedule(t *testing.T, s *Store, quota, available int) (*domain.TravelPackage, *domain.Schedule) {
	t.Helper()
	ctx := context.Background()
	s.AddCountry(domain.Country{ID: 1, Name: "Indonesia"})
	s.AddCity(domain.City{ID: 10, CountryID: 1, Name: "Bali"})
	name := "Bali"
	city, country := int64(10), int64(1)
	dest, err := s.Destinations().Create(ctx, domain.DestinationFields{Name: &name, CityID: &city, CountryID: &country})
	require.NoError(t, err)

	pkg, err := s.Packages().Create(ctx, &domain.TravelPackage{
		ID:            uuid.New(),
		DestinationID: dest.ID,
		Title:         "Bali Escape",
		DurationDays:  3,
		Price:         decimal.NewFromInt(1000),
		Quota:         quota,
		Status:        domain.PackageStatusActive,
	}, domain.PackageContents{})
	require.NoError(t, err)

	departure := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	schedule, err := s.Schedules().Create(ctx, &domain.Schedule{
		ID:             uuid.New(),
		PackageID:      pkg.ID,
		DepartureDate:  departure,
		ReturnDate:     departure.Add(72 * time.Hour),
		AvailableQuota: available,
	})
	require.NoError(t, err)
	return pkg, schedule
}

func booking(scheduleID uuid.UUID, participants int) *domain.Booking {
	return &domain.Booking{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		ScheduleID:   scheduleID,
		BookingCode:  "BK-" + uuid.NewString(),
		Participants: participants,
		Status:       domain.BookingStatusPending,
	}
}

func TestBookingRepo_QuotaAndCancel(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, schedule := seedSchedule(t, s, 5, 4)
	repo := s.Bookings()

	_, err := repo.Create(ctx, booking(schedule.ID, 5))
	require.ErrorIs(t, err, ports.ErrQuotaUnavailable)

	created, err := repo.Create(ctx, booking(schedule.ID, 3))
	require.NoError(t, err)
	left, err := s.Schedules().FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, left.AvailableQuota)

	_, err = repo.UpdateStatus(ctx, created.ID, domain.BookingStatusPaid, domain.BookingStatusCancelled)
	require.ErrorIs(t, err, ports.ErrStatusChanged)

	_, err = repo.UpdateStatus(ctx, created.ID, domain.BookingStatusPending, domain.BookingStatusCancelled)
	require.NoError(t, err)
	left, err = s.Schedules().FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, left.AvailableQuota)
}

func TestBookingRepo_CancelNeverExceedsPackageQuota(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	pkg, schedule := seedSchedule(t, s, 5, 5)

	created, err := s.Bookings().Create(ctx, booking(schedule.ID, 2))
	require.NoError(t, err)
	lower := 2
	_, err = s.Packages().Update(ctx, pkg.ID, domain.PackageFields{Quota: &lower})
	require.ErrorIs(t, err, ports.ErrQuotaBelowSchedule)

	s.mu.Lock()
	s.packages[pkg.ID].Quota = 4
	s.mu.Unlock()
	_, err = s.Bookings().UpdateStatus(ctx, created.ID, domain.BookingStatusPending, domain.BookingStatusCancelled)
	require.NoError(t, err)
	left, err := s.Schedules().FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, left.AvailableQuota)
}

func TestPackageRepo_DeleteRemovesOwnedRows(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	pkg, schedule := seedSchedule(t, s, 5, 5)

	require.NoError(t, s.Packages().Delete(ctx, pkg.ID))

	_, err := s.Schedules().FindByID(ctx, schedule.ID)
	assert.ErrorIs(t, err, errNotFound)
	_, err = s.Packages().FindByID(ctx, pkg.ID)
	assert.ErrorIs(t, err, errNotFound)
}

func TestPackageRepo_DeleteKeepsReviewedPackage(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	pkg, schedule := seedSchedule(t, s, 5, 5)
	user := &domain.User{ID: uuid.New(), Email: "a@example.com", Role: domain.RoleCustomer, Status: domain.UserStatusActive}
	_, err := s.Users().Create(ctx, user, domain.ProfileFields{})
	require.NoError(t, err)
	_, err = s.Reviews().Create(ctx, &domain.Review{PackageID: pkg.ID, UserID: user.ID, Rating: 4})
	require.NoError(t, err)

	require.ErrorIs(t, s.Packages().Delete(ctx, pkg.ID), ports.ErrReferenced)

	_, err = s.Schedules().FindByID(ctx, schedule.ID)
	require.NoError(t, err)
	summary, err := s.Reviews().Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Total)
}

func TestStore_FailWith(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("connection refused")

	s.FailWith("bookings.Count", boom)
	_, err := s.Bookings().Count(ctx, domain.BookingCountFilter{})
	require.ErrorIs(t, err, boom)

	s.FailWith("bookings.Count", nil)
	n, err := s.Bookings().Count(ctx, domain.BookingCountFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
