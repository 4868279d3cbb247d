package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

func (f *fixture) packageService() *PackageService {
	return NewPackageService(f.store.Packages(), f.store.Schedules(), f.store.Destinations(), f.store.Reviews(), PackageServiceConfig{
		Logger: quietLogger(),
	})
}

func TestCreatePackageWritesNestedRows(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	hotel := f.store.AddHotel(domain.Hotel{Name: "Ubud Villas", Stars: 4})
	desc := "  Three days in Ubud  "

	detail, err := f.packageService().Create(context.Background(), PackageInput{
		DestinationID: f.destination.ID,
		Title:         " Ubud Retreat ",
		Description:   &desc,
		DurationDays:  3,
		Price:         decimal.RequireFromString("2500000"),
		Quota:         12,
		Itineraries: []domain.Itinerary{
			{DayNumber: 2, Title: "Rice terraces"},
			{DayNumber: 1, Title: "Arrival"},
		},
		Facilities: []string{"Breakfast", " breakfast ", "Airport pickup", ""},
		HotelIDs:   []uuid.UUID{hotel.ID, hotel.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ubud Retreat", detail.Title)
	assert.Equal(t, "Three days in Ubud", *detail.Description)
	assert.Equal(t, domain.PackageStatusActive, detail.Status)
	require.Len(t, detail.Itineraries, 2)
	assert.Equal(t, 1, detail.Itineraries[0].DayNumber)
	assert.Equal(t, 2, detail.Itineraries[1].DayNumber)
	assert.Equal(t, []string{"Breakfast", "Airport pickup"}, detail.Facilities)
	require.Len(t, detail.Hotels, 1)
	assert.Equal(t, hotel.ID, detail.Hotels[0].ID)
	require.NotNil(t, detail.Destination)
	assert.Equal(t, f.destination.ID, detail.Destination.ID)
	assert.Empty(t, detail.Schedules)
}

func TestCreatePackageValidation(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	svc := f.packageService()
	valid := func() PackageInput {
		return PackageInput{
			DestinationID: f.destination.ID,
			Title:         "Trip",
			DurationDays:  2,
			Price:         decimal.NewFromInt(100),
			Quota:         5,
		}
	}

	cases := map[string]func(in *PackageInput){
		"empty title":          func(in *PackageInput) { in.Title = "  " },
		"zero duration":        func(in *PackageInput) { in.DurationDays = 0 },
		"zero price":           func(in *PackageInput) { in.Price = decimal.Zero },
		"negative quota":       func(in *PackageInput) { in.Quota = -1 },
		"unknown status":       func(in *PackageInput) { in.Status = "ARCHIVED" },
		"repeated day number":  func(in *PackageInput) { in.Itineraries = []domain.Itinerary{{DayNumber: 1, Title: "a"}, {DayNumber: 1, Title: "b"}} },
		"day number below one": func(in *PackageInput) { in.Itineraries = []domain.Itinerary{{DayNumber: 0, Title: "a"}} },
		"unknown hotel":        func(in *PackageInput) { in.HotelIDs = []uuid.UUID{uuid.New()} },
		"missing destination":  func(in *PackageInput) { in.DestinationID = uuid.Nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	in := valid()
	in.DestinationID = uuid.New()
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrDestinationNotFound)
}

func TestDeletePackageWithBookingsIsBlocked(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	ctx := context.Background()
	_, err := f.bookingService().CreateBooking(ctx, f.customer.ID, BookingInput{ScheduleID: f.schedule.ID, Participants: 2})
	require.NoError(t, err)

	svc := f.packageService()
	before, err := svc.Get(ctx, f.pkg.ID, false)
	require.NoError(t, err)

	err = svc.Delete(ctx, f.pkg.ID)
	require.ErrorIs(t, err, ErrConflictOnDelete)
	require.ErrorIs(t, err, ErrPackageHasBookings)

	after, err := svc.Get(ctx, f.pkg.ID, false)
	require.NoError(t, err)
	assert.Equal(t, before.Itineraries, after.Itineraries)
	assert.Equal(t, before.Facilities, after.Facilities)
	assert.Equal(t, before.Schedules, after.Schedules)
	assert.Equal(t, 8, f.availableQuota(t, f.schedule.ID))
	assert.Equal(t, int64(1), f.bookingCount(t))
}

func TestDeletePackageRemovesOwnedRows(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	ctx := context.Background()
	svc := f.packageService()

	require.NoError(t, svc.Delete(ctx, f.pkg.ID))

	_, err := svc.Get(ctx, f.pkg.ID, false)
	require.ErrorIs(t, err, ErrPackageNotFound)
	_, err = f.store.Schedules().FindByID(ctx, f.schedule.ID)
	require.Error(t, err)
	itineraries, err := f.store.Packages().ListItineraries(ctx, f.pkg.ID)
	require.NoError(t, err)
	assert.Empty(t, itineraries)

	require.ErrorIs(t, svc.Delete(ctx, f.pkg.ID), ErrNotFound)
}

func TestDeletePackageWithReviewsIsBlocked(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	ctx := context.Background()
	_, _, err := f.reviewService().CreateReview(ctx, f.customer.ID, f.pkg.ID, ReviewCreateInput{Rating: 5})
	require.NoError(t, err)

	err = f.packageService().Delete(ctx, f.pkg.ID)
	require.ErrorIs(t, err, ErrConflictOnDelete)
	require.ErrorIs(t, err, ErrPackageHasReviews)

	summary, err := f.store.Reviews().Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Total)
	_, err = f.store.Schedules().FindByID(ctx, f.schedule.ID)
	require.NoError(t, err)
}

func TestDeletePackageForeignKeyRaceIsConflict(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	f.store.FailWith("packages.Delete", &pgconn.PgError{Code: "23503", ConstraintName: "bookings_schedule_id_fkey"})

	err := f.packageService().Delete(context.Background(), f.pkg.ID)
	require.ErrorIs(t, err, ErrPackageHasBookings)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestUpdatePackage(t *testing.T) {
	f := newFixture(t, "1000", 10, 8)
	ctx := context.Background()
	svc := f.packageService()

	lower := 5
	_, err := svc.Update(ctx, f.pkg.ID, domain.PackageFields{Quota: &lower})
	require.ErrorIs(t, err, ErrValidation)

	title := "Bali Escape Plus"
	price := decimal.NewFromInt(1500)
	itineraries := []domain.Itinerary{{DayNumber: 1, Title: "Beach"}, {DayNumber: 2, Title: "Temple"}}
	updated, err := svc.Update(ctx, f.pkg.ID, domain.PackageFields{Title: &title, Price: &price, Itineraries: &itineraries})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.Price.Equal(price))
	require.Len(t, updated.Itineraries, 2)
	assert.Equal(t, []string{"Breakfast"}, updated.Facilities)

	_, err = svc.Update(ctx, uuid.New(), domain.PackageFields{Title: &title})
	require.ErrorIs(t, err, ErrPackageNotFound)
}

func TestPublicPackageViews(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	ctx := context.Background()
	svc := f.packageService()

	hidden, err := svc.Create(ctx, PackageInput{
		DestinationID: f.destination.ID,
		Title:         "Draft",
		DurationDays:  1,
		Price:         decimal.NewFromInt(10),
		Quota:         1,
		Status:        domain.PackageStatusInactive,
	})
	require.NoError(t, err)

	public, err := svc.ListPublic(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, f.pkg.ID, public[0].ID)
	assert.Equal(t, 1, public[0].ScheduleCount)
	assert.Equal(t, "Bali", *public[0].DestinationName)

	all, err := svc.ListAdmin(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Get(ctx, hidden.ID, true)
	require.ErrorIs(t, err, ErrPackageNotFound)
	_, err = svc.Get(ctx, hidden.ID, false)
	require.NoError(t, err)
}

func TestScheduleService(t *testing.T) {
	f := newFixture(t, "1000", 10, 10)
	ctx := context.Background()
	svc := NewScheduleService(f.store.Schedules(), f.store.Packages(), ScheduleServiceConfig{Logger: quietLogger()})

	departure := f.schedule.DepartureDate.Add(-7 * 24 * time.Hour)
	created, err := svc.Create(ctx, f.pkg.ID, ScheduleInput{DepartureDate: departure, ReturnDate: departure.Add(72 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, f.pkg.Quota, created.AvailableQuota)

	over := f.pkg.Quota + 1
	_, err = svc.Create(ctx, f.pkg.ID, ScheduleInput{DepartureDate: departure, ReturnDate: departure.Add(time.Hour), AvailableQuota: &over})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, f.pkg.ID, ScheduleInput{DepartureDate: departure, ReturnDate: departure})
	require.ErrorIs(t, err, ErrValidation)

	past := time.Now().Add(-time.Hour)
	_, err = svc.Create(ctx, f.pkg.ID, ScheduleInput{DepartureDate: past, ReturnDate: past.Add(48 * time.Hour)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, uuid.New(), ScheduleInput{DepartureDate: departure, ReturnDate: departure.Add(time.Hour)})
	require.ErrorIs(t, err, ErrPackageNotFound)

	list, err := svc.ListByPackage(ctx, f.pkg.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID)

	_, err = f.bookingService().CreateBooking(ctx, f.customer.ID, BookingInput{ScheduleID: f.schedule.ID, Participants: 1})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, f.schedule.ID), ErrScheduleHasBookings)
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrScheduleNotFound)
}
