package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

const (
	DefaultRecentBookingsLimit = 5
	MaxRecentBookingsLimit     = 50

	unknownCustomer    = "Unknown customer"
	unknownPackage     = "Unknown package"
	unknownDestination = "Unknown destination"
)

type DashboardServiceConfig struct {
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

type DashboardService struct {
	bookings     ports.BookingRepository
	users        ports.UserRepository
	packages     ports.PackageRepository
	destinations ports.DestinationRepository
	reviews      ports.ReviewRepository

	storeTimeout time.Duration
	log          logrus.FieldLogger
}

func NewDashboardService(
	bookings ports.BookingRepository,
	users ports.UserRepository,
	packages ports.PackageRepository,
	destinations ports.DestinationRepository,
	reviews ports.ReviewRepository,
	cfg DashboardServiceConfig,
) *DashboardService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DashboardService{
		bookings:     bookings,
		users:        users,
		packages:     packages,
		destinations: destinations,
		reviews:      reviews,
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "dashboard"),
	}
}

// GetStats runs the dashboard aggregates concurrently; each goroutine owns one field.
// The first failure cancels the rest.
func (s *DashboardService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	var (
		stats   domain.DashboardStats
		summary *domain.ReviewSummary
	)
	pending := domain.BookingStatusPending

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalBookings, err = s.bookings.Count(gctx, domain.BookingCountFilter{})
		return wrapStat("total bookings", err)
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.bookings.SumTotalPrice(gctx, domain.BookingStatusPaid)
		return wrapStat("total revenue", err)
	})
	g.Go(func() (err error) {
		stats.TotalCustomers, err = s.users.CountByRole(gctx, domain.RoleCustomer)
		return wrapStat("total customers", err)
	})
	g.Go(func() (err error) {
		stats.PendingBookings, err = s.bookings.Count(gctx, domain.BookingCountFilter{Status: &pending})
		return wrapStat("pending bookings", err)
	})
	g.Go(func() (err error) {
		stats.TotalPackages, err = s.packages.Count(gctx)
		return wrapStat("total packages", err)
	})
	g.Go(func() (err error) {
		stats.TotalDestinations, err = s.destinations.Count(gctx)
		return wrapStat("total destinations", err)
	})
	g.Go(func() (err error) {
		summary, err = s.reviews.Summary(gctx)
		return wrapStat("review summary", err)
	})

	if err := g.Wait(); err != nil {
		s.log.WithError(err).Error("dashboard stats failed")
		return nil, storeFailure(err)
	}

	if summary != nil {
		stats.TotalReviews = summary.Total
		stats.AvgRating = roundRating(summary.AverageRating)
	}
	return &stats, nil
}

func (s *DashboardService) GetRecentBookings(ctx context.Context, limit int) ([]domain.RecentBookingView, error) {
	if limit <= 0 {
		limit = DefaultRecentBookingsLimit
	}
	if limit > MaxRecentBookingsLimit {
		limit = MaxRecentBookingsLimit
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	rows, err := s.bookings.ListRecent(ctx, limit)
	if err != nil {
		s.log.WithError(err).Error("recent bookings failed")
		return nil, storeFailure(err)
	}

	views := make([]domain.RecentBookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, recentBookingView(row))
	}
	return views, nil
}

func recentBookingView(row domain.RecentBooking) domain.RecentBookingView {
	view := domain.RecentBookingView{
		ID:              row.ID,
		BookingCode:     row.BookingCode,
		Status:          row.Status,
		Participants:    row.Participants,
		TotalPrice:      row.TotalPrice,
		CreatedAt:       row.CreatedAt,
		CustomerName:    unknownCustomer,
		PackageTitle:    unknownPackage,
		DestinationName: unknownDestination,
		DepartureDate:   row.DepartureDate,
	}
	if row.CustomerEmail != nil {
		view.CustomerEmail = *row.CustomerEmail
		view.CustomerName = (&domain.User{Email: *row.CustomerEmail, Profile: &domain.Profile{FullName: row.CustomerName}}).DisplayName()
	}
	if row.PackageTitle != nil {
		view.PackageTitle = *row.PackageTitle
	}
	if row.DestinationName != nil {
		view.DestinationName = *row.DestinationName
	}
	return view
}

func wrapStat(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func roundRating(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
