package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

type BookingRepository interface {
	// Create inserts the booking and takes booking.Participants seats from its
	// schedule atomically. It returns ErrQuotaUnavailable when not enough remain.
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*domain.Booking, error)
	// UpdateStatus moves a booking from one status to another, returning
	// ErrStatusChanged when the stored status is no longer from. Moving to
	// CANCELLED gives the seats back to the schedule.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error)
	ListRecent(ctx context.Context, limit int) ([]domain.RecentBooking, error)
	Count(ctx context.Context, filter domain.BookingCountFilter) (int64, error)
	SumTotalPrice(ctx context.Context, status domain.BookingStatus) (decimal.Decimal, error)
}
