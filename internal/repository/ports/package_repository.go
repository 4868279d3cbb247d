package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

type PackageRepository interface {
	// Create writes the package and everything in contents in one transaction.
	Create(ctx context.Context, pkg *domain.TravelPackage, contents domain.PackageContents) (*domain.TravelPackage, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.PackageFields) (*domain.TravelPackage, error)
	// Delete returns ErrHasBookings when any schedule has bookings and
	// ErrReferenced when the package has reviews. Neither changes anything.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.TravelPackage, error)
	List(ctx context.Context, filter domain.PackageListFilter) ([]domain.PackageListItem, error)
	ListItineraries(ctx context.Context, packageID uuid.UUID) ([]domain.Itinerary, error)
	ListFacilities(ctx context.Context, packageID uuid.UUID) ([]string, error)
	ListHotels(ctx context.Context, packageID uuid.UUID) ([]domain.Hotel, error)
	CountHotels(ctx context.Context, ids []uuid.UUID) (int, error)
	Count(ctx context.Context) (int64, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)
	ListByPackage(ctx context.Context, packageID uuid.UUID) ([]domain.Schedule, error)
	// Delete returns ErrHasBookings when bookings reference the schedule.
	Delete(ctx context.Context, id uuid.UUID) error
}
