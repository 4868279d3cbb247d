package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

type DestinationRepository interface {
	Create(ctx context.Context, fields domain.DestinationFields) (*domain.Destination, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.DestinationFields) (*domain.Destination, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Destination, error)
	List(ctx context.Context, limit, offset int) ([]domain.Destination, error)
	Count(ctx context.Context) (int64, error)
}

type MasterDataRepository interface {
	ListCountries(ctx context.Context) ([]domain.Country, error)
	ListCitiesByCountry(ctx context.Context, countryID int64) ([]domain.City, error)
	FindCity(ctx context.Context, id int64) (*domain.City, error)
}
