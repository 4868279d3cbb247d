package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	ListByPackage(ctx context.Context, packageID uuid.UUID, limit, offset int) ([]domain.Review, error)
	AggregateByPackage(ctx context.Context, packageID uuid.UUID) (*domain.ReviewAggregate, error)
	Summary(ctx context.Context) (*domain.ReviewSummary, error)
}
