package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User, profile domain.ProfileFields) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, email *string, status *domain.UserStatus, profile domain.ProfileFields) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]domain.CustomerListItem, error)
	CountByRole(ctx context.Context, role domain.UserRole) (int64, error)
}
