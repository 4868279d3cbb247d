package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type ScheduleServiceConfig struct {
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

type ScheduleInput struct {
	DepartureDate  time.Time
	ReturnDate     time.Time
	AvailableQuota *int
}

type ScheduleService struct {
	schedules ports.ScheduleRepository
	packages  ports.PackageRepository

	storeTimeout time.Duration
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewScheduleService(schedules ports.ScheduleRepository, packages ports.PackageRepository, cfg ScheduleServiceConfig) *ScheduleService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ScheduleService{
		schedules:    schedules,
		packages:     packages,
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "schedule"),
		now:          time.Now,
	}
}

// Create adds a departure to a package. Availability defaults to the package quota.
func (s *ScheduleService) Create(ctx context.Context, packageID uuid.UUID, input ScheduleInput) (*domain.Schedule, error) {
	if input.DepartureDate.IsZero() || input.ReturnDate.IsZero() {
		return nil, validationError("departure_date and return_date are required")
	}
	if !input.ReturnDate.After(input.DepartureDate) {
		return nil, validationError("return_date must be after departure_date")
	}
	if !input.DepartureDate.After(s.now()) {
		return nil, validationError("departure_date must be in the future")
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, s.storeError("find package", err)
	}

	available := pkg.Quota
	if input.AvailableQuota != nil {
		available = *input.AvailableQuota
	}
	if available < 0 || available > pkg.Quota {
		return nil, validationError("available_quota must be between 0 and %d", pkg.Quota)
	}

	created, err := s.schedules.Create(ctx, &domain.Schedule{
		ID:             uuid.New(),
		PackageID:      pkg.ID,
		DepartureDate:  input.DepartureDate.UTC(),
		ReturnDate:     input.ReturnDate.UTC(),
		AvailableQuota: available,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrPackageNotFound
		}
		return nil, s.storeError("create schedule", err)
	}
	return created, nil
}

func (s *ScheduleService) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]domain.Schedule, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.packages.FindByID(ctx, packageID); err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, s.storeError("find package", err)
	}
	items, err := s.schedules.ListByPackage(ctx, packageID)
	if err != nil {
		return nil, s.storeError("list schedules", err)
	}
	if items == nil {
		items = []domain.Schedule{}
	}
	return items, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.schedules.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ports.ErrHasBookings), isForeignKeyViolation(err):
			return ErrScheduleHasBookings
		case isNotFound(err):
			return ErrScheduleNotFound
		}
		return s.storeError("delete schedule", err)
	}
	return nil
}

func (s *ScheduleService) storeError(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Error("store call failed")
	return storeFailure(err)
}
