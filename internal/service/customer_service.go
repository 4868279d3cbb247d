package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const (
	defaultCustomerListLimit = 50
	maxCustomerListLimit     = 200
)

type CustomerServiceConfig struct {
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

type CustomerCreateInput struct {
	Email    string
	Password string
	Profile  domain.ProfileFields
}

type CustomerUpdateInput struct {
	Email   *string
	Status  *domain.UserStatus
	Profile domain.ProfileFields
}

// CustomerService is the admin view over customer accounts.
type CustomerService struct {
	users ports.UserRepository

	storeTimeout time.Duration
	log          logrus.FieldLogger
}

func NewCustomerService(users ports.UserRepository, cfg CustomerServiceConfig) *CustomerService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CustomerService{
		users:        users,
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "customer"),
	}
}

func (s *CustomerService) List(ctx context.Context, limit, offset int) ([]domain.CustomerListItem, error) {
	limit, offset = normalizePage(limit, offset, defaultCustomerListLimit, maxCustomerListLimit)

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	items, err := s.users.ListCustomers(ctx, limit, offset)
	if err != nil {
		return nil, s.storeError("list customers", err)
	}
	if items == nil {
		items = []domain.CustomerListItem{}
	}
	return items, nil
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.findCustomer(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, input CustomerCreateInput) (*domain.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	profile := normalizeProfile(input.Profile)
	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Status:       domain.UserStatusActive,
	}, profile)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, s.storeError("create customer", err)
	}
	return user, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, input CustomerUpdateInput) (*domain.User, error) {
	var email *string
	if input.Email != nil {
		normalized, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		email = &normalized
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, validationError("unknown status %q", *input.Status)
	}
	profile := normalizeProfile(input.Profile)

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.findCustomer(ctx, id); err != nil {
		return nil, err
	}
	user, err := s.users.Update(ctx, id, email, input.Status, profile)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, ErrEmailTaken
		case isNotFound(err):
			return nil, ErrUserNotFound
		}
		return nil, s.storeError("update customer", err)
	}
	return user, nil
}

func (s *CustomerService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, validationError("unknown status %q", status)
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if _, err := s.findCustomer(ctx, id); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateStatus(ctx, id, status)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, s.storeError("update customer status", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "status": status}).Info("customer status changed")
	return user, nil
}

func (s *CustomerService) findCustomer(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, s.storeError("find customer", err)
	}
	if user.Role != domain.RoleCustomer {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *CustomerService) storeError(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Error("store call failed")
	return storeFailure(err)
}

func normalizeProfile(p domain.ProfileFields) domain.ProfileFields {
	return domain.ProfileFields{
		FullName:       normalizeString(p.FullName),
		Phone:          normalizeString(p.Phone),
		Address:        normalizeString(p.Address),
		Gender:         normalizeString(p.Gender),
		IdentityNumber: normalizeString(p.IdentityNumber),
	}
}
