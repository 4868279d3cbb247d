package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

const (
	minRating              = 1
	maxRating              = 5
	maxReviewCommentLength = 2000
	defaultReviewListLimit = 20
	maxReviewListLimit     = 100
)

type ReviewServiceConfig struct {
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

type ReviewCreateInput struct {
	Rating  int
	Comment *string
}

type ReviewService struct {
	reviews  ports.ReviewRepository
	packages ports.PackageRepository

	storeTimeout time.Duration
	log          logrus.FieldLogger
}

func NewReviewService(reviews ports.ReviewRepository, packages ports.PackageRepository, cfg ReviewServiceConfig) *ReviewService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ReviewService{
		reviews:      reviews,
		packages:     packages,
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "review"),
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, packageID uuid.UUID, input ReviewCreateInput) (*domain.Review, *domain.ReviewAggregate, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, nil, err
	}
	comment := normalizeString(input.Comment)
	if comment != nil && utf8.RuneCountInString(*comment) > maxReviewCommentLength {
		return nil, nil, validationError("comment must be at most %d characters", maxReviewCommentLength)
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.ensurePackageExists(ctx, packageID); err != nil {
		return nil, nil, err
	}

	stored, err := s.reviews.Create(ctx, &domain.Review{
		ID:        uuid.New(),
		PackageID: packageID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, nil, s.storeError("create review", err)
	}

	aggregate, err := s.reviews.AggregateByPackage(ctx, packageID)
	if err != nil {
		return nil, nil, s.storeError("aggregate reviews", err)
	}
	return stored, aggregate, nil
}

func (s *ReviewService) ListPackageReviews(ctx context.Context, packageID uuid.UUID, limit, offset int) (*domain.ReviewListResult, error) {
	limit, offset = normalizePage(limit, offset, defaultReviewListLimit, maxReviewListLimit)

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.ensurePackageExists(ctx, packageID); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByPackage(ctx, packageID, limit, offset)
	if err != nil {
		return nil, s.storeError("list reviews", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	aggregate, err := s.reviews.AggregateByPackage(ctx, packageID)
	if err != nil {
		return nil, s.storeError("aggregate reviews", err)
	}

	return &domain.ReviewListResult{
		PackageID: packageID,
		Reviews:   reviews,
		Aggregate: *aggregate,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *ReviewService) ensurePackageExists(ctx context.Context, packageID uuid.UUID) error {
	if packageID == uuid.Nil {
		return ErrPackageNotFound
	}
	if _, err := s.packages.FindByID(ctx, packageID); err != nil {
		if isNotFound(err) {
			return ErrPackageNotFound
		}
		return s.storeError("find package", err)
	}
	return nil
}

func (s *ReviewService) storeError(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Error("store call failed")
	return storeFailure(err)
}

func validateRating(rating int) error {
	if rating < minRating || rating > maxRating {
		return validationError("rating must be between %d and %d", minRating, maxRating)
	}
	return nil
}
