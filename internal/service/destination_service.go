package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/media"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

const (
	defaultDestinationListLimit = 50
	maxDestinationListLimit     = 200
	maxDestinationNameLength    = 150
)

type DestinationServiceConfig struct {
	Bucket       string
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

type DestinationInput struct {
	Name        *string
	Description *string
	CityID      *int64
	CountryID   *int64
}

type DestinationService struct {
	destinations ports.DestinationRepository
	masterData   ports.MasterDataRepository
	storage      ports.ObjectStorage
	images       media.Processor

	bucket       string
	storeTimeout time.Duration
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewDestinationService(
	destinations ports.DestinationRepository,
	masterData ports.MasterDataRepository,
	storage ports.ObjectStorage,
	images media.Processor,
	cfg DestinationServiceConfig,
) *DestinationService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DestinationService{
		destinations: destinations,
		masterData:   masterData,
		storage:      storage,
		images:       images,
		bucket:       strings.TrimSpace(cfg.Bucket),
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "destination"),
		now:          time.Now,
	}
}

func (s *DestinationService) List(ctx context.Context, limit, offset int) ([]domain.Destination, error) {
	limit, offset = normalizePage(limit, offset, defaultDestinationListLimit, maxDestinationListLimit)

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	items, err := s.destinations.List(ctx, limit, offset)
	if err != nil {
		return nil, s.storeError("list destinations", err)
	}
	if items == nil {
		items = []domain.Destination{}
	}
	return items, nil
}

func (s *DestinationService) Get(ctx context.Context, id uuid.UUID) (*domain.Destination, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	dest, err := s.destinations.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, s.storeError("find destination", err)
	}
	return dest, nil
}

func (s *DestinationService) Create(ctx context.Context, input DestinationInput, thumbnail *media.Upload) (*domain.Destination, error) {
	fields, err := normalizeDestinationInput(input)
	if err != nil {
		return nil, err
	}
	if fields.Name == nil {
		return nil, validationError("name is required")
	}
	if fields.CityID == nil || fields.CountryID == nil {
		return nil, validationError("city_id and country_id are required")
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.checkLocation(ctx, *fields.CityID, *fields.CountryID); err != nil {
		return nil, err
	}

	if thumbnail != nil {
		key, err := s.storeThumbnail(ctx, *thumbnail)
		if err != nil {
			return nil, err
		}
		fields.Thumbnail = &key
	}

	dest, err := s.destinations.Create(ctx, fields)
	if err != nil {
		s.discardThumbnail(fields.Thumbnail)
		return nil, s.storeError("create destination", err)
	}
	return dest, nil
}

// Update applies a partial change. A new thumbnail replaces the stored one,
// and the old object is removed once the row points at the new key.
func (s *DestinationService) Update(ctx context.Context, id uuid.UUID, input DestinationInput, thumbnail *media.Upload) (*domain.Destination, error) {
	fields, err := normalizeDestinationInput(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	current, err := s.destinations.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, s.storeError("find destination", err)
	}

	if fields.CityID != nil || fields.CountryID != nil {
		cityID, countryID := current.CityID, current.CountryID
		if fields.CityID != nil {
			cityID = *fields.CityID
		}
		if fields.CountryID != nil {
			countryID = *fields.CountryID
		}
		if err := s.checkLocation(ctx, cityID, countryID); err != nil {
			return nil, err
		}
	}

	if thumbnail != nil {
		key, err := s.storeThumbnail(ctx, *thumbnail)
		if err != nil {
			return nil, err
		}
		fields.Thumbnail = &key
	}

	updated, err := s.destinations.Update(ctx, id, fields)
	if err != nil {
		s.discardThumbnail(fields.Thumbnail)
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, s.storeError("update destination", err)
	}
	if fields.Thumbnail != nil {
		s.discardThumbnail(current.Thumbnail)
	}
	return updated, nil
}

func (s *DestinationService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	current, err := s.destinations.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrDestinationNotFound
		}
		return s.storeError("find destination", err)
	}
	if err := s.destinations.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ports.ErrReferenced), isForeignKeyViolation(err):
			return ErrDestinationInUse
		case isNotFound(err):
			return ErrDestinationNotFound
		}
		return s.storeError("delete destination", err)
	}
	s.discardThumbnail(current.Thumbnail)
	return nil
}

func (s *DestinationService) checkLocation(ctx context.Context, cityID, countryID int64) error {
	city, err := s.masterData.FindCity(ctx, cityID)
	if err != nil {
		if isNotFound(err) {
			return validationError("city %d does not exist", cityID)
		}
		return s.storeError("find city", err)
	}
	if city.CountryID != countryID {
		return validationError("city %d does not belong to country %d", cityID, countryID)
	}
	return nil
}

func (s *DestinationService) storeThumbnail(ctx context.Context, upload media.Upload) (string, error) {
	if s.images == nil || s.storage == nil {
		return "", validationError("thumbnail uploads are not enabled")
	}
	img, err := s.images.Process(ctx, upload)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			return "", fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return "", err
	}
	key := fmt.Sprintf("destinations/%s_%s%s", s.now().UTC().Format("20060102T150405Z"), uuid.NewString(), img.Extension)
	if _, err := s.storage.Upload(ctx, s.bucket, key, img.ContentType, bytes.NewReader(img.Bytes), int64(len(img.Bytes))); err != nil {
		return "", s.storeError("upload thumbnail", err)
	}
	return key, nil
}

func (s *DestinationService) discardThumbnail(key *string) {
	if key == nil || *key == "" || s.storage == nil {
		return
	}
	ctx, cancel := withStoreTimeout(context.Background(), s.storeTimeout)
	defer cancel()
	if err := s.storage.Remove(ctx, s.bucket, *key); err != nil {
		s.log.WithError(err).WithField("object", *key).Warn("remove thumbnail failed")
	}
}

func (s *DestinationService) storeError(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Error("store call failed")
	return storeFailure(err)
}

func normalizeDestinationInput(input DestinationInput) (domain.DestinationFields, error) {
	fields := domain.DestinationFields{
		Description: input.Description,
		CityID:      input.CityID,
		CountryID:   input.CountryID,
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return fields, validationError("name cannot be empty")
		}
		if len(name) > maxDestinationNameLength {
			return fields, validationError("name must be at most %d characters", maxDestinationNameLength)
		}
		fields.Name = &name
	}
	if input.CityID != nil && *input.CityID <= 0 {
		return fields, validationError("city_id must be positive")
	}
	if input.CountryID != nil && *input.CountryID <= 0 {
		return fields, validationError("country_id must be positive")
	}
	return fields, nil
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
