package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

const (
	defaultPackageListLimit = 20
	maxPackageListLimit     = 100
	maxPackageTitleLength   = 200
)

type PackageServiceConfig struct {
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

type PackageInput struct {
	DestinationID uuid.UUID
	Title         string
	Description   *string
	DurationDays  int
	Price         decimal.Decimal
	Quota         int
	Status        domain.PackageStatus
	Itineraries   []domain.Itinerary
	Facilities    []string
	HotelIDs      []uuid.UUID
}

type PackageService struct {
	packages     ports.PackageRepository
	schedules    ports.ScheduleRepository
	destinations ports.DestinationRepository
	reviews      ports.ReviewRepository

	storeTimeout time.Duration
	log          logrus.FieldLogger
}

func NewPackageService(
	packages ports.PackageRepository,
	schedules ports.ScheduleRepository,
	destinations ports.DestinationRepository,
	reviews ports.ReviewRepository,
	cfg PackageServiceConfig,
) *PackageService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PackageService{
		packages:     packages,
		schedules:    schedules,
		destinations: destinations,
		reviews:      reviews,
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "package"),
	}
}

func (s *PackageService) Create(ctx context.Context, input PackageInput) (*domain.PackageDetail, error) {
	status := input.Status
	if status == "" {
		status = domain.PackageStatusActive
	}
	pkg := &domain.TravelPackage{
		ID:            uuid.New(),
		DestinationID: input.DestinationID,
		Title:         strings.TrimSpace(input.Title),
		Description:   normalizeString(input.Description),
		DurationDays:  input.DurationDays,
		Price:         input.Price,
		Quota:         input.Quota,
		Status:        status,
	}
	if err := validatePackage(pkg); err != nil {
		return nil, err
	}
	itineraries, err := normalizeItineraries(input.Itineraries)
	if err != nil {
		return nil, err
	}
	contents := domain.PackageContents{
		Itineraries: itineraries,
		Facilities:  normalizeFacilities(input.Facilities),
		HotelIDs:    uniqueIDs(input.HotelIDs),
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.ensureDestination(ctx, pkg.DestinationID); err != nil {
		return nil, err
	}
	if err := s.ensureHotels(ctx, contents.HotelIDs); err != nil {
		return nil, err
	}

	created, err := s.packages.Create(ctx, pkg, contents)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, validationError("package references a missing destination or hotel")
		}
		if isUniqueViolation(err) {
			return nil, validationError("itinerary day numbers must be unique")
		}
		return nil, s.storeError("create package", err)
	}
	s.log.WithField("package_id", created.ID).Info("package created")
	return s.detail(ctx, created)
}

func (s *PackageService) Update(ctx context.Context, id uuid.UUID, fields domain.PackageFields) (*domain.PackageDetail, error) {
	if err := s.normalizeFields(&fields); err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if fields.DestinationID != nil {
		if err := s.ensureDestination(ctx, *fields.DestinationID); err != nil {
			return nil, err
		}
	}
	if fields.HotelIDs != nil {
		if err := s.ensureHotels(ctx, *fields.HotelIDs); err != nil {
			return nil, err
		}
	}

	updated, err := s.packages.Update(ctx, id, fields)
	if err != nil {
		switch {
		case isNotFound(err):
			return nil, ErrPackageNotFound
		case errors.Is(err, ports.ErrQuotaBelowSchedule):
			return nil, validationError("quota is below a schedule's available quota")
		case isUniqueViolation(err):
			return nil, validationError("itinerary day numbers must be unique")
		case isForeignKeyViolation(err):
			return nil, validationError("package references a missing destination or hotel")
		}
		return nil, s.storeError("update package", err)
	}
	return s.detail(ctx, updated)
}

// Delete removes the package and its owned rows. It refuses, changing
// nothing, while any schedule of the package has bookings or the package
// has reviews.
func (s *PackageService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.packages.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, ports.ErrHasBookings), isForeignKeyViolation(err):
			return ErrPackageHasBookings
		case errors.Is(err, ports.ErrReferenced):
			return ErrPackageHasReviews
		case isNotFound(err):
			return ErrPackageNotFound
		}
		return s.storeError("delete package", err)
	}
	s.log.WithField("package_id", id).Info("package deleted")
	return nil
}

// Get returns the package detail. With publicOnly set, inactive packages are
// reported as missing.
func (s *PackageService) Get(ctx context.Context, id uuid.UUID, publicOnly bool) (*domain.PackageDetail, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPackageNotFound
		}
		return nil, s.storeError("find package", err)
	}
	if publicOnly && !pkg.IsActive() {
		return nil, ErrPackageNotFound
	}
	return s.detail(ctx, pkg)
}

func (s *PackageService) ListPublic(ctx context.Context, limit, offset int) ([]domain.PackageListItem, error) {
	active := domain.PackageStatusActive
	return s.list(ctx, domain.PackageListFilter{Status: &active, Limit: limit, Offset: offset})
}

func (s *PackageService) ListAdmin(ctx context.Context, status *domain.PackageStatus, limit, offset int) ([]domain.PackageListItem, error) {
	if status != nil && !status.Valid() {
		return nil, validationError("unknown package status %q", *status)
	}
	return s.list(ctx, domain.PackageListFilter{Status: status, Limit: limit, Offset: offset})
}

func (s *PackageService) list(ctx context.Context, filter domain.PackageListFilter) ([]domain.PackageListItem, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset, defaultPackageListLimit, maxPackageListLimit)

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	items, err := s.packages.List(ctx, filter)
	if err != nil {
		return nil, s.storeError("list packages", err)
	}
	if items == nil {
		items = []domain.PackageListItem{}
	}
	return items, nil
}

func (s *PackageService) detail(ctx context.Context, pkg *domain.TravelPackage) (*domain.PackageDetail, error) {
	out := &domain.PackageDetail{TravelPackage: *pkg}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dest, err := s.destinations.FindByID(gctx, pkg.DestinationID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		out.Destination = dest
		return nil
	})
	g.Go(func() (err error) {
		out.Itineraries, err = s.packages.ListItineraries(gctx, pkg.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Facilities, err = s.packages.ListFacilities(gctx, pkg.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Hotels, err = s.packages.ListHotels(gctx, pkg.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Schedules, err = s.schedules.ListByPackage(gctx, pkg.ID)
		return err
	})
	g.Go(func() error {
		agg, err := s.reviews.AggregateByPackage(gctx, pkg.ID)
		if err != nil {
			return err
		}
		out.Reviews = *agg
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.storeError("load package detail", err)
	}

	if out.Itineraries == nil {
		out.Itineraries = []domain.Itinerary{}
	}
	if out.Facilities == nil {
		out.Facilities = []string{}
	}
	if out.Hotels == nil {
		out.Hotels = []domain.Hotel{}
	}
	if out.Schedules == nil {
		out.Schedules = []domain.Schedule{}
	}
	return out, nil
}

func (s *PackageService) ensureDestination(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("destination_id is required")
	}
	if _, err := s.destinations.FindByID(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrDestinationNotFound
		}
		return s.storeError("find destination", err)
	}
	return nil
}

func (s *PackageService) ensureHotels(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.packages.CountHotels(ctx, ids)
	if err != nil {
		return s.storeError("count hotels", err)
	}
	if found != len(ids) {
		return validationError("unknown hotel id")
	}
	return nil
}

func (s *PackageService) normalizeFields(fields *domain.PackageFields) error {
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" || len(title) > maxPackageTitleLength {
			return validationError("title must be 1-%d characters", maxPackageTitleLength)
		}
		fields.Title = &title
	}
	if fields.DurationDays != nil && *fields.DurationDays <= 0 {
		return validationError("duration_days must be positive")
	}
	if fields.Price != nil && !fields.Price.IsPositive() {
		return validationError("price must be positive")
	}
	if fields.Quota != nil && *fields.Quota <= 0 {
		return validationError("quota must be positive")
	}
	if fields.Status != nil && !fields.Status.Valid() {
		return validationError("unknown package status %q", *fields.Status)
	}
	if fields.Itineraries != nil {
		items, err := normalizeItineraries(*fields.Itineraries)
		if err != nil {
			return err
		}
		fields.Itineraries = &items
	}
	if fields.Facilities != nil {
		facilities := normalizeFacilities(*fields.Facilities)
		fields.Facilities = &facilities
	}
	if fields.HotelIDs != nil {
		ids := uniqueIDs(*fields.HotelIDs)
		fields.HotelIDs = &ids
	}
	return nil
}

func (s *PackageService) storeError(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Error("store call failed")
	return storeFailure(err)
}

func validatePackage(pkg *domain.TravelPackage) error {
	switch {
	case pkg.Title == "" || len(pkg.Title) > maxPackageTitleLength:
		return validationError("title must be 1-%d characters", maxPackageTitleLength)
	case pkg.DurationDays <= 0:
		return validationError("duration_days must be positive")
	case !pkg.Price.IsPositive():
		return validationError("price must be positive")
	case pkg.Quota <= 0:
		return validationError("quota must be positive")
	case !pkg.Status.Valid():
		return validationError("unknown package status %q", pkg.Status)
	}
	return nil
}

// normalizeItineraries checks day numbers and returns the entries ordered by day.
func normalizeItineraries(items []domain.Itinerary) ([]domain.Itinerary, error) {
	out := make([]domain.Itinerary, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		if item.DayNumber < 1 {
			return nil, validationError("itinerary day_number must be at least 1")
		}
		if _, dup := seen[item.DayNumber]; dup {
			return nil, validationError("itinerary day_number %d is repeated", item.DayNumber)
		}
		seen[item.DayNumber] = struct{}{}
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			return nil, validationError("itinerary for day %d needs a title", item.DayNumber)
		}
		item.Description = normalizeString(item.Description)
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func normalizeFacilities(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
