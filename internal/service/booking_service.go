package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

const (
	bookingCodePrefix       = "BK-"
	defaultBookingListLimit = 20
	maxBookingListLimit     = 100
	maxIdempotencyKeyLength = 128
)

type BookingServiceConfig struct {
	Pricing      PricingPolicy
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

type BookingInput struct {
	ScheduleID     uuid.UUID
	PackageID      *uuid.UUID
	Participants   int
	IdempotencyKey *string
}

type BookingResult struct {
	Booking  *domain.Booking `json:"booking"`
	Quote    Quote           `json:"quote"`
	Replayed bool            `json:"replayed"`
}

type BookingService struct {
	bookings  ports.BookingRepository
	schedules ports.ScheduleRepository
	packages  ports.PackageRepository

	pricing      PricingPolicy
	storeTimeout time.Duration
	log          logrus.FieldLogger
	now          func() time.Time
	newCode      func() string
}

func NewBookingService(bookings ports.BookingRepository, schedules ports.ScheduleRepository, packages ports.PackageRepository, cfg BookingServiceConfig) *BookingService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BookingService{
		bookings:     bookings,
		schedules:    schedules,
		packages:     packages,
		pricing:      cfg.Pricing.normalized(),
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "booking"),
		now:          time.Now,
		newCode:      NewBookingCode,
	}
}

func NewBookingCode() string {
	return bookingCodePrefix + shortuuid.New()
}

func (s *BookingService) Pricing() PricingPolicy {
	return s.pricing
}

// Quote runs every bookability check and prices the request without writing anything.
func (s *BookingService) Quote(ctx context.Context, input BookingInput) (Quote, error) {
	quote, _, err := s.check(ctx, input)
	return quote, err
}

func (s *BookingService) check(ctx context.Context, input BookingInput) (Quote, *domain.Schedule, error) {
	if input.Participants < 1 {
		return Quote{}, nil, validationError("participant_count must be at least 1")
	}
	if input.ScheduleID == uuid.Nil {
		return Quote{}, nil, validationError("schedule_id is required")
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	schedule, err := s.schedules.FindByID(ctx, input.ScheduleID)
	if err != nil {
		if isNotFound(err) {
			return Quote{}, nil, ErrScheduleNotFound
		}
		return Quote{}, nil, s.storeError("find schedule", err)
	}
	if input.PackageID != nil && *input.PackageID != schedule.PackageID {
		return Quote{}, nil, ErrScheduleMismatch
	}

	pkg, err := s.packages.FindByID(ctx, schedule.PackageID)
	if err != nil {
		if isNotFound(err) {
			return Quote{}, nil, ErrPackageNotFound
		}
		return Quote{}, nil, s.storeError("find package", err)
	}
	if !pkg.IsActive() {
		return Quote{}, nil, ErrPackageInactive
	}
	if schedule.HasDeparted(s.now()) {
		return Quote{}, nil, ErrDeparturePassed
	}
	if schedule.AvailableQuota < input.Participants {
		return Quote{}, nil, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientQuota, input.Participants, schedule.AvailableQuota)
	}

	return s.pricing.Price(pkg.Price, input.Participants), schedule, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, input BookingInput) (*BookingResult, error) {
	key, err := normalizeIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if key != nil {
		if replay, err := s.findReplay(ctx, userID, *key); err != nil || replay != nil {
			return replay, err
		}
	}

	quote, schedule, err := s.check(ctx, input)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:             uuid.New(),
		UserID:         userID,
		ScheduleID:     schedule.ID,
		BookingCode:    s.newCode(),
		Participants:   input.Participants,
		Subtotal:       quote.Subtotal,
		Discount:       quote.Discount,
		TotalPrice:     quote.Total,
		Status:         domain.BookingStatusPending,
		IdempotencyKey: key,
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	created, err := s.bookings.Create(storeCtx, booking)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrQuotaUnavailable):
			return nil, ErrInsufficientQuota
		case isUniqueViolation(err) && key != nil:
			// A concurrent request with the same key won the insert.
			replay, findErr := s.findReplay(ctx, userID, *key)
			if findErr != nil {
				return nil, findErr
			}
			if replay != nil {
				return replay, nil
			}
		}
		return nil, s.storeError("create booking", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":   created.ID,
		"booking_code": created.BookingCode,
		"schedule_id":  created.ScheduleID,
		"participants": created.Participants,
	}).Info("booking created")

	return &BookingResult{Booking: created, Quote: quote}, nil
}

func (s *BookingService) findReplay(ctx context.Context, userID uuid.UUID, key string) (*BookingResult, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	existing, err := s.bookings.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, s.storeError("find booking by idempotency key", err)
	}
	return &BookingResult{Booking: existing, Quote: quoteFromBooking(existing), Replayed: true}, nil
}

func quoteFromBooking(b *domain.Booking) Quote {
	unit := decimal.Zero
	if b.Participants > 0 {
		unit = b.Subtotal.Div(decimal.NewFromInt(int64(b.Participants))).Round(moneyPlaces)
	}
	return Quote{
		UnitPrice:       unit,
		Participants:    b.Participants,
		Subtotal:        b.Subtotal,
		Discount:        b.Discount,
		Total:           b.TotalPrice,
		DiscountApplied: b.Discount.IsPositive(),
	}
}

func normalizeIdempotencyKey(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	key := strings.TrimSpace(*raw)
	if key == "" {
		return nil, nil
	}
	if len(key) > maxIdempotencyKeyLength {
		return nil, validationError("idempotency key must be at most %d characters", maxIdempotencyKeyLength)
	}
	return &key, nil
}

// UpdateStatus applies a status change on behalf of actor. Customers may only
// cancel their own bookings; admins may apply any allowed transition.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, rawStatus string, actor *domain.User) (*domain.Booking, error) {
	next, ok := domain.ParseBookingStatus(rawStatus)
	if !ok {
		return nil, validationError("unknown booking status %q", rawStatus)
	}
	if actor == nil {
		return nil, ErrBookingForbidden
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	current, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, s.storeError("find booking", err)
	}
	if !actor.IsAdmin() && (current.UserID != actor.ID || next != domain.BookingStatusCancelled) {
		return nil, ErrBookingForbidden
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, current.Status, next)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrStatusChanged):
			return nil, fmt.Errorf("%w: booking changed concurrently", ErrInvalidTransition)
		case isNotFound(err):
			return nil, ErrBookingNotFound
		}
		return nil, s.storeError("update booking status", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": id,
		"from":       current.Status,
		"to":         next,
		"actor":      actor.ID,
	}).Info("booking status changed")

	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID, actor *domain.User) (*domain.Booking, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, s.storeError("find booking", err)
	}
	if actor == nil || (!actor.IsAdmin() && booking.UserID != actor.ID) {
		// Do not reveal other customers' bookings.
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	limit, offset = normalizePage(limit, offset, defaultBookingListLimit, maxBookingListLimit)

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	bookings, err := s.bookings.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, s.storeError("list bookings", err)
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

func (s *BookingService) storeError(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Error("store call failed")
	return storeFailure(err)
}

func normalizePage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
