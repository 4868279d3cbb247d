package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds. Handlers map these to status codes; every specific error
// below wraps exactly one of them.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrBookingRejected    = errors.New("booking rejected")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrConflictOnDelete   = errors.New("delete blocked by dependent records")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already in use")
)

var (
	ErrUserNotFound        = wrapKind(ErrNotFound, "user not found")
	ErrDestinationNotFound = wrapKind(ErrNotFound, "destination not found")
	ErrPackageNotFound     = wrapKind(ErrNotFound, "package not found")
	ErrScheduleNotFound    = wrapKind(ErrNotFound, "schedule not found")
	ErrBookingNotFound     = wrapKind(ErrNotFound, "booking not found")
	ErrCountryNotFound     = wrapKind(ErrNotFound, "country not found")

	ErrInsufficientQuota = wrapKind(ErrBookingRejected, "insufficient quota")
	ErrDeparturePassed   = wrapKind(ErrBookingRejected, "departure date has passed")
	ErrScheduleMismatch  = wrapKind(ErrBookingRejected, "schedule does not belong to package")
	ErrPackageInactive   = wrapKind(ErrBookingRejected, "package is not active")

	ErrPackageHasBookings  = wrapKind(ErrConflictOnDelete, "package has bookings")
	ErrPackageHasReviews   = wrapKind(ErrConflictOnDelete, "package has reviews")
	ErrScheduleHasBookings = wrapKind(ErrConflictOnDelete, "schedule has bookings")
	ErrDestinationInUse    = wrapKind(ErrConflictOnDelete, "destination is used by packages")

	ErrBookingForbidden = wrapKind(ErrForbidden, "not allowed to manage this booking")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func wrapKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
