package ports

import "errors"

// Conditional writes that lose a race report these instead of sql.ErrNoRows.
var (
	ErrQuotaUnavailable   = errors.New("schedule quota unavailable")
	ErrStatusChanged      = errors.New("booking status changed concurrently")
	ErrHasBookings        = errors.New("bookings reference this record")
	ErrQuotaBelowSchedule = errors.New("package quota below schedule availability")
	ErrReferenced         = errors.New("record is still referenced")
)
