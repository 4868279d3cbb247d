package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusPaid      BookingStatus = "PAID"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {BookingStatusPaid, BookingStatusCancelled},
	BookingStatusPaid:    {BookingStatusCancelled},
}

func ParseBookingStatus(raw string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case BookingStatusPending, BookingStatusPaid, BookingStatusCancelled:
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether a booking in status s may move to next.
// Refund handling for PAID -> CANCELLED lives outside this service.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	UserID         uuid.UUID       `db:"user_id" json:"user_id"`
	ScheduleID     uuid.UUID       `db:"schedule_id" json:"schedule_id"`
	BookingCode    string          `db:"booking_code" json:"booking_code"`
	Participants   int             `db:"participants" json:"participants"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount       decimal.Decimal `db:"discount" json:"discount"`
	TotalPrice     decimal.Decimal `db:"total_price" json:"total_price"`
	Status         BookingStatus   `db:"status" json:"status"`
	IdempotencyKey *string         `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// RecentBooking is a booking joined with its customer and catalog chain.
// Any part of the chain may be missing when the referenced row is gone.
type RecentBooking struct {
	Booking
	CustomerEmail   *string    `db:"customer_email" json:"-"`
	CustomerName    *string    `db:"customer_name" json:"-"`
	PackageID       *uuid.UUID `db:"package_id" json:"-"`
	PackageTitle    *string    `db:"package_title" json:"-"`
	DestinationName *string    `db:"destination_name" json:"-"`
	DepartureDate   *time.Time `db:"departure_date" json:"-"`
}

type BookingCountFilter struct {
	Status *BookingStatus
}

type DashboardStats struct {
	TotalBookings     int64           `json:"total_bookings"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalCustomers    int64           `json:"total_customers"`
	PendingBookings   int64           `json:"pending_bookings"`
	TotalPackages     int64           `json:"total_packages"`
	TotalDestinations int64           `json:"total_destinations"`
	TotalReviews      int64           `json:"total_reviews"`
	AvgRating         float64         `json:"avg_rating"`
}

type RecentBookingView struct {
	ID              uuid.UUID       `json:"id"`
	BookingCode     string          `json:"booking_code"`
	Status          BookingStatus   `json:"status"`
	Participants    int             `json:"participants"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	CreatedAt       time.Time       `json:"created_at"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	PackageTitle    string          `json:"package_title"`
	DestinationName string          `json:"destination_name"`
	DepartureDate   *time.Time      `json:"departure_date,omitempty"`
}
