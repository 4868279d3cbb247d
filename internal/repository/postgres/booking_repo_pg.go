package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type BookingRepository struct {
	db *sqlx.DB
}

var _ ports.BookingRepository = (*BookingRepository)(nil)

func NewBookingRepo(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, schedule_id, booking_code, participants, subtotal, discount, total_price,
        status, idempotency_key, created_at, updated_at`

// Create takes the seats and inserts the booking in one transaction. The
// conditional decrement is what keeps concurrent bookings from overselling.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	const takeSeats = `
        UPDATE schedules
        SET available_quota = available_quota - $2
        WHERE id = $1 AND available_quota >= $2
    `
	const insert = `
        INSERT INTO bookings (id, user_id, schedule_id, booking_code, participants, subtotal, discount, total_price, status, idempotency_key)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + bookingColumns

	id := booking.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var created domain.Booking
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := execAffectingRows(ctx, tx, takeSeats, booking.ScheduleID, booking.Participants)
		if errors.Is(err, sql.ErrNoRows) {
			return ports.ErrQuotaUnavailable
		}
		if err != nil {
			return err
		}
		return tx.GetContext(ctx, &created, insert, id, booking.UserID, booking.ScheduleID, booking.BookingCode,
			booking.Participants, booking.Subtotal, booking.Discount, booking.TotalPrice, booking.Status, booking.IdempotencyKey)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	if err := r.db.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*domain.Booking, error) {
	var booking domain.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 AND idempotency_key = $2`
	if err := r.db.GetContext(ctx, &booking, query, userID, key); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus only applies when the stored status still equals from.
// Cancelling hands the seats back, never above the package quota.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) (*domain.Booking, error) {
	const update = `
        UPDATE bookings
        SET status = $3,
            updated_at = NOW()
        WHERE id = $1 AND status = $2
        RETURNING ` + bookingColumns
	const restoreSeats = `
        UPDATE schedules s
        SET available_quota = LEAST(s.available_quota + $2, p.quota)
        FROM travel_packages p
        WHERE s.id = $1 AND p.id = s.package_id
    `

	var updated domain.Booking
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &updated, update, id, from, to)
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id); err != nil {
				return err
			}
			if exists {
				return ports.ErrStatusChanged
			}
			return sql.ErrNoRows
		}
		if err != nil {
			return err
		}
		if to != domain.BookingStatusCancelled {
			return nil
		}
		_, err = tx.ExecContext(ctx, restoreSeats, updated.ScheduleID, updated.Participants)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	query := `
        SELECT ` + bookingColumns + `
        FROM bookings
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	items := []domain.Booking{}
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

// ListRecent left-joins the whole chain so a missing row never drops the booking.
func (r *BookingRepository) ListRecent(ctx context.Context, limit int) ([]domain.RecentBooking, error) {
	const query = `
        SELECT b.id, b.user_id, b.schedule_id, b.booking_code, b.participants, b.subtotal, b.discount,
               b.total_price, b.status, b.idempotency_key, b.created_at, b.updated_at,
               u.email AS customer_email, pr.full_name AS customer_name,
               p.id AS package_id, p.title AS package_title, d.name AS destination_name,
               s.departure_date
        FROM bookings b
        LEFT JOIN users u ON u.id = b.user_id
        LEFT JOIN profiles pr ON pr.user_id = b.user_id
        LEFT JOIN schedules s ON s.id = b.schedule_id
        LEFT JOIN travel_packages p ON p.id = s.package_id
        LEFT JOIN destinations d ON d.id = p.destination_id
        ORDER BY b.created_at DESC
        LIMIT $1
    `
	items := []domain.RecentBooking{}
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BookingRepository) Count(ctx context.Context, filter domain.BookingCountFilter) (int64, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE ($1::text IS NULL OR status = $1)`
	var n int64
	if err := r.db.GetContext(ctx, &n, query, filter.Status); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *BookingRepository) SumTotalPrice(ctx context.Context, status domain.BookingStatus) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(total_price), 0) FROM bookings WHERE status = $1`
	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, status); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
