package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type ScheduleRepository struct {
	db *sqlx.DB
}

var _ ports.ScheduleRepository = (*ScheduleRepository)(nil)

func NewScheduleRepo(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, package_id, departure_date, return_date, available_quota, created_at`

func (r *ScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error) {
	const query = `
        INSERT INTO schedules (id, package_id, departure_date, return_date, available_quota)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + scheduleColumns

	id := schedule.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var created domain.Schedule
	if err := r.db.GetContext(ctx, &created, query, id, schedule.PackageID, schedule.DepartureDate, schedule.ReturnDate, schedule.AvailableQuota); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	var schedule domain.Schedule
	if err := r.db.GetContext(ctx, &schedule, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]domain.Schedule, error) {
	items := []domain.Schedule{}
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE package_id = $1 ORDER BY departure_date`
	if err := r.db.SelectContext(ctx, &items, query, packageID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM schedules WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		var booked bool
		if err := tx.GetContext(ctx, &booked, `SELECT EXISTS (SELECT 1 FROM bookings WHERE schedule_id = $1)`, id); err != nil {
			return err
		}
		if booked {
			return ports.ErrHasBookings
		}
		return execAffectingRows(ctx, tx, `DELETE FROM schedules WHERE id = $1`, id)
	})
}
