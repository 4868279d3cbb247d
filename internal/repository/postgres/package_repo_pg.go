package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type PackageRepository struct {
	db *sqlx.DB
}

var _ ports.PackageRepository = (*PackageRepository)(nil)

func NewPackageRepo(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = `id, destination_id, title, description, duration_days, price, quota, status, created_at, updated_at`

// Create writes the package with its itineraries, facilities and hotel links
// in one transaction.
func (r *PackageRepository) Create(ctx context.Context, pkg *domain.TravelPackage, contents domain.PackageContents) (*domain.TravelPackage, error) {
	const query = `
        INSERT INTO travel_packages (id, destination_id, title, description, duration_days, price, quota, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + packageColumns

	id := pkg.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var created domain.TravelPackage
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &created, query, id, pkg.DestinationID, pkg.Title, pkg.Description,
			pkg.DurationDays, pkg.Price, pkg.Quota, pkg.Status); err != nil {
			return err
		}
		if err := insertItineraries(ctx, tx, id, contents.Itineraries); err != nil {
			return err
		}
		if err := insertFacilities(ctx, tx, id, contents.Facilities); err != nil {
			return err
		}
		return insertHotelLinks(ctx, tx, id, contents.HotelIDs)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies the non-nil fields. Owned lists that are present replace
// the stored ones inside the same transaction.
func (r *PackageRepository) Update(ctx context.Context, id uuid.UUID, fields domain.PackageFields) (*domain.TravelPackage, error) {
	set := setClause{}
	set.raw("updated_at = NOW()")
	if fields.DestinationID != nil {
		set.add("destination_id", *fields.DestinationID)
	}
	if fields.Title != nil {
		set.add("title", *fields.Title)
	}
	if fields.Description != nil {
		set.add("description", nullString(fields.Description))
	}
	if fields.DurationDays != nil {
		set.add("duration_days", *fields.DurationDays)
	}
	if fields.Price != nil {
		set.add("price", *fields.Price)
	}
	if fields.Quota != nil {
		set.add("quota", *fields.Quota)
	}
	if fields.Status != nil {
		set.add("status", *fields.Status)
	}
	query := fmt.Sprintf(`UPDATE travel_packages SET %s WHERE id = $%d RETURNING %s`, set.sql(), set.next(), packageColumns)

	var updated domain.TravelPackage
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if fields.Quota != nil {
			// Locked so a concurrent cancellation cannot lift availability past the new quota.
			var quotas []int
			const check = `SELECT available_quota FROM schedules WHERE package_id = $1 FOR UPDATE`
			if err := tx.SelectContext(ctx, &quotas, check, id); err != nil {
				return err
			}
			for _, q := range quotas {
				if q > *fields.Quota {
					return ports.ErrQuotaBelowSchedule
				}
			}
		}
		if err := tx.GetContext(ctx, &updated, query, append(set.args, id)...); err != nil {
			return err
		}
		if fields.Itineraries != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM itineraries WHERE package_id = $1`, id); err != nil {
				return err
			}
			if err := insertItineraries(ctx, tx, id, *fields.Itineraries); err != nil {
				return err
			}
		}
		if fields.Facilities != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM package_facilities WHERE package_id = $1`, id); err != nil {
				return err
			}
			if err := insertFacilities(ctx, tx, id, *fields.Facilities); err != nil {
				return err
			}
		}
		if fields.HotelIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM package_hotels WHERE package_id = $1`, id); err != nil {
				return err
			}
			if err := insertHotelLinks(ctx, tx, id, *fields.HotelIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the package and its owned rows in order. It returns
// ErrHasBookings while any schedule has bookings and ErrReferenced while
// the package has reviews, changing nothing in either case.
func (r *PackageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM travel_packages WHERE id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		var booked bool
		const bookedQuery = `
            SELECT EXISTS (
                SELECT 1 FROM bookings b
                JOIN schedules s ON s.id = b.schedule_id
                WHERE s.package_id = $1
            )
        `
		if err := tx.GetContext(ctx, &booked, bookedQuery, id); err != nil {
			return err
		}
		if booked {
			return ports.ErrHasBookings
		}
		var reviewed bool
		if err := tx.GetContext(ctx, &reviewed, `SELECT EXISTS (SELECT 1 FROM reviews WHERE package_id = $1)`, id); err != nil {
			return err
		}
		if reviewed {
			return ports.ErrReferenced
		}
		for _, stmt := range []string{
			`DELETE FROM itineraries WHERE package_id = $1`,
			`DELETE FROM package_facilities WHERE package_id = $1`,
			`DELETE FROM package_hotels WHERE package_id = $1`,
			`DELETE FROM schedules WHERE package_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}
		return execAffectingRows(ctx, tx, `DELETE FROM travel_packages WHERE id = $1`, id)
	})
}

func (r *PackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TravelPackage, error) {
	var pkg domain.TravelPackage
	if err := r.db.GetContext(ctx, &pkg, `SELECT `+packageColumns+` FROM travel_packages WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) List(ctx context.Context, filter domain.PackageListFilter) ([]domain.PackageListItem, error) {
	const query = `
        SELECT p.id, p.destination_id, p.title, p.description, p.duration_days, p.price, p.quota, p.status,
               p.created_at, p.updated_at, d.name AS destination_name,
               (SELECT COUNT(*) FROM schedules s WHERE s.package_id = p.id) AS schedule_count
        FROM travel_packages p
        LEFT JOIN destinations d ON d.id = p.destination_id
        WHERE ($1::text IS NULL OR p.status = $1)
        ORDER BY p.created_at DESC
        LIMIT $2 OFFSET $3
    `
	items := []domain.PackageListItem{}
	if err := r.db.SelectContext(ctx, &items, query, filter.Status, filter.Limit, filter.Offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PackageRepository) ListItineraries(ctx context.Context, packageID uuid.UUID) ([]domain.Itinerary, error) {
	const query = `
        SELECT id, package_id, day_number, title, description
        FROM itineraries
        WHERE package_id = $1
        ORDER BY day_number
    `
	items := []domain.Itinerary{}
	if err := r.db.SelectContext(ctx, &items, query, packageID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PackageRepository) ListFacilities(ctx context.Context, packageID uuid.UUID) ([]string, error) {
	items := []string{}
	const query = `SELECT name FROM package_facilities WHERE package_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &items, query, packageID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PackageRepository) ListHotels(ctx context.Context, packageID uuid.UUID) ([]domain.Hotel, error) {
	const query = `
        SELECT h.id, h.name, h.address, h.stars
        FROM package_hotels ph
        JOIN hotels h ON h.id = ph.hotel_id
        WHERE ph.package_id = $1
        ORDER BY h.name
    `
	items := []domain.Hotel{}
	if err := r.db.SelectContext(ctx, &items, query, packageID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PackageRepository) CountHotels(ctx context.Context, ids []uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM hotels WHERE id = ANY($1::uuid[])`, uuidArray(ids)); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PackageRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM travel_packages`); err != nil {
		return 0, err
	}
	return n, nil
}

func insertItineraries(ctx context.Context, tx *sqlx.Tx, packageID uuid.UUID, items []domain.Itinerary) error {
	const query = `
        INSERT INTO itineraries (id, package_id, day_number, title, description)
        VALUES ($1, $2, $3, $4, $5)
    `
	for _, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		if _, err := tx.ExecContext(ctx, query, id, packageID, item.DayNumber, item.Title, item.Description); err != nil {
			return err
		}
	}
	return nil
}

func insertFacilities(ctx context.Context, tx *sqlx.Tx, packageID uuid.UUID, names []string) error {
	if len(names) == 0 {
		return nil
	}
	const query = `
        INSERT INTO package_facilities (package_id, position, name)
        SELECT $1, f.ord, f.name
        FROM unnest($2::text[]) WITH ORDINALITY AS f(name, ord)
    `
	_, err := tx.ExecContext(ctx, query, packageID, pq.StringArray(names))
	return err
}

func insertHotelLinks(ctx context.Context, tx *sqlx.Tx, packageID uuid.UUID, hotelIDs []uuid.UUID) error {
	if len(hotelIDs) == 0 {
		return nil
	}
	const query = `
        INSERT INTO package_hotels (package_id, hotel_id)
        SELECT $1, unnest($2::uuid[])
        ON CONFLICT DO NOTHING
    `
	_, err := tx.ExecContext(ctx, query, packageID, uuidArray(hotelIDs))
	return err
}

func uuidArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
