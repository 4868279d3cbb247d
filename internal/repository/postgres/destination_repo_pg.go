package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type DestinationRepository struct {
	db *sqlx.DB
}

var _ ports.DestinationRepository = (*DestinationRepository)(nil)

func NewDestinationRepo(db *sqlx.DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

const destinationSelect = `
    SELECT d.id, d.name, d.description, d.thumbnail, d.city_id, d.country_id, d.created_at, d.updated_at,
           ci.name AS city_name, co.name AS country_name
    FROM destinations d
    LEFT JOIN cities ci ON ci.id = d.city_id
    LEFT JOIN countries co ON co.id = d.country_id
`

func (r *DestinationRepository) Create(ctx context.Context, fields domain.DestinationFields) (*domain.Destination, error) {
	const query = `
        INSERT INTO destinations (name, description, thumbnail, city_id, country_id)
        VALUES (:name, :description, :thumbnail, :city_id, :country_id)
        RETURNING id
    `
	args := map[string]any{
		"name":        valueOrDefault(fields.Name, ""),
		"description": nullString(fields.Description),
		"thumbnail":   nullString(fields.Thumbnail),
		"city_id":     fields.CityID,
		"country_id":  fields.CountryID,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if rows.Next() {
		err = rows.Scan(&id)
	} else {
		err = sql.ErrNoRows
	}
	rows.Close()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *DestinationRepository) Update(ctx context.Context, id uuid.UUID, fields domain.DestinationFields) (*domain.Destination, error) {
	set := setClause{}
	set.raw("updated_at = NOW()")
	if fields.Name != nil {
		set.add("name", strings.TrimSpace(*fields.Name))
	}
	if fields.Description != nil {
		set.add("description", nullString(fields.Description))
	}
	if fields.Thumbnail != nil {
		set.add("thumbnail", nullString(fields.Thumbnail))
	}
	if fields.CityID != nil {
		set.add("city_id", *fields.CityID)
	}
	if fields.CountryID != nil {
		set.add("country_id", *fields.CountryID)
	}

	query := fmt.Sprintf(`UPDATE destinations SET %s WHERE id = $%d RETURNING id`, set.sql(), set.next())
	var updated uuid.UUID
	if err := r.db.GetContext(ctx, &updated, query, append(set.args, id)...); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Delete returns ErrReferenced while any package points at the destination.
func (r *DestinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var referenced bool
		if err := tx.GetContext(ctx, &referenced, `SELECT EXISTS (SELECT 1 FROM travel_packages WHERE destination_id = $1)`, id); err != nil {
			return err
		}
		if referenced {
			return ports.ErrReferenced
		}
		return execAffectingRows(ctx, tx, `DELETE FROM destinations WHERE id = $1`, id)
	})
}

func (r *DestinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Destination, error) {
	var dest domain.Destination
	if err := r.db.GetContext(ctx, &dest, destinationSelect+` WHERE d.id = $1`, id); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) List(ctx context.Context, limit, offset int) ([]domain.Destination, error) {
	items := []domain.Destination{}
	query := destinationSelect + ` ORDER BY d.created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &items, query, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *DestinationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM destinations`); err != nil {
		return 0, err
	}
	return n, nil
}

type MasterDataRepository struct {
	db *sqlx.DB
}

var _ ports.MasterDataRepository = (*MasterDataRepository)(nil)

func NewMasterDataRepo(db *sqlx.DB) *MasterDataRepository {
	return &MasterDataRepository{db: db}
}

func (r *MasterDataRepository) ListCountries(ctx context.Context) ([]domain.Country, error) {
	items := []domain.Country{}
	if err := r.db.SelectContext(ctx, &items, `SELECT id, name FROM countries ORDER BY name`); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MasterDataRepository) ListCitiesByCountry(ctx context.Context, countryID int64) ([]domain.City, error) {
	items := []domain.City{}
	const query = `SELECT id, country_id, name FROM cities WHERE country_id = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &items, query, countryID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MasterDataRepository) FindCity(ctx context.Context, id int64) (*domain.City, error) {
	var city domain.City
	if err := r.db.GetContext(ctx, &city, `SELECT id, country_id, name FROM cities WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &city, nil
}

// setClause builds the SET list of a partial UPDATE with positional args.
type setClause struct {
	parts []string
	args  []any
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setClause) raw(expr string) {
	s.parts = append(s.parts, expr)
}

func (s *setClause) sql() string { return strings.Join(s.parts, ", ") }

func (s *setClause) next() int { return len(s.args) + 1 }

func execAffectingRows(ctx context.Context, tx *sqlx.Tx, query string, args ...any) error {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func valueOrDefault(ptr *string, fallback string) string {
	if ptr == nil || strings.TrimSpace(*ptr) == "" {
		return fallback
	}
	return strings.TrimSpace(*ptr)
}

func nullString(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{Valid: false}
	}
	v := strings.TrimSpace(*ptr)
	if v == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: v, Valid: true}
}
