package postgres

import (
	"context"
	"database/sql"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewSelect = `
    SELECT
        r.id,
        r.package_id,
        r.user_id,
        r.rating,
        r.comment,
        r.created_at,
        p.full_name AS reviewer_name,
        u.email AS reviewer_email
    FROM reviews r
    LEFT JOIN users u ON u.id = r.user_id
    LEFT JOIN profiles p ON p.user_id = r.user_id
`

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
        INSERT INTO reviews (id, package_id, user_id, rating, comment)
        VALUES (:id, :package_id, :user_id, :rating, :comment)
        RETURNING id
    `
	id := review.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	args := map[string]any{
		"id":         id,
		"package_id": review.PackageID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
		"comment":    nullString(review.Comment),
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	inserted := rows.Next()
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if !inserted {
		return nil, sql.ErrNoRows
	}

	var stored domain.Review
	if err := r.db.GetContext(ctx, &stored, reviewSelect+` WHERE r.id = $1`, id); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ReviewRepository) ListByPackage(ctx context.Context, packageID uuid.UUID, limit, offset int) ([]domain.Review, error) {
	query := reviewSelect + `
    WHERE r.package_id = $1
    ORDER BY r.created_at DESC
    LIMIT $2 OFFSET $3
`
	items := []domain.Review{}
	if err := r.db.SelectContext(ctx, &items, query, packageID, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReviewRepository) AggregateByPackage(ctx context.Context, packageID uuid.UUID) (*domain.ReviewAggregate, error) {
	const query = `
        SELECT rating, COUNT(*) AS total
        FROM reviews
        WHERE package_id = $1
        GROUP BY rating
    `
	var rows []struct {
		Rating int `db:"rating"`
		Total  int `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, packageID); err != nil {
		return nil, err
	}

	agg := &domain.ReviewAggregate{RatingCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, row := range rows {
		agg.RatingCounts[row.Rating] = row.Total
		agg.TotalReviews += row.Total
		sum += row.Rating * row.Total
	}
	if agg.TotalReviews > 0 {
		agg.AverageRating = math.Round(float64(sum)/float64(agg.TotalReviews)*100) / 100
	}
	return agg, nil
}

func (r *ReviewRepository) Summary(ctx context.Context) (*domain.ReviewSummary, error) {
	const query = `
        SELECT COUNT(*) AS total_reviews, COALESCE(AVG(rating), 0)::float8 AS average_rating
        FROM reviews
    `
	var summary domain.ReviewSummary
	if err := r.db.GetContext(ctx, &summary, query); err != nil {
		return nil, err
	}
	return &summary, nil
}
