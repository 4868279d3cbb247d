package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PackageID uuid.UUID `db:"package_id" json:"package_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	ReviewerName  *string `db:"reviewer_name" json:"reviewer_name,omitempty"`
	ReviewerEmail *string `db:"reviewer_email" json:"-"`
}

type ReviewAggregate struct {
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	RatingCounts  map[int]int `json:"rating_counts"`
}

type ReviewListResult struct {
	PackageID uuid.UUID       `json:"package_id"`
	Reviews   []Review        `json:"reviews"`
	Aggregate ReviewAggregate `json:"aggregate"`
	Limit     int             `json:"limit"`
	Offset    int             `json:"offset"`
}

// ReviewSummary is the store-wide rollup used by the dashboard.
type ReviewSummary struct {
	Total         int64   `db:"total_reviews"`
	AverageRating float64 `db:"average_rating"`
}
