package domain

import (
	"time"

	"github.com/google/uuid"
)

type Destination struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Thumbnail   *string   `db:"thumbnail" json:"thumbnail,omitempty"`
	CityID      int64     `db:"city_id" json:"city_id"`
	CountryID   int64     `db:"country_id" json:"country_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	CityName    *string `db:"city_name" json:"city_name,omitempty"`
	CountryName *string `db:"country_name" json:"country_name,omitempty"`
}

// DestinationFields is used for both create and partial update.
type DestinationFields struct {
	Name        *string
	Description *string
	CityID      *int64
	CountryID   *int64
	Thumbnail   *string
}

type Country struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type City struct {
	ID        int64  `db:"id" json:"id"`
	CountryID int64  `db:"country_id" json:"country_id"`
	Name      string `db:"name" json:"name"`
}
