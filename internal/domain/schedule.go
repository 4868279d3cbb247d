package domain

import (
	"time"

	"github.com/google/uuid"
)

type Schedule struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PackageID      uuid.UUID `db:"package_id" json:"package_id"`
	DepartureDate  time.Time `db:"departure_date" json:"departure_date"`
	ReturnDate     time.Time `db:"return_date" json:"return_date"`
	AvailableQuota int       `db:"available_quota" json:"available_quota"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

func (s *Schedule) HasDeparted(now time.Time) bool {
	return !s.DepartureDate.After(now)
}
