package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PackageStatus string

const (
	PackageStatusActive   PackageStatus = "ACTIVE"
	PackageStatusInactive PackageStatus = "INACTIVE"
)

func (s PackageStatus) Valid() bool {
	return s == PackageStatusActive || s == PackageStatusInactive
}

type TravelPackage struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	DestinationID uuid.UUID       `db:"destination_id" json:"destination_id"`
	Title         string          `db:"title" json:"title"`
	Description   *string         `db:"description" json:"description,omitempty"`
	DurationDays  int             `db:"duration_days" json:"duration_days"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Quota         int             `db:"quota" json:"quota"`
	Status        PackageStatus   `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

func (p *TravelPackage) IsActive() bool {
	return p != nil && p.Status == PackageStatusActive
}

type Itinerary struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PackageID   uuid.UUID `db:"package_id" json:"package_id"`
	DayNumber   int       `db:"day_number" json:"day_number"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
}

type Hotel struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Address *string   `db:"address" json:"address,omitempty"`
	Stars   int       `db:"stars" json:"stars"`
}

// PackageContents groups the rows owned by a package that are written together.
type PackageContents struct {
	Itineraries []Itinerary
	Facilities  []string
	HotelIDs    []uuid.UUID
}

type PackageFields struct {
	DestinationID *uuid.UUID
	Title         *string
	Description   *string
	DurationDays  *int
	Price         *decimal.Decimal
	Quota         *int
	Status        *PackageStatus

	// Nil leaves the owned rows untouched; non-nil replaces them.
	Itineraries *[]Itinerary
	Facilities  *[]string
	HotelIDs    *[]uuid.UUID
}

type PackageListItem struct {
	TravelPackage
	DestinationName *string `db:"destination_name" json:"destination_name,omitempty"`
	ScheduleCount   int     `db:"schedule_count" json:"schedule_count"`
}

type PackageListFilter struct {
	Status *PackageStatus
	Limit  int
	Offset int
}

type PackageDetail struct {
	TravelPackage
	Destination *Destination    `json:"destination,omitempty"`
	Itineraries []Itinerary     `json:"itineraries"`
	Facilities  []string        `json:"facilities"`
	Hotels      []Hotel         `json:"hotels"`
	Schedules   []Schedule      `json:"schedules"`
	Reviews     ReviewAggregate `json:"reviews"`
}
