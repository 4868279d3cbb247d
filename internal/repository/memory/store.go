// Package memory is an in-process implementation of the repository ports.
// It mirrors the constraint behaviour of the Postgres repositories (unique and
// foreign key violations, conditional quota updates) so services can be
// exercised without a database.
package memory

import (
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
)

type Store struct {
	mu sync.Mutex

	clock    time.Time
	failures map[string]error

	users         map[uuid.UUID]*domain.User
	profiles      map[uuid.UUID]*domain.Profile
	countries     map[int64]domain.Country
	cities        map[int64]domain.City
	destinations  map[uuid.UUID]*domain.Destination
	packages      map[uuid.UUID]*domain.TravelPackage
	itineraries   map[uuid.UUID][]domain.Itinerary
	facilities    map[uuid.UUID][]string
	hotels        map[uuid.UUID]domain.Hotel
	packageHotels map[uuid.UUID][]uuid.UUID
	schedules     map[uuid.UUID]*domain.Schedule
	bookings      map[uuid.UUID]*domain.Booking
	reviews       map[uuid.UUID]*domain.Review
}

func NewStore() *Store {
	return &Store{
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		failures:      map[string]error{},
		users:         map[uuid.UUID]*domain.User{},
		profiles:      map[uuid.UUID]*domain.Profile{},
		countries:     map[int64]domain.Country{},
		cities:        map[int64]domain.City{},
		destinations:  map[uuid.UUID]*domain.Destination{},
		packages:      map[uuid.UUID]*domain.TravelPackage{},
		itineraries:   map[uuid.UUID][]domain.Itinerary{},
		facilities:    map[uuid.UUID][]string{},
		hotels:        map[uuid.UUID]domain.Hotel{},
		packageHotels: map[uuid.UUID][]uuid.UUID{},
		schedules:     map[uuid.UUID]*domain.Schedule{},
		bookings:      map[uuid.UUID]*domain.Booking{},
		reviews:       map[uuid.UUID]*domain.Review{},
	}
}

// FailWith makes every later call of op return err. op is "<repo>.<Method>",
// for example "bookings.Count". A nil err clears the failure.
func (s *Store) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) AddCountry(c domain.Country) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countries[c.ID] = c
}

func (s *Store) AddCity(c domain.City) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities[c.ID] = c
}

func (s *Store) AddHotel(h domain.Hotel) domain.Hotel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	s.hotels[h.ID] = h
	return h
}

func (s *Store) Users() *UserRepo { return &UserRepo{s} }
func (s *Store) Destinations() *DestinationRepo { return &DestinationRepo{s} }
func (s *Store) MasterData() *MasterDataRepo { return &MasterDataRepo{s} }
func (s *Store) Packages() *PackageRepo { return &PackageRepo{s} }
func (s *Store) Schedules() *ScheduleRepo { return &ScheduleRepo{s} }
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s} }
func (s *Store) Reviews() *ReviewRepo { return &ReviewRepo{s} }

// tick returns a strictly increasing timestamp so ordering by creation time
// is deterministic. Callers hold s.mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Callers hold s.mu.
func (s *Store) fail(op string) error {
	return s.failures[op]
}

var errNotFound = sql.ErrNoRows

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "insert or update violates foreign key constraint"}
}

func notNullViolation(table string) error {
	return &pgconn.PgError{Code: "23502", TableName: table, Message: "null value violates not-null constraint"}
}

func strPtr(v string) *string {
	return &v
}
