package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type DestinationRepo struct{ s *Store }

var _ ports.DestinationRepository = (*DestinationRepo)(nil)

func (r *DestinationRepo) Create(_ context.Context, fields domain.DestinationFields) (*domain.Destination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("destinations.Create"); err != nil {
		return nil, err
	}
	if fields.Name == nil || fields.CityID == nil || fields.CountryID == nil {
		return nil, notNullViolation("destinations")
	}
	if err := s.checkLocationLocked(*fields.CityID, *fields.CountryID); err != nil {
		return nil, err
	}
	now := s.tick()
	d := &domain.Destination{
		ID:          uuid.New(),
		Name:        *fields.Name,
		Description: fields.Description,
		Thumbnail:   fields.Thumbnail,
		CityID:      *fields.CityID,
		CountryID:   *fields.CountryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.destinations[d.ID] = d
	return s.destinationLocked(d.ID), nil
}

func (r *DestinationRepo) Update(_ context.Context, id uuid.UUID, fields domain.DestinationFields) (*domain.Destination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("destinations.Update"); err != nil {
		return nil, err
	}
	d, ok := s.destinations[id]
	if !ok {
		return nil, errNotFound
	}
	cityID, countryID := d.CityID, d.CountryID
	if fields.CityID != nil {
		cityID = *fields.CityID
	}
	if fields.CountryID != nil {
		countryID = *fields.CountryID
	}
	if err := s.checkLocationLocked(cityID, countryID); err != nil {
		return nil, err
	}
	if fields.Name != nil {
		d.Name = *fields.Name
	}
	if fields.Description != nil {
		d.Description = strPtr(*fields.Description)
	}
	if fields.Thumbnail != nil {
		d.Thumbnail = strPtr(*fields.Thumbnail)
	}
	d.CityID, d.CountryID = cityID, countryID
	d.UpdatedAt = s.tick()
	return s.destinationLocked(id), nil
}

func (r *DestinationRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("destinations.Delete"); err != nil {
		return err
	}
	if _, ok := s.destinations[id]; !ok {
		return errNotFound
	}
	for _, p := range s.packages {
		if p.DestinationID == id {
			return ports.ErrReferenced
		}
	}
	delete(s.destinations, id)
	return nil
}

func (r *DestinationRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Destination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("destinations.FindByID"); err != nil {
		return nil, err
	}
	if _, ok := s.destinations[id]; !ok {
		return nil, errNotFound
	}
	return s.destinationLocked(id), nil
}

func (r *DestinationRepo) List(_ context.Context, limit, offset int) ([]domain.Destination, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("destinations.List"); err != nil {
		return nil, err
	}
	items := make([]domain.Destination, 0, len(s.destinations))
	for id := range s.destinations {
		items = append(items, *s.destinationLocked(id))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return page(items, limit, offset), nil
}

func (r *DestinationRepo) Count(_ context.Context) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("destinations.Count"); err != nil {
		return 0, err
	}
	return int64(len(s.destinations)), nil
}

// Callers hold s.mu.
func (s *Store) destinationLocked(id uuid.UUID) *domain.Destination {
	d := *s.destinations[id]
	if c, ok := s.cities[d.CityID]; ok {
		d.CityName = strPtr(c.Name)
	}
	if c, ok := s.countries[d.CountryID]; ok {
		d.CountryName = strPtr(c.Name)
	}
	return &d
}

// Callers hold s.mu.
func (s *Store) checkLocationLocked(cityID, countryID int64) error {
	if _, ok := s.countries[countryID]; !ok {
		return foreignKeyViolation("destinations_country_id_fkey")
	}
	if _, ok := s.cities[cityID]; !ok {
		return foreignKeyViolation("destinations_city_id_fkey")
	}
	return nil
}

type MasterDataRepo struct{ s *Store }

var _ ports.MasterDataRepository = (*MasterDataRepo)(nil)

func (r *MasterDataRepo) ListCountries(_ context.Context) ([]domain.Country, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("masterdata.ListCountries"); err != nil {
		return nil, err
	}
	items := make([]domain.Country, 0, len(s.countries))
	for _, c := range s.countries {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MasterDataRepo) ListCitiesByCountry(_ context.Context, countryID int64) ([]domain.City, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("masterdata.ListCitiesByCountry"); err != nil {
		return nil, err
	}
	items := []domain.City{}
	for _, c := range s.cities {
		if c.CountryID == countryID {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *MasterDataRepo) FindCity(_ context.Context, id int64) (*domain.City, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("masterdata.FindCity"); err != nil {
		return nil, err
	}
	c, ok := s.cities[id]
	if !ok {
		return nil, errNotFound
	}
	return &c, nil
}
