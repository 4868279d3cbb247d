package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type PackageRepo struct{ s *Store }

var _ ports.PackageRepository = (*PackageRepo)(nil)

func (r *PackageRepo) Create(_ context.Context, pkg *domain.TravelPackage, contents domain.PackageContents) (*domain.TravelPackage, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.Create"); err != nil {
		return nil, err
	}
	if _, ok := s.destinations[pkg.DestinationID]; !ok {
		return nil, foreignKeyViolation("travel_packages_destination_id_fkey")
	}
	if err := s.checkContentsLocked(contents.Itineraries, contents.HotelIDs); err != nil {
		return nil, err
	}
	stored := *pkg
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = s.tick()
	stored.UpdatedAt = stored.CreatedAt
	s.packages[stored.ID] = &stored
	s.itineraries[stored.ID] = ownItineraries(stored.ID, contents.Itineraries)
	s.facilities[stored.ID] = append([]string(nil), contents.Facilities...)
	s.packageHotels[stored.ID] = append([]uuid.UUID(nil), contents.HotelIDs...)
	out := stored
	return &out, nil
}

func (r *PackageRepo) Update(_ context.Context, id uuid.UUID, fields domain.PackageFields) (*domain.TravelPackage, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.Update"); err != nil {
		return nil, err
	}
	p, ok := s.packages[id]
	if !ok {
		return nil, errNotFound
	}
	if fields.DestinationID != nil {
		if _, ok := s.destinations[*fields.DestinationID]; !ok {
			return nil, foreignKeyViolation("travel_packages_destination_id_fkey")
		}
	}
	if fields.Quota != nil {
		for _, sch := range s.schedules {
			if sch.PackageID == id && sch.AvailableQuota > *fields.Quota {
				return nil, ports.ErrQuotaBelowSchedule
			}
		}
	}
	var itineraries []domain.Itinerary
	var hotelIDs []uuid.UUID
	if fields.Itineraries != nil {
		itineraries = *fields.Itineraries
	}
	if fields.HotelIDs != nil {
		hotelIDs = *fields.HotelIDs
	}
	if err := s.checkContentsLocked(itineraries, hotelIDs); err != nil {
		return nil, err
	}

	if fields.DestinationID != nil {
		p.DestinationID = *fields.DestinationID
	}
	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Description != nil {
		p.Description = strPtr(*fields.Description)
	}
	if fields.DurationDays != nil {
		p.DurationDays = *fields.DurationDays
	}
	if fields.Price != nil {
		p.Price = *fields.Price
	}
	if fields.Quota != nil {
		p.Quota = *fields.Quota
	}
	if fields.Status != nil {
		p.Status = *fields.Status
	}
	if fields.Itineraries != nil {
		s.itineraries[id] = ownItineraries(id, itineraries)
	}
	if fields.Facilities != nil {
		s.facilities[id] = append([]string(nil), (*fields.Facilities)...)
	}
	if fields.HotelIDs != nil {
		s.packageHotels[id] = append([]uuid.UUID(nil), hotelIDs...)
	}
	p.UpdatedAt = s.tick()
	out := *p
	return &out, nil
}

func (r *PackageRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.Delete"); err != nil {
		return err
	}
	if _, ok := s.packages[id]; !ok {
		return errNotFound
	}
	for _, b := range s.bookings {
		if sch, ok := s.schedules[b.ScheduleID]; ok && sch.PackageID == id {
			return ports.ErrHasBookings
		}
	}
	for _, rv := range s.reviews {
		if rv.PackageID == id {
			return ports.ErrReferenced
		}
	}
	delete(s.itineraries, id)
	delete(s.facilities, id)
	delete(s.packageHotels, id)
	for schID, sch := range s.schedules {
		if sch.PackageID == id {
			delete(s.schedules, schID)
		}
	}
	delete(s.packages, id)
	return nil
}

func (r *PackageRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.TravelPackage, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.FindByID"); err != nil {
		return nil, err
	}
	p, ok := s.packages[id]
	if !ok {
		return nil, errNotFound
	}
	out := *p
	return &out, nil
}

func (r *PackageRepo) List(_ context.Context, filter domain.PackageListFilter) ([]domain.PackageListItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.List"); err != nil {
		return nil, err
	}
	counts := map[uuid.UUID]int{}
	for _, sch := range s.schedules {
		counts[sch.PackageID]++
	}
	items := []domain.PackageListItem{}
	for _, p := range s.packages {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		item := domain.PackageListItem{TravelPackage: *p, ScheduleCount: counts[p.ID]}
		if d, ok := s.destinations[p.DestinationID]; ok {
			item.DestinationName = strPtr(d.Name)
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return page(items, filter.Limit, filter.Offset), nil
}

func (r *PackageRepo) ListItineraries(_ context.Context, packageID uuid.UUID) ([]domain.Itinerary, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.ListItineraries"); err != nil {
		return nil, err
	}
	items := append([]domain.Itinerary{}, s.itineraries[packageID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].DayNumber < items[j].DayNumber })
	return items, nil
}

func (r *PackageRepo) ListFacilities(_ context.Context, packageID uuid.UUID) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.ListFacilities"); err != nil {
		return nil, err
	}
	return append([]string{}, s.facilities[packageID]...), nil
}

func (r *PackageRepo) ListHotels(_ context.Context, packageID uuid.UUID) ([]domain.Hotel, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.ListHotels"); err != nil {
		return nil, err
	}
	items := []domain.Hotel{}
	for _, id := range s.packageHotels[packageID] {
		if h, ok := s.hotels[id]; ok {
			items = append(items, h)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *PackageRepo) CountHotels(_ context.Context, ids []uuid.UUID) (int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.CountHotels"); err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if _, ok := s.hotels[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *PackageRepo) Count(_ context.Context) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("packages.Count"); err != nil {
		return 0, err
	}
	return int64(len(s.packages)), nil
}

// Callers hold s.mu.
func (s *Store) checkContentsLocked(itineraries []domain.Itinerary, hotelIDs []uuid.UUID) error {
	days := map[int]struct{}{}
	for _, it := range itineraries {
		if _, dup := days[it.DayNumber]; dup {
			return uniqueViolation("itineraries_package_id_day_number_key")
		}
		days[it.DayNumber] = struct{}{}
	}
	for _, id := range hotelIDs {
		if _, ok := s.hotels[id]; !ok {
			return foreignKeyViolation("package_hotels_hotel_id_fkey")
		}
	}
	return nil
}

func ownItineraries(packageID uuid.UUID, items []domain.Itinerary) []domain.Itinerary {
	out := make([]domain.Itinerary, len(items))
	for i, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.PackageID = packageID
		out[i] = it
	}
	return out
}

type ScheduleRepo struct{ s *Store }

var _ ports.ScheduleRepository = (*ScheduleRepo)(nil)

func (r *ScheduleRepo) Create(_ context.Context, schedule *domain.Schedule) (*domain.Schedule, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("schedules.Create"); err != nil {
		return nil, err
	}
	if _, ok := s.packages[schedule.PackageID]; !ok {
		return nil, foreignKeyViolation("schedules_package_id_fkey")
	}
	stored := *schedule
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = s.tick()
	s.schedules[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *ScheduleRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Schedule, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("schedules.FindByID"); err != nil {
		return nil, err
	}
	sch, ok := s.schedules[id]
	if !ok {
		return nil, errNotFound
	}
	out := *sch
	return &out, nil
}

func (r *ScheduleRepo) ListByPackage(_ context.Context, packageID uuid.UUID) ([]domain.Schedule, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("schedules.ListByPackage"); err != nil {
		return nil, err
	}
	items := []domain.Schedule{}
	for _, sch := range s.schedules {
		if sch.PackageID == packageID {
			items = append(items, *sch)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DepartureDate.Before(items[j].DepartureDate) })
	return items, nil
}

func (r *ScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("schedules.Delete"); err != nil {
		return err
	}
	if _, ok := s.schedules[id]; !ok {
		return errNotFound
	}
	for _, b := range s.bookings {
		if b.ScheduleID == id {
			return ports.ErrHasBookings
		}
	}
	delete(s.schedules, id)
	return nil
}
