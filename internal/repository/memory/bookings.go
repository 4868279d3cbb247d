package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type BookingRepo struct{ s *Store }

var _ ports.BookingRepository = (*BookingRepo)(nil)

func (r *BookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.Create"); err != nil {
		return nil, err
	}
	sch, ok := s.schedules[booking.ScheduleID]
	if !ok {
		return nil, foreignKeyViolation("bookings_schedule_id_fkey")
	}
	for _, b := range s.bookings {
		if b.BookingCode == booking.BookingCode {
			return nil, uniqueViolation("bookings_booking_code_key")
		}
		if booking.IdempotencyKey != nil && b.IdempotencyKey != nil &&
			b.UserID == booking.UserID && *b.IdempotencyKey == *booking.IdempotencyKey {
			return nil, uniqueViolation("bookings_user_id_idempotency_key_key")
		}
	}
	if sch.AvailableQuota < booking.Participants {
		return nil, ports.ErrQuotaUnavailable
	}
	sch.AvailableQuota -= booking.Participants

	stored := *booking
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = s.tick()
	stored.UpdatedAt = stored.CreatedAt
	s.bookings[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *BookingRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.FindByID"); err != nil {
		return nil, err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, errNotFound
	}
	out := *b
	return &out, nil
}

func (r *BookingRepo) FindByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*domain.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.FindByIdempotencyKey"); err != nil {
		return nil, err
	}
	for _, b := range s.bookings {
		if b.UserID == userID && b.IdempotencyKey != nil && *b.IdempotencyKey == key {
			out := *b
			return &out, nil
		}
	}
	return nil, errNotFound
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.BookingStatus) (*domain.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.UpdateStatus"); err != nil {
		return nil, err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, errNotFound
	}
	if b.Status != from {
		return nil, ports.ErrStatusChanged
	}
	if to == domain.BookingStatusCancelled {
		if sch, ok := s.schedules[b.ScheduleID]; ok {
			restored := sch.AvailableQuota + b.Participants
			if p, ok := s.packages[sch.PackageID]; ok && restored > p.Quota {
				restored = p.Quota
			}
			sch.AvailableQuota = restored
		}
	}
	b.Status = to
	b.UpdatedAt = s.tick()
	out := *b
	return &out, nil
}

func (r *BookingRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.ListByUser"); err != nil {
		return nil, err
	}
	items := []domain.Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			items = append(items, *b)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return page(items, limit, offset), nil
}

func (r *BookingRepo) ListRecent(_ context.Context, limit int) ([]domain.RecentBooking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.ListRecent"); err != nil {
		return nil, err
	}
	items := make([]domain.RecentBooking, 0, len(s.bookings))
	for _, b := range s.bookings {
		row := domain.RecentBooking{Booking: *b}
		if u, ok := s.users[b.UserID]; ok {
			row.CustomerEmail = strPtr(u.Email)
			if p, ok := s.profiles[u.ID]; ok && p.FullName != nil {
				row.CustomerName = strPtr(*p.FullName)
			}
		}
		if sch, ok := s.schedules[b.ScheduleID]; ok {
			departure := sch.DepartureDate
			row.DepartureDate = &departure
			if p, ok := s.packages[sch.PackageID]; ok {
				pid := p.ID
				row.PackageID = &pid
				row.PackageTitle = strPtr(p.Title)
				if d, ok := s.destinations[p.DestinationID]; ok {
					row.DestinationName = strPtr(d.Name)
				}
			}
		}
		items = append(items, row)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return page(items, limit, 0), nil
}

func (r *BookingRepo) Count(_ context.Context, filter domain.BookingCountFilter) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.Count"); err != nil {
		return 0, err
	}
	var n int64
	for _, b := range s.bookings {
		if filter.Status == nil || b.Status == *filter.Status {
			n++
		}
	}
	return n, nil
}

func (r *BookingRepo) SumTotalPrice(_ context.Context, status domain.BookingStatus) (decimal.Decimal, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.SumTotalPrice"); err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, b := range s.bookings {
		if b.Status == status {
			sum = sum.Add(b.TotalPrice)
		}
	}
	return sum, nil
}

// RemoveSchedule drops a schedule row without any referential checks, leaving
// its bookings dangling. Tests use it to model rows that disappeared.
func (s *Store) RemoveSchedule(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.schedules, id)
}
