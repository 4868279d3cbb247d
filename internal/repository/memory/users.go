package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type UserRepo struct{ s *Store }

var _ ports.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, user *domain.User, profile domain.ProfileFields) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, uniqueViolation("users_email_key")
		}
	}
	stored := *user
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = s.tick()
	stored.UpdatedAt = stored.CreatedAt
	stored.Profile = nil
	s.users[stored.ID] = &stored
	s.profiles[stored.ID] = applyProfile(&domain.Profile{UserID: stored.ID}, profile)
	return s.userLocked(stored.ID), nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.FindByEmail"); err != nil {
		return nil, err
	}
	for id, u := range s.users {
		if u.Email == email {
			return s.userLocked(id), nil
		}
	}
	return nil, errNotFound
}

func (r *UserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.FindByID"); err != nil {
		return nil, err
	}
	if _, ok := s.users[id]; !ok {
		return nil, errNotFound
	}
	return s.userLocked(id), nil
}

func (r *UserRepo) Update(_ context.Context, id uuid.UUID, email *string, status *domain.UserStatus, profile domain.ProfileFields) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.Update"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	if email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *email {
				return nil, uniqueViolation("users_email_key")
			}
		}
		u.Email = *email
	}
	if status != nil {
		u.Status = *status
	}
	p, ok := s.profiles[id]
	if !ok {
		p = &domain.Profile{UserID: id}
	}
	s.profiles[id] = applyProfile(p, profile)
	u.UpdatedAt = s.tick()
	return s.userLocked(id), nil
}

func (r *UserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.UserStatus) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.UpdateStatus"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	u.Status = status
	u.UpdatedAt = s.tick()
	return s.userLocked(id), nil
}

func (r *UserRepo) ListCustomers(_ context.Context, limit, offset int) ([]domain.CustomerListItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.ListCustomers"); err != nil {
		return nil, err
	}
	counts := map[uuid.UUID]int{}
	for _, b := range s.bookings {
		counts[b.UserID]++
	}
	items := []domain.CustomerListItem{}
	for id, u := range s.users {
		if u.Role != domain.RoleCustomer {
			continue
		}
		user := s.userLocked(id)
		item := domain.CustomerListItem{User: *user, BookingCount: counts[id]}
		if user.Profile != nil {
			item.FullName = user.Profile.FullName
			item.Phone = user.Profile.Phone
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return page(items, limit, offset), nil
}

func (r *UserRepo) CountByRole(_ context.Context, role domain.UserRole) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.CountByRole"); err != nil {
		return 0, err
	}
	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// Callers hold s.mu.
func (s *Store) userLocked(id uuid.UUID) *domain.User {
	u := *s.users[id]
	u.PasswordHash = append([]byte(nil), u.PasswordHash...)
	if p, ok := s.profiles[id]; ok {
		cp := *p
		u.Profile = &cp
	}
	return &u
}

func applyProfile(p *domain.Profile, fields domain.ProfileFields) *domain.Profile {
	if fields.FullName != nil {
		p.FullName = strPtr(*fields.FullName)
	}
	if fields.Phone != nil {
		p.Phone = strPtr(*fields.Phone)
	}
	if fields.Address != nil {
		p.Address = strPtr(*fields.Address)
	}
	if fields.Gender != nil {
		p.Gender = strPtr(*fields.Gender)
	}
	if fields.IdentityNumber != nil {
		p.IdentityNumber = strPtr(*fields.IdentityNumber)
	}
	return p
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
