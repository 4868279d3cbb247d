package memory

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

type ReviewRepo struct{ s *Store }

var _ ports.ReviewRepository = (*ReviewRepo)(nil)

func (r *ReviewRepo) Create(_ context.Context, review *domain.Review) (*domain.Review, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("reviews.Create"); err != nil {
		return nil, err
	}
	if _, ok := s.packages[review.PackageID]; !ok {
		return nil, foreignKeyViolation("reviews_package_id_fkey")
	}
	if _, ok := s.users[review.UserID]; !ok {
		return nil, foreignKeyViolation("reviews_user_id_fkey")
	}
	stored := *review
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = s.tick()
	s.reviews[stored.ID] = &stored
	return s.reviewLocked(&stored), nil
}

func (r *ReviewRepo) ListByPackage(_ context.Context, packageID uuid.UUID, limit, offset int) ([]domain.Review, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("reviews.ListByPackage"); err != nil {
		return nil, err
	}
	items := []domain.Review{}
	for _, rv := range s.reviews {
		if rv.PackageID == packageID {
			items = append(items, *s.reviewLocked(rv))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return page(items, limit, offset), nil
}

func (r *ReviewRepo) AggregateByPackage(_ context.Context, packageID uuid.UUID) (*domain.ReviewAggregate, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("reviews.AggregateByPackage"); err != nil {
		return nil, err
	}
	agg := &domain.ReviewAggregate{RatingCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, rv := range s.reviews {
		if rv.PackageID != packageID {
			continue
		}
		agg.TotalReviews++
		agg.RatingCounts[rv.Rating]++
		sum += rv.Rating
	}
	if agg.TotalReviews > 0 {
		agg.AverageRating = round2(float64(sum) / float64(agg.TotalReviews))
	}
	return agg, nil
}

func (r *ReviewRepo) Summary(_ context.Context) (*domain.ReviewSummary, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("reviews.Summary"); err != nil {
		return nil, err
	}
	out := &domain.ReviewSummary{}
	sum := 0
	for _, rv := range s.reviews {
		out.Total++
		sum += rv.Rating
	}
	if out.Total > 0 {
		out.AverageRating = float64(sum) / float64(out.Total)
	}
	return out, nil
}

// Callers hold s.mu.
func (s *Store) reviewLocked(rv *domain.Review) *domain.Review {
	out := *rv
	if u, ok := s.users[rv.UserID]; ok {
		out.ReviewerEmail = strPtr(u.Email)
		if p, ok := s.profiles[u.ID]; ok && p.FullName != nil {
			out.ReviewerName = strPtr(*p.FullName)
		}
	}
	return &out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
