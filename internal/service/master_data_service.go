package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

const (
	countriesCacheKey     = "lookup:countries"
	citiesCacheKeyPrefix  = "lookup:cities:"
	defaultLookupCacheTTL = time.Hour
)

type MasterDataServiceConfig struct {
	CacheTTL     time.Duration
	StoreTimeout time.Duration
	Logger       logrus.FieldLogger
}

// MasterDataService serves the read-only country and city lookups behind
// the destination dropdowns. Cache errors never fail a request.
type MasterDataService struct {
	repo  ports.MasterDataRepository
	cache ports.LookupCache

	ttl          time.Duration
	storeTimeout time.Duration
	log          logrus.FieldLogger
}

func NewMasterDataService(repo ports.MasterDataRepository, cache ports.LookupCache, cfg MasterDataServiceConfig) *MasterDataService {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultLookupCacheTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MasterDataService{
		repo:         repo,
		cache:        cache,
		ttl:          ttl,
		storeTimeout: cfg.StoreTimeout,
		log:          logger.WithField("component", "master_data"),
	}
}

func (s *MasterDataService) ListCountries(ctx context.Context) ([]domain.Country, error) {
	var countries []domain.Country
	if s.fromCache(ctx, countriesCacheKey, &countries) {
		return countries, nil
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	countries, err := s.repo.ListCountries(storeCtx)
	if err != nil {
		s.log.WithError(err).Error("list countries failed")
		return nil, storeFailure(err)
	}
	if countries == nil {
		countries = []domain.Country{}
	}
	s.toCache(ctx, countriesCacheKey, countries)
	return countries, nil
}

func (s *MasterDataService) ListCities(ctx context.Context, countryID int64) ([]domain.City, error) {
	if countryID <= 0 {
		return nil, validationError("country id must be positive")
	}
	key := fmt.Sprintf("%s%d", citiesCacheKeyPrefix, countryID)

	var cities []domain.City
	if s.fromCache(ctx, key, &cities) {
		return cities, nil
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	cities, err := s.repo.ListCitiesByCountry(storeCtx, countryID)
	if err != nil {
		s.log.WithError(err).WithField("country_id", countryID).Error("list cities failed")
		return nil, storeFailure(err)
	}
	if cities == nil {
		cities = []domain.City{}
	}
	s.toCache(ctx, key, cities)
	return cities, nil
}

func (s *MasterDataService) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("lookup cache read failed")
		return false
	}
	return hit
}

func (s *MasterDataService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("lookup cache write failed")
	}
}
