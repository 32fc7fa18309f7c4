package service

import (
	"context"
	"sync"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/repository"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/middleware"
)

// CountryRepository is the Country facade over the object store. It keeps an in-memory copy
// of the countries it has seen, ordered by name, and follows background rate refreshes
// when registered as a RefreshObserver.
type CountryRepository struct {
	store     repository.ObjectStore
	logger    logger.Logger
	mu        sync.RWMutex
	countries []*entity.Country
}

var _ RefreshObserver = (*CountryRepository)(nil)

// NewCountryRepository creates a new country repository
func NewCountryRepository(store repository.ObjectStore, log logger.Logger) *CountryRepository {
	return &CountryRepository{
		store:  store,
		logger: logger.Component(log, "country_repository"),
	}
}

// CreateCountry stores a new Country and appends it to the cache
func (r *CountryRepository) CreateCountry(ctx context.Context, name string, lastUpdated time.Time, flagImage []byte, exchangeRate float64, currencyCode string) (*entity.Country, error) {
	requestID := middleware.GetRequestID(ctx)

	country, err := expect[*entity.Country](r.store.Create(ctx, entity.CountryDescriptor{
		Name:         name,
		LastUpdated:  lastUpdated,
		FlagImage:    flagImage,
		ExchangeRate: exchangeRate,
		CurrencyCode: currencyCode,
	}))
	if err != nil {
		r.logger.Error("Failed to create country", map[string]interface{}{
			"request_id": requestID,
			"name":       name,
			"error":      err.Error(),
		})
		return nil, err
	}

	r.mu.Lock()
	r.countries = append(r.countries, country)
	sortCountries(r.countries)
	r.mu.Unlock()

	r.logger.Info("Country created", map[string]interface{}{
		"request_id":    requestID,
		"name":          country.Name,
		"currency_code": country.CurrencyCode,
		"exchange_rate": country.ExchangeRate,
	})

	return country, nil
}

// FetchCountries reloads every Country, ordered by name, and replaces the cache
func (r *CountryRepository) FetchCountries(ctx context.Context) []*entity.Country {
	countries := collect[*entity.Country](r.store.FetchAll(ctx, entity.KindCountry))

	r.mu.Lock()
	r.countries = countries
	r.mu.Unlock()

	r.logger.Debug("Countries fetched", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"count":      len(countries),
	})

	return append([]*entity.Country(nil), countries...)
}

// Countries returns the cached countries
func (r *CountryRepository) Countries() []*entity.Country {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*entity.Country(nil), r.countries...)
}

// RefreshCompleted replaces the cached entry of a refreshed country with the stored record
func (r *CountryRepository) RefreshCompleted(event RefreshEvent) {
	if event.Err != nil || event.Country == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cached := range r.countries {
		if cached.Name == event.Country.Name {
			r.countries[i] = event.Country
			return
		}
	}
}
