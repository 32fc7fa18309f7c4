package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/repository"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/middleware"
	"github.com/google/uuid"
)

// TravelUpdate lists the Travel fields to overwrite. Nil fields are left unchanged.
type TravelUpdate struct {
	Title        *string
	Memo         *string
	StartDate    *time.Time
	EndDate      *time.Time
	CoverImage   []byte
	Budget       *float64
	ExchangeRate *float64
}

// TravelRepository is the Travel facade over the object store. It keeps an in-memory copy
// of the travels it has seen, ordered by start date.
type TravelRepository struct {
	store   repository.ObjectStore
	logger  logger.Logger
	now     func() time.Time
	mu      sync.RWMutex
	travels []*entity.Travel
}

// NewTravelRepository creates a new travel repository
func NewTravelRepository(store repository.ObjectStore, log logger.Logger) *TravelRepository {
	return &TravelRepository{
		store:  store,
		logger: logger.Component(log, "travel_repository"),
		now:    time.Now,
	}
}

// CreateTravel plans a new Travel to countryName. The title defaults to the country name
// and the period to today; the rate is seeded by the store from the country.
func (r *TravelRepository) CreateTravel(ctx context.Context, countryName string) (*entity.Travel, error) {
	requestID := middleware.GetRequestID(ctx)
	now := r.now()

	travel, err := expect[*entity.Travel](r.store.Create(ctx, entity.TravelDescriptor{
		ID:          uuid.New(),
		CountryName: countryName,
		Title:       countryName,
		StartDate:   now,
		EndDate:     now,
		CoverImage:  []byte{},
	}))
	if err != nil {
		r.logger.Error("Failed to create travel", map[string]interface{}{
			"request_id": requestID,
			"country":    countryName,
			"error":      err.Error(),
		})
		return nil, err
	}

	r.mu.Lock()
	r.travels = append(r.travels, travel)
	sortTravels(r.travels)
	r.mu.Unlock()

	r.logger.Info("Travel created", map[string]interface{}{
		"request_id":    requestID,
		"id":            travel.ID.String(),
		"country":       travel.CountryName,
		"exchange_rate": travel.ExchangeRate,
	})

	return travel, nil
}

// FetchTravels reloads every Travel, ordered by start date, and replaces the cache
func (r *TravelRepository) FetchTravels(ctx context.Context) []*entity.Travel {
	travels := collect[*entity.Travel](r.store.FetchAll(ctx, entity.KindTravel))

	r.mu.Lock()
	r.travels = travels
	r.mu.Unlock()

	r.logger.Debug("Travels fetched", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"count":      len(travels),
	})

	return append([]*entity.Travel(nil), travels...)
}

// FindTravel looks a Travel up by id in the store
func (r *TravelRepository) FindTravel(ctx context.Context, id uuid.UUID) (*entity.Travel, error) {
	records, err := r.store.FetchWhere(ctx, entity.KindTravel, entity.TravelWithID(id))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: travel %s", apperrors.ErrNotFound, id)
	}
	return expect[*entity.Travel](records[0], nil)
}

// UpdateTravel overwrites the fields set on u and refreshes the cached entry
func (r *TravelRepository) UpdateTravel(ctx context.Context, id uuid.UUID, u TravelUpdate) (*entity.Travel, error) {
	requestID := middleware.GetRequestID(ctx)

	travel, err := expect[*entity.Travel](r.store.Update(ctx, entity.TravelPatch{
		ID:           id,
		Title:        u.Title,
		Memo:         u.Memo,
		StartDate:    u.StartDate,
		EndDate:      u.EndDate,
		Budget:       u.Budget,
		CoverImage:   u.CoverImage,
		ExchangeRate: u.ExchangeRate,
	}))
	if err != nil {
		r.logger.Error("Failed to update travel", map[string]interface{}{
			"request_id": requestID,
			"id":         id.String(),
			"error":      err.Error(),
		})
		return nil, err
	}

	r.mu.Lock()
	for i, cached := range r.travels {
		if cached.ID == id {
			r.travels[i] = travel
			break
		}
	}
	sortTravels(r.travels)
	r.mu.Unlock()

	r.logger.Info("Travel updated", map[string]interface{}{
		"request_id": requestID,
		"id":         id.String(),
	})

	return travel, nil
}

// DeleteTravel removes the Travel with id and reports whether the store committed the removal.
// The cache is only touched on success.
func (r *TravelRepository) DeleteTravel(ctx context.Context, id uuid.UUID) bool {
	requestID := middleware.GetRequestID(ctx)

	if !r.store.Delete(ctx, &entity.Travel{ID: id}) {
		r.logger.Warn("Travel not deleted", map[string]interface{}{
			"request_id": requestID,
			"id":         id.String(),
		})
		return false
	}

	r.mu.Lock()
	for i, cached := range r.travels {
		if cached.ID == id {
			r.travels = append(r.travels[:i], r.travels[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info("Travel deleted", map[string]interface{}{
		"request_id": requestID,
		"id":         id.String(),
	})

	return true
}

// Travels returns the cached travels
func (r *TravelRepository) Travels() []*entity.Travel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*entity.Travel(nil), r.travels...)
}
