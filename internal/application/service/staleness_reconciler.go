// Package service holds the repositories used by the rest of the application and the
// reconciler that keeps country exchange rates fresh.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/repository"
	domainsvc "github.com/damon-houk/travel-budget-tracker/internal/domain/service"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/dispatch"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/middleware"
)

// Dispatcher runs completion work on the context that owns visible state.
type Dispatcher interface {
	Post(fn func())
}

// CountryUpdater is the part of the object store the reconciler writes through.
type CountryUpdater interface {
	Update(ctx context.Context, p entity.Patch) (entity.Entity, error)
}

// RefreshEvent reports the outcome of one background rate refresh.
// On failure Err is set, Country is nil and Rate/LastUpdated still hold the stale values.
// Superseded is set when the store already held a newer as-of date and kept it.
type RefreshEvent struct {
	CountryName  string
	CurrencyCode string
	TriggeredBy  string
	PreviousRate float64
	Rate         float64
	LastUpdated  time.Time
	Country      *entity.Country
	Superseded   bool
	Err          error
}

// Succeeded reports whether the country was updated
func (e RefreshEvent) Succeeded() bool {
	return e.Err == nil
}

// RefreshObserver is told about every completed refresh
type RefreshObserver interface {
	RefreshCompleted(event RefreshEvent)
}

// RefreshObserverFunc adapts a function to RefreshObserver
type RefreshObserverFunc func(event RefreshEvent)

// RefreshCompleted calls f
func (f RefreshObserverFunc) RefreshCompleted(event RefreshEvent) {
	f(event)
}

// Observers fans every event out to each non-nil observer, in order
func Observers(observers ...RefreshObserver) RefreshObserver {
	return RefreshObserverFunc(func(event RefreshEvent) {
		for _, o := range observers {
			if o != nil {
				o.RefreshCompleted(event)
			}
		}
	})
}

// LoggingObserver writes refresh outcomes to a logger
type LoggingObserver struct {
	logger logger.Logger
}

// NewLoggingObserver creates an observer that logs through log
func NewLoggingObserver(log logger.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger.Component(log, "rate_refresh")}
}

// RefreshCompleted logs the event
func (o *LoggingObserver) RefreshCompleted(event RefreshEvent) {
	fields := map[string]interface{}{
		"country":       event.CountryName,
		"currency_code": event.CurrencyCode,
		"travel_id":     event.TriggeredBy,
		"previous_rate": event.PreviousRate,
		"rate":          event.Rate,
		"last_updated":  event.LastUpdated.Format("2006-01-02"),
		"superseded":    event.Superseded,
	}
	if event.Err != nil {
		fields["error"] = event.Err.Error()
		o.logger.Warn("Exchange rate refresh failed; keeping stale rate", fields)
		return
	}
	o.logger.Info("Exchange rate refreshed", fields)
}

// StalenessReconciler refreshes a country's exchange rate when a Travel is created while
// the rate is outdated. The Travel has already been committed with the stale rate when the
// refresh starts; only the Country is updated, and failures are reported to the observer.
// There is no cancellation, timeout or retry at this layer.
type StalenessReconciler struct {
	store      CountryUpdater
	fetcher    domainsvc.RateFetcher
	dispatcher Dispatcher
	observer   RefreshObserver
	logger     logger.Logger
	now        func() time.Time
	inflight   sync.WaitGroup
}

var _ repository.TravelCreationHook = (*StalenessReconciler)(nil)

// NewStalenessReconciler creates a reconciler. A nil dispatcher runs completions on the
// fetching goroutine and a nil observer logs outcomes.
func NewStalenessReconciler(store CountryUpdater, fetcher domainsvc.RateFetcher, dispatcher Dispatcher, observer RefreshObserver, log logger.Logger) *StalenessReconciler {
	log = logger.Component(log, "staleness_reconciler")
	if dispatcher == nil {
		dispatcher = dispatch.Inline{}
	}
	if observer == nil {
		observer = NewLoggingObserver(log)
	}

	return &StalenessReconciler{
		store:      store,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		observer:   observer,
		logger:     log,
		now:        time.Now,
	}
}

// IsOutdated reports whether lastUpdated is outside the current local calendar day
func (r *StalenessReconciler) IsOutdated(lastUpdated time.Time) bool {
	return entity.IsOutdated(lastUpdated, r.now())
}

// TravelCreated starts a background refresh when country's rate is outdated.
// It returns without waiting for the network.
func (r *StalenessReconciler) TravelCreated(ctx context.Context, country entity.Country, travel entity.Travel) {
	if !r.IsOutdated(country.LastUpdated) {
		return
	}

	r.logger.Info("Country rate is outdated; scheduling refresh", map[string]interface{}{
		"request_id":    middleware.GetRequestID(ctx),
		"country":       country.Name,
		"currency_code": country.CurrencyCode,
		"last_updated":  country.LastUpdated.Format("2006-01-02"),
		"travel_id":     travel.ID.String(),
	})

	r.inflight.Add(1)
	go r.refresh(context.WithoutCancel(ctx), country, travel.ID.String())
}

// Wait blocks until every scheduled refresh, including its completion step, has finished.
// It must not race with new Travel creations.
func (r *StalenessReconciler) Wait() {
	r.inflight.Wait()
}

func (r *StalenessReconciler) refresh(ctx context.Context, country entity.Country, travelID string) {
	snap, err := r.fetcher.FetchRates(ctx, country.CurrencyCode)

	r.dispatcher.Post(func() {
		defer r.inflight.Done()
		event := r.reconcile(ctx, country, snap, err)
		event.TriggeredBy = travelID
		r.observer.RefreshCompleted(event)
	})
}

// reconcile writes a fetched snapshot into the Country. The rate is left untouched when the
// snapshot does not quote the country's currency. A snapshot older than the stored date is
// dropped by the store, so refreshes finishing out of order never move the date backwards.
func (r *StalenessReconciler) reconcile(ctx context.Context, country entity.Country, snap *entity.RateSnapshot, fetchErr error) RefreshEvent {
	event := RefreshEvent{
		CountryName:  country.Name,
		CurrencyCode: country.CurrencyCode,
		PreviousRate: country.ExchangeRate,
		Rate:         country.ExchangeRate,
		LastUpdated:  country.LastUpdated,
	}

	if fetchErr != nil {
		event.Err = fmt.Errorf("failed to fetch rates for %s: %w", country.CurrencyCode, fetchErr)
		return event
	}
	if snap == nil {
		event.Err = fmt.Errorf("failed to fetch rates for %s: empty snapshot", country.CurrencyCode)
		return event
	}

	asOf := snap.AsOf
	patch := entity.CountryPatch{
		Name:        country.Name,
		OnlyIfNewer: true,
		LastUpdated: &asOf,
	}
	if rate, ok := snap.Quote(country.CurrencyCode); ok {
		patch.ExchangeRate = &rate
	}

	updated, err := r.store.Update(ctx, patch)
	if err != nil {
		event.Err = fmt.Errorf("failed to update country %q: %w", country.Name, err)
		return event
	}

	if c, ok := updated.(*entity.Country); ok {
		event.Country = c
		event.Rate = c.ExchangeRate
		event.LastUpdated = c.LastUpdated
		event.Superseded = c.LastUpdated.After(asOf)
	}
	return event
}
