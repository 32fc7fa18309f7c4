package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/application/service"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/api"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/config"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/db"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/dispatch"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetDefaultLogger().Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, cfg.LogLevel)
	logger.SetDefaultLogger(log)

	log.Info("Starting Travel Budget Tracker", map[string]interface{}{
		"port":          cfg.Port,
		"data_dir":      cfg.DataDir,
		"rate_api_url":  cfg.RateAPIURL,
		"base_currency": cfg.RateBaseCurrency,
	})

	// Setup BadgerDB
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal("Failed to create database directory", map[string]interface{}{
			"data_dir": cfg.DataDir,
			"error":    err.Error(),
		})
	}

	badgerOpts := badger.DefaultOptions(cfg.DataDir).
		WithLogger(nil).
		WithSyncWrites(cfg.BadgerSyncWrites)

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Completions of background refreshes run here, one at a time
	queue := dispatch.NewSerialQueue(log)

	store := db.NewBadgerObjectStore(badgerDB, log)

	rateCache := cache.NewRateSnapshotCache(cfg.RateCacheTTL)
	rateClient := api.NewRateAPIClient(log,
		api.WithBaseURL(cfg.RateAPIURL),
		api.WithBaseCurrency(cfg.RateBaseCurrency),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RateAPITimeout}),
		api.WithCache(rateCache),
	)

	janitor := time.NewTicker(time.Hour)
	defer janitor.Stop()
	go func() {
		for range janitor.C {
			if n := rateCache.CleanExpired(); n > 0 {
				log.Debug("Expired rate snapshots removed", map[string]interface{}{
					"removed":   n,
					"remaining": rateCache.Size(),
				})
			}
		}
	}()

	countryRepo := service.NewCountryRepository(store, log)
	travelRepo := service.NewTravelRepository(store, log)

	// Refresh completions are logged and then folded into the country cache
	observer := service.Observers(service.NewLoggingObserver(log), countryRepo)
	reconciler := service.NewStalenessReconciler(store, rateClient, queue, observer, log)
	store.SetTravelCreationHook(reconciler)

	router := handler.NewRouter(log,
		handler.NewCountryHandler(countryRepo, log),
		handler.NewTravelHandler(travelRepo, log),
	)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("Shutting down", map[string]interface{}{
		"signal": sig.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error shutting down server", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Refreshes already dispatched run to completion before the store goes away
	reconciler.Wait()
	queue.Close()

	if err := badgerDB.Close(); err != nil {
		log.Error("Error closing BadgerDB", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
