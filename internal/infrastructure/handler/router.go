package handler

import (
	"net/http"

	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// NewRouter mounts the country and travel routes behind the request-id, recovery and logging middleware
func NewRouter(log logger.Logger, countries *CountryHandler, travels *TravelHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))

	countries.RegisterRoutes(router)
	travels.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	return router
}
