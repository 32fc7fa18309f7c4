package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/application/service"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// CountryHandler handles HTTP requests for countries
type CountryHandler struct {
	countries *service.CountryRepository
	logger    logger.Logger
}

// NewCountryHandler creates a new country handler
func NewCountryHandler(countries *service.CountryRepository, log logger.Logger) *CountryHandler {
	return &CountryHandler{
		countries: countries,
		logger:    logger.Component(log, "country_handler"),
	}
}

// CreateCountry handles the creation of a new country
func (h *CountryHandler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req CreateCountryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	lastUpdated := time.Now()
	if req.LastUpdated != "" {
		parsed, err := parseDate(req.LastUpdated)
		if err != nil {
			h.logger.Warn("Invalid date format", map[string]interface{}{
				"request_id":   requestID,
				"last_updated": req.LastUpdated,
			})
			sendErrorResponse(w, h.logger, "Invalid date format",
				"last_updated must be in YYYY-MM-DD format", http.StatusBadRequest, requestID)
			return
		}
		lastUpdated = parsed
	}

	country, err := h.countries.CreateCountry(r.Context(), req.Name, lastUpdated, req.FlagImage, req.ExchangeRate, req.CurrencyCode)
	if err != nil {
		sendDomainError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusCreated, newCountryResponse(country), requestID)
}

// ListCountries handles listing every country ordered by name
func (h *CountryHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	countries := h.countries.FetchCountries(r.Context())
	resp := make([]CountryResponse, 0, len(countries))
	for _, c := range countries {
		resp = append(resp, newCountryResponse(c))
	}

	sendJSON(w, h.logger, http.StatusOK, resp, requestID)
}

// RegisterRoutes registers the country handler routes
func (h *CountryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/countries", h.CreateCountry).Methods(http.MethodPost)
	router.HandleFunc("/countries", h.ListCountries).Methods(http.MethodGet)

	h.logger.Info("Country routes registered", map[string]interface{}{
		"routes": []string{
			"POST /countries",
			"GET /countries",
		},
	})
}
