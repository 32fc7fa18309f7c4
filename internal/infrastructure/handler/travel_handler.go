package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/application/service"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TravelHandler handles HTTP requests for travels
type TravelHandler struct {
	travels *service.TravelRepository
	logger  logger.Logger
}

// NewTravelHandler creates a new travel handler
func NewTravelHandler(travels *service.TravelRepository, log logger.Logger) *TravelHandler {
	return &TravelHandler{
		travels: travels,
		logger:  logger.Component(log, "travel_handler"),
	}
}

// CreateTravel handles planning a new travel. The response carries the rate the travel was
// seeded with; a refresh of a stale country rate continues in the background.
func (h *TravelHandler) CreateTravel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req CreateTravelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	travel, err := h.travels.CreateTravel(r.Context(), req.CountryName)
	if err != nil {
		sendDomainError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusCreated, newTravelResponse(travel), requestID)
}

// ListTravels handles listing every travel ordered by start date
func (h *TravelHandler) ListTravels(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	travels := h.travels.FetchTravels(r.Context())
	resp := make([]TravelResponse, 0, len(travels))
	for _, t := range travels {
		resp = append(resp, newTravelResponse(t))
	}

	sendJSON(w, h.logger, http.StatusOK, resp, requestID)
}

// GetTravel handles retrieving a travel by ID
func (h *TravelHandler) GetTravel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := h.travelID(w, r, requestID)
	if !ok {
		return
	}

	travel, err := h.travels.FindTravel(r.Context(), id)
	if err != nil {
		sendDomainError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, newTravelResponse(travel), requestID)
}

// UpdateTravel handles a partial update of a travel
func (h *TravelHandler) UpdateTravel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := h.travelID(w, r, requestID)
	if !ok {
		return
	}

	var req UpdateTravelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	update := service.TravelUpdate{
		Title:        req.Title,
		Memo:         req.Memo,
		CoverImage:   req.CoverImage,
		Budget:       req.Budget,
		ExchangeRate: req.ExchangeRate,
	}
	for _, field := range []struct {
		name string
		in   *string
		out  **time.Time
	}{
		{"start_date", req.StartDate, &update.StartDate},
		{"end_date", req.EndDate, &update.EndDate},
	} {
		if field.in == nil {
			continue
		}
		parsed, err := parseDate(*field.in)
		if err != nil {
			h.logger.Warn("Invalid date format", map[string]interface{}{
				"request_id": requestID,
				field.name:   *field.in,
			})
			sendErrorResponse(w, h.logger, "Invalid date format",
				field.name+" must be in YYYY-MM-DD format", http.StatusBadRequest, requestID)
			return
		}
		*field.out = &parsed
	}

	travel, err := h.travels.UpdateTravel(r.Context(), id, update)
	if err != nil {
		sendDomainError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, newTravelResponse(travel), requestID)
}

// DeleteTravel handles deleting a travel. A removal the store did not commit is reported as 404.
func (h *TravelHandler) DeleteTravel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := h.travelID(w, r, requestID)
	if !ok {
		return
	}

	if !h.travels.DeleteTravel(r.Context(), id) {
		sendErrorResponse(w, h.logger, "Travel not deleted",
			"The travel does not exist or could not be removed", http.StatusNotFound, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TravelHandler) travelID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn("Invalid travel id", map[string]interface{}{
			"request_id": requestID,
			"id":         raw,
		})
		sendErrorResponse(w, h.logger, "Invalid travel id",
			"The travel id must be a UUID", http.StatusBadRequest, requestID)
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers the travel handler routes
func (h *TravelHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/travels", h.CreateTravel).Methods(http.MethodPost)
	router.HandleFunc("/travels", h.ListTravels).Methods(http.MethodGet)
	router.HandleFunc("/travels/{id}", h.GetTravel).Methods(http.MethodGet)
	router.HandleFunc("/travels/{id}", h.UpdateTravel).Methods(http.MethodPatch)
	router.HandleFunc("/travels/{id}", h.DeleteTravel).Methods(http.MethodDelete)

	h.logger.Info("Travel routes registered", map[string]interface{}{
		"routes": []string{
			"POST /travels",
			"GET /travels",
			"GET /travels/{id}",
			"PATCH /travels/{id}",
			"DELETE /travels/{id}",
		},
	})
}
