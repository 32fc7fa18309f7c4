package handler

import (
	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// CreateCountryRequest represents the request body for creating a country.
// LastUpdated defaults to today when empty.
type CreateCountryRequest struct {
	Name         string  `json:"name"`
	LastUpdated  string  `json:"last_updated"`
	FlagImage    []byte  `json:"flag_image"`
	ExchangeRate float64 `json:"exchange_rate"`
	CurrencyCode string  `json:"currency_code"`
}

// CountryResponse represents a country in responses
type CountryResponse struct {
	Name         string  `json:"name"`
	LastUpdated  string  `json:"last_updated"`
	FlagImage    []byte  `json:"flag_image,omitempty"`
	ExchangeRate float64 `json:"exchange_rate"`
	CurrencyCode string  `json:"currency_code"`
}

// CreateTravelRequest represents the request body for creating a travel
type CreateTravelRequest struct {
	CountryName string `json:"country_name"`
}

// UpdateTravelRequest represents the request body for updating a travel.
// Omitted fields are left unchanged.
type UpdateTravelRequest struct {
	Title        *string  `json:"title"`
	Memo         *string  `json:"memo"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	CoverImage   []byte   `json:"cover_image"`
	Budget       *float64 `json:"budget"`
	ExchangeRate *float64 `json:"exchange_rate"`
}

// TravelResponse represents a travel in responses
type TravelResponse struct {
	ID           string          `json:"id"`
	CountryName  string          `json:"country_name"`
	Title        string          `json:"title"`
	Memo         string          `json:"memo"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Budget       float64         `json:"budget"`
	BudgetInBase decimal.Decimal `json:"budget_in_base"`
	CoverImage   []byte          `json:"cover_image,omitempty"`
	ExchangeRate float64         `json:"exchange_rate"`
}

func newCountryResponse(c *entity.Country) CountryResponse {
	return CountryResponse{
		Name:         c.Name,
		LastUpdated:  c.LastUpdated.Format(dateLayout),
		FlagImage:    c.FlagImage,
		ExchangeRate: c.ExchangeRate,
		CurrencyCode: c.CurrencyCode,
	}
}

func newTravelResponse(t *entity.Travel) TravelResponse {
	return TravelResponse{
		ID:           t.ID.String(),
		CountryName:  t.CountryName,
		Title:        t.Title,
		Memo:         t.Memo,
		StartDate:    t.StartDate.Format(dateLayout),
		EndDate:      t.EndDate.Format(dateLayout),
		Budget:       t.Budget,
		BudgetInBase: t.BudgetInBase(),
		CoverImage:   t.CoverImage,
		ExchangeRate: t.ExchangeRate,
	}
}
