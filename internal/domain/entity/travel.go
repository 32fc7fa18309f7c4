package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Travel is a planned trip to a Country.
//
// CountryName references the owning Country by its natural key; the Travel never owns the Country.
// ExchangeRate is a snapshot of the Country's rate taken at creation (or set explicitly by an update),
// so budget math stays stable when the Country's rate later moves.
type Travel struct {
	ID           uuid.UUID `json:"id"`
	CountryName  string    `json:"country_name"`
	Title        string    `json:"title"`
	Memo         string    `json:"memo"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Budget       float64   `json:"budget"`
	CoverImage   []byte    `json:"cover_image"`
	ExchangeRate float64   `json:"exchange_rate"`
}

// Kind reports KindTravel
func (*Travel) Kind() Kind { return KindTravel }

func (*Travel) entity() {}

// ConvertToBase converts an amount in the Country's currency to the base currency using
// the Travel's rate snapshot. The rate is the number of local units bought by one base unit.
func (t *Travel) ConvertToBase(amount float64) decimal.Decimal {
	if t.ExchangeRate == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(t.ExchangeRate)).
		Round(2)
}

// BudgetInBase returns the budget expressed in the base currency.
func (t *Travel) BudgetInBase() decimal.Decimal {
	return t.ConvertToBase(t.Budget)
}

// TravelWithID matches the Travel with the given id.
func TravelWithID(id uuid.UUID) Predicate {
	return func(e Entity) bool {
		t, ok := e.(*Travel)
		return ok && t.ID == id
	}
}

// TravelsIn matches every Travel that references the named Country.
func TravelsIn(countryName string) Predicate {
	return func(e Entity) bool {
		t, ok := e.(*Travel)
		return ok && t.CountryName == countryName
	}
}
