package entity

import (
	"fmt"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Descriptor is the payload of a create call. Only CountryDescriptor and TravelDescriptor implement it.
type Descriptor interface {
	Kind() Kind
	Validate() error
	descriptor()
}

// Patch is the payload of an update call. It names its target by natural key and
// carries only the fields to overwrite. Only CountryPatch and TravelPatch implement it.
type Patch interface {
	Kind() Kind
	Validate() error
	patch()
}

// CountryDescriptor carries every attribute of a new Country.
type CountryDescriptor struct {
	Name         string    `validate:"required"`
	LastUpdated  time.Time `validate:"required"`
	FlagImage    []byte
	ExchangeRate float64 `validate:"gte=0"`
	CurrencyCode string  `validate:"required,len=3,uppercase"`
}

// Kind reports KindCountry
func (CountryDescriptor) Kind() Kind { return KindCountry }

func (CountryDescriptor) descriptor() {}

// Validate checks the descriptor's fields
func (d CountryDescriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: country %q: %w", apperrors.ErrValidation, d.Name, err)
	}
	return nil
}

// NewCountry copies the descriptor verbatim into a Country record.
func (d CountryDescriptor) NewCountry() *Country {
	return &Country{
		Name:         d.Name,
		LastUpdated:  d.LastUpdated,
		FlagImage:    d.FlagImage,
		ExchangeRate: d.ExchangeRate,
		CurrencyCode: d.CurrencyCode,
	}
}

// TravelDescriptor carries the attributes of a new Travel. The exchange rate is not part of it:
// the store seeds it from the Country named by CountryName.
type TravelDescriptor struct {
	ID          uuid.UUID
	CountryName string `validate:"required"`
	Title       string
	Memo        string
	StartDate   time.Time
	EndDate     time.Time
	Budget      float64 `validate:"gte=0"`
	CoverImage  []byte
}

// Kind reports KindTravel
func (TravelDescriptor) Kind() Kind { return KindTravel }

func (TravelDescriptor) descriptor() {}

// Validate checks the descriptor's fields
func (d TravelDescriptor) Validate() error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("%w: travel id is required", apperrors.ErrValidation)
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: travel %s: %w", apperrors.ErrValidation, d.ID, err)
	}
	return checkPeriod(d.StartDate, d.EndDate)
}

// NewTravel builds the Travel record with its rate seeded from the resolved country.
func (d TravelDescriptor) NewTravel(country *Country) *Travel {
	return &Travel{
		ID:           d.ID,
		CountryName:  country.Name,
		Title:        d.Title,
		Memo:         d.Memo,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Budget:       d.Budget,
		CoverImage:   d.CoverImage,
		ExchangeRate: country.ExchangeRate,
	}
}

// CountryPatch updates the Country named Name. Nil fields are left unchanged.
// With OnlyIfNewer set, a patch whose LastUpdated is before the stored date is dropped whole.
type CountryPatch struct {
	Name         string `validate:"required"`
	OnlyIfNewer  bool
	LastUpdated  *time.Time
	FlagImage    []byte
	ExchangeRate *float64 `validate:"omitempty,gte=0"`
	CurrencyCode *string  `validate:"omitempty,len=3,uppercase"`
}

// Kind reports KindCountry
func (CountryPatch) Kind() Kind { return KindCountry }

func (CountryPatch) patch() {}

// Validate checks the patch's fields
func (p CountryPatch) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: country patch %q: %w", apperrors.ErrValidation, p.Name, err)
	}
	return nil
}

// ApplyTo overwrites the fields set on the patch and reports whether c changed.
func (p CountryPatch) ApplyTo(c *Country) bool {
	if p.OnlyIfNewer && p.LastUpdated != nil && p.LastUpdated.Before(c.LastUpdated) {
		return false
	}
	if p.LastUpdated != nil {
		c.LastUpdated = *p.LastUpdated
	}
	if p.FlagImage != nil {
		c.FlagImage = p.FlagImage
	}
	if p.ExchangeRate != nil {
		c.ExchangeRate = *p.ExchangeRate
	}
	if p.CurrencyCode != nil {
		c.CurrencyCode = *p.CurrencyCode
	}
	return true
}

// TravelPatch updates the Travel with the given ID. Nil fields are left unchanged.
type TravelPatch struct {
	ID           uuid.UUID
	Title        *string
	Memo         *string
	StartDate    *time.Time
	EndDate      *time.Time
	Budget       *float64 `validate:"omitempty,gte=0"`
	CoverImage   []byte
	ExchangeRate *float64 `validate:"omitempty,gte=0"`
}

// Kind reports KindTravel
func (TravelPatch) Kind() Kind { return KindTravel }

func (TravelPatch) patch() {}

// Validate checks the patch's fields. The travel period is checked again by the store
// once the patch is merged with the stored record.
func (p TravelPatch) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: travel id is required", apperrors.ErrValidation)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: travel patch %s: %w", apperrors.ErrValidation, p.ID, err)
	}
	return nil
}

// ApplyTo overwrites the fields set on the patch and re-checks the travel period.
func (p TravelPatch) ApplyTo(t *Travel) error {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Memo != nil {
		t.Memo = *p.Memo
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Budget != nil {
		t.Budget = *p.Budget
	}
	if p.CoverImage != nil {
		t.CoverImage = p.CoverImage
	}
	if p.ExchangeRate != nil {
		t.ExchangeRate = *p.ExchangeRate
	}
	return checkPeriod(t.StartDate, t.EndDate)
}

func checkPeriod(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s",
			apperrors.ErrValidation, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return nil
}
