package entity

import (
	"time"
)

// Country is a destination with its cached exchange rate against the base currency.
// Name is the natural key; at most one Country exists per name.
type Country struct {
	Name         string    `json:"name"`
	LastUpdated  time.Time `json:"last_updated"`
	FlagImage    []byte    `json:"flag_image"`
	ExchangeRate float64   `json:"exchange_rate"`
	CurrencyCode string    `json:"currency_code"`
}

// Kind reports KindCountry
func (*Country) Kind() Kind { return KindCountry }

func (*Country) entity() {}

// CountryNamed matches the Country whose name equals name.
func CountryNamed(name string) Predicate {
	return func(e Entity) bool {
		c, ok := e.(*Country)
		return ok && c.Name == name
	}
}
