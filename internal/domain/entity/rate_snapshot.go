package entity

import (
	"time"
)

// RateSnapshot is one answer from the rate provider: every quoted currency against Base, as of AsOf.
type RateSnapshot struct {
	Base  string             `json:"base"`
	AsOf  time.Time          `json:"as_of"`
	Rates map[string]float64 `json:"rates"`
}

// Quote returns the rate quoted for currencyCode and whether the snapshot quotes it at all.
func (s *RateSnapshot) Quote(currencyCode string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	rate, ok := s.Rates[currencyCode]
	return rate, ok
}
