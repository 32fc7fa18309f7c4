package service

import (
	"context"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
)

// RateFetcher retrieves a rate snapshot from the external provider.
// A call is a single attempt; retry policy belongs to the caller.
type RateFetcher interface {
	// FetchRates returns the latest snapshot quoting currencyCode.
	// Failures wrap apperrors.ErrNetwork or apperrors.ErrDecode.
	FetchRates(ctx context.Context, currencyCode string) (*entity.RateSnapshot, error)
}
