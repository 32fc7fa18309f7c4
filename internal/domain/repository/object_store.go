// Package repository defines the persistence contract shared by the repositories and the store implementation.
package repository

import (
	"context"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
)

// ObjectStore is the generic persistence facade over the Country and Travel collections.
// Implementations serialize every operation that touches durable state.
type ObjectStore interface {
	// Create inserts the record described by d. A TravelDescriptor whose country does not
	// exist fails with apperrors.ErrNotFound.
	Create(ctx context.Context, d entity.Descriptor) (entity.Entity, error)

	// FetchAll returns every record of kind, Countries ordered by name and Travels by start date.
	// It never fails; an underlying error yields an empty result.
	FetchAll(ctx context.Context, kind entity.Kind) []entity.Entity

	// FetchWhere returns the records of kind matched by pred, in FetchAll order.
	FetchWhere(ctx context.Context, kind entity.Kind, pred entity.Predicate) ([]entity.Entity, error)

	// Update overwrites the fields set on p in the record it names.
	Update(ctx context.Context, p entity.Patch) (entity.Entity, error)

	// Delete removes e and reports whether the removal was committed.
	Delete(ctx context.Context, e entity.Entity) bool

	// Count returns how many records of kind match pred; a nil pred counts all.
	Count(ctx context.Context, kind entity.Kind, pred entity.Predicate) (int, error)
}

// TravelCreationHook runs after a Travel has been committed, with the Country it was seeded from.
// It must not block: the Travel is handed back to the caller once the hook returns.
type TravelCreationHook interface {
	TravelCreated(ctx context.Context, country entity.Country, travel entity.Travel)
}
