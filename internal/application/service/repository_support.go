package service

import (
	"fmt"
	"sort"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
)

// expect narrows an entity returned by the store to the concrete type a repository asked for.
func expect[T entity.Entity](e entity.Entity, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: store returned %T, want %T", apperrors.ErrPersistence, e, zero)
	}
	return typed, nil
}

func collect[T entity.Entity](records []entity.Entity) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if typed, ok := r.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// sortCountries orders countries by name, the order the store returns them in
func sortCountries(countries []*entity.Country) {
	sort.SliceStable(countries, func(i, j int) bool {
		return countries[i].Name < countries[j].Name
	})
}

// sortTravels orders travels by start date, then id, the order the store returns them in
func sortTravels(travels []*entity.Travel) {
	sort.SliceStable(travels, func(i, j int) bool {
		a, b := travels[i], travels[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID.String() < b.ID.String()
	})
}
