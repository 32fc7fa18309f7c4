package service

import (
	"context"
	"testing"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTravelRepository(t *testing.T) (*TravelRepository, *CountryRepository) {
	t.Helper()
	store := newTestStore(t)
	travels := NewTravelRepository(store, quietLogger())
	travels.now = func() time.Time { return testNow }
	return travels, NewCountryRepository(store, quietLogger())
}

func TestCreateTravel(t *testing.T) {
	travels, countries := newTravelRepository(t)
	ctx := context.Background()

	_, err := countries.CreateCountry(ctx, "USA", testNow, nil, 1300, "USD")
	require.NoError(t, err)

	t.Run("Defaults", func(t *testing.T) {
		travel, err := travels.CreateTravel(ctx, "USA")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, travel.ID)
		assert.Equal(t, "USA", travel.CountryName)
		assert.Equal(t, "USA", travel.Title)
		assert.Empty(t, travel.Memo)
		assert.True(t, testNow.Equal(travel.StartDate))
		assert.True(t, testNow.Equal(travel.EndDate))
		assert.Zero(t, travel.Budget)
		assert.Empty(t, travel.CoverImage)
		assert.Equal(t, 1300.0, travel.ExchangeRate)
		assert.Len(t, travels.Travels(), 1)
	})

	t.Run("Unknown country", func(t *testing.T) {
		_, err := travels.CreateTravel(ctx, "Atlantis")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Len(t, travels.Travels(), 1)
	})
}

func TestFetchTravels(t *testing.T) {
	travels, countries := newTravelRepository(t)
	ctx := context.Background()

	_, err := countries.CreateCountry(ctx, "USA", testNow, nil, 1300, "USD")
	require.NoError(t, err)

	first, err := travels.CreateTravel(ctx, "USA")
	require.NoError(t, err)
	second, err := travels.CreateTravel(ctx, "USA")
	require.NoError(t, err)

	earlier := testNow.AddDate(0, -1, 0)
	_, err = travels.UpdateTravel(ctx, second.ID, TravelUpdate{StartDate: &earlier})
	require.NoError(t, err)

	fetched := travels.FetchTravels(ctx)
	require.Len(t, fetched, 2)
	assert.Equal(t, second.ID, fetched[0].ID)
	assert.Equal(t, first.ID, fetched[1].ID)
	assert.Equal(t, fetched, travels.Travels())
}

func TestTravelCacheStaysOrderedByStartDate(t *testing.T) {
	travels, countries := newTravelRepository(t)
	ctx := context.Background()

	_, err := countries.CreateCountry(ctx, "USA", testNow, nil, 1300, "USD")
	require.NoError(t, err)

	first, err := travels.CreateTravel(ctx, "USA")
	require.NoError(t, err)

	travels.now = func() time.Time { return testNow.AddDate(0, 0, -3) }
	earlier, err := travels.CreateTravel(ctx, "USA")
	require.NoError(t, err)

	cached := travels.Travels()
	require.Len(t, cached, 2)
	assert.Equal(t, earlier.ID, cached[0].ID)
	assert.Equal(t, first.ID, cached[1].ID)

	t.Run("Moving a start date reorders the cache", func(t *testing.T) {
		later := testNow.AddDate(0, 0, 10)
		_, err := travels.UpdateTravel(ctx, earlier.ID, TravelUpdate{StartDate: &later, EndDate: &later})
		require.NoError(t, err)

		cached := travels.Travels()
		require.Len(t, cached, 2)
		assert.Equal(t, first.ID, cached[0].ID)
		assert.Equal(t, earlier.ID, cached[1].ID)
		fetched := travels.FetchTravels(ctx)
		require.Len(t, fetched, 2)
		assert.Equal(t, cached[0].ID, fetched[0].ID)
		assert.Equal(t, cached[1].ID, fetched[1].ID)
	})
}

func TestUpdateTravel(t *testing.T) {
	travels, countries := newTravelRepository(t)
	ctx := context.Background()

	_, err := countries.CreateCountry(ctx, "USA", testNow, nil, 1300, "USD")
	require.NoError(t, err)
	travel, err := travels.CreateTravel(ctx, "USA")
	require.NoError(t, err)

	t.Run("Only set fields change", func(t *testing.T) {
		title := "Road trip"
		budget := 2500.0
		updated, err := travels.UpdateTravel(ctx, travel.ID, TravelUpdate{
			Title:  &title,
			Budget: &budget,
		})
		require.NoError(t, err)

		assert.Equal(t, "Road trip", updated.Title)
		assert.Equal(t, 2500.0, updated.Budget)
		assert.Equal(t, 1300.0, updated.ExchangeRate)
		assert.True(t, testNow.Equal(updated.StartDate))

		cached := travels.Travels()
		require.Len(t, cached, 1)
		assert.Equal(t, "Road trip", cached[0].Title)
	})

	t.Run("Explicit exchange rate", func(t *testing.T) {
		rate := 1345.0
		updated, err := travels.UpdateTravel(ctx, travel.ID, TravelUpdate{ExchangeRate: &rate})
		require.NoError(t, err)
		assert.Equal(t, 1345.0, updated.ExchangeRate)
		assert.Equal(t, "Road trip", updated.Title)
	})

	t.Run("End before start", func(t *testing.T) {
		end := testNow.AddDate(0, 0, -2)
		_, err := travels.UpdateTravel(ctx, travel.ID, TravelUpdate{EndDate: &end})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		found, err := travels.FindTravel(ctx, travel.ID)
		require.NoError(t, err)
		assert.True(t, testNow.Equal(found.EndDate))
	})

	t.Run("Unknown id", func(t *testing.T) {
		memo := "lost"
		_, err := travels.UpdateTravel(ctx, uuid.New(), TravelUpdate{Memo: &memo})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDeleteTravel(t *testing.T) {
	travels, countries := newTravelRepository(t)
	ctx := context.Background()

	_, err := countries.CreateCountry(ctx, "USA", testNow, nil, 1300, "USD")
	require.NoError(t, err)
	travel, err := travels.CreateTravel(ctx, "USA")
	require.NoError(t, err)

	assert.False(t, travels.DeleteTravel(ctx, uuid.New()))
	assert.Len(t, travels.Travels(), 1)

	assert.True(t, travels.DeleteTravel(ctx, travel.ID))
	assert.Empty(t, travels.Travels())
	assert.Empty(t, travels.FetchTravels(ctx))

	_, err = travels.FindTravel(ctx, travel.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteTravelKeepsCacheWhenStoreRefuses(t *testing.T) {
	store := new(mocks.MockObjectStore)
	repo := NewTravelRepository(store, quietLogger())
	ctx := context.Background()

	travel := &entity.Travel{ID: uuid.New(), CountryName: "USA"}
	store.On("Create", mock.Anything, mock.AnythingOfType("entity.TravelDescriptor")).Return(travel, nil)
	store.On("Delete", mock.Anything, mock.Anything).Return(false)

	_, err := repo.CreateTravel(ctx, "USA")
	require.NoError(t, err)

	assert.False(t, repo.DeleteTravel(ctx, travel.ID))
	assert.Len(t, repo.Travels(), 1)
	store.AssertExpectations(t)
}
