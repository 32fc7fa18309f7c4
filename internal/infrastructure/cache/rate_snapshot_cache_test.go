package cache

import (
	"testing"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestRateSnapshotCache(t *testing.T) {
	clock := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	cache := NewRateSnapshotCache(time.Hour)
	cache.now = func() time.Time { return clock }

	assert.Equal(t, 0, cache.Size())

	day := clock
	snap := &entity.RateSnapshot{
		Base:  "KRW",
		AsOf:  day,
		Rates: map[string]float64{"USD": 0.00074, "JPY": 0.11},
	}

	cache.Put(snap, day)
	assert.Equal(t, 1, cache.Size())

	got := cache.Get("KRW", day)
	if assert.NotNil(t, got) {
		assert.Equal(t, 0.11, got.Rates["JPY"])
	}

	t.Run("Other base or day misses", func(t *testing.T) {
		assert.Nil(t, cache.Get("EUR", day))
		assert.Nil(t, cache.Get("KRW", day.AddDate(0, 0, 1)))
	})

	t.Run("Expiry", func(t *testing.T) {
		clock = clock.Add(2 * time.Hour)
		assert.Nil(t, cache.Get("KRW", day))
		assert.Equal(t, 1, cache.CleanExpired())
		assert.Equal(t, 0, cache.Size())
	})

	t.Run("Put after expiry serves again", func(t *testing.T) {
		cache.Put(snap, day)
		assert.Equal(t, 1, cache.Size())
		assert.Same(t, snap, cache.Get("KRW", day))
		assert.Equal(t, 0, cache.CleanExpired())
	})
}

func TestNewRateSnapshotCacheDefaultTTL(t *testing.T) {
	cache := NewRateSnapshotCache(0)
	assert.Equal(t, 24*time.Hour, cache.expiration)
}
