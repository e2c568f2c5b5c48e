package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

func withCategories(categories ...string) []types.ScoredPlace {
	places := scoredPlaces(len(categories))
	for i, c := range categories {
		places[i].Category = c
	}
	return places
}

func TestBuildFallback(t *testing.T) {
	t.Run("few candidates give one flat section", func(t *testing.T) {
		c := withCategories("cafe", "park", "museum")

		sections := BuildFallback(c)
		require.Len(t, sections, 1)
		assert.Equal(t, "Рекомендации", sections[0].Title)
		assert.Equal(t, "✨", sections[0].Emoji)
		require.Len(t, sections[0].Options, 3)
		assert.Empty(t, sections[0].Reserves)
		assert.Equal(t, c[0].ID, sections[0].Options[0].PlaceID())
	})

	t.Run("groups by category with overflow to reserves", func(t *testing.T) {
		c := withCategories("cafe", "park", "coffee", "bakery", "cafe", "cafe", "unknown-kind")

		sections := BuildFallback(c)
		require.Len(t, sections, 3)

		coffee := sections[0]
		assert.Equal(t, "Кофе и завтрак", coffee.Title)
		assert.Equal(t, "☕", coffee.Emoji)
		require.Len(t, coffee.Options, 2)
		require.Len(t, coffee.Reserves, 2)
		assert.Equal(t, c[0].ID, coffee.Options[0].PlaceID())
		assert.Equal(t, c[2].ID, coffee.Options[1].PlaceID())
		assert.Equal(t, c[3].ID, coffee.Reserves[0].PlaceID())
		assert.Equal(t, c[4].ID, coffee.Reserves[1].PlaceID())

		assert.Equal(t, "Прогулка на природе", sections[1].Title)
		assert.Equal(t, "Ещё интересное", sections[2].Title)
	})

	t.Run("stops at six sections", func(t *testing.T) {
		c := withCategories("cafe", "restaurant", "museum", "monument", "park", "viewpoint", "bar", "market")

		sections := BuildFallback(c)
		require.Len(t, sections, 6)
		for _, s := range sections {
			assert.NotEqual(t, "Вечер", s.Title)
			assert.NotEqual(t, "Покупки", s.Title)
		}
	})

	t.Run("options are verified catalog projections", func(t *testing.T) {
		c := withCategories("cafe", "cafe", "cafe", "cafe")
		c[0].PriceTier = 0
		d := 0.8
		c[0].DistanceKm = &d
		c[0].Rating = 4.7

		opt := BuildFallback(c)[0].Options[0]
		assert.Equal(t, types.ConfidenceVerified, opt.Confidence)
		assert.Equal(t, 1.0, opt.ConfidenceScore)
		assert.Equal(t, "Бесплатно", opt.Budget)
		assert.Equal(t, "Описание места 1. Рейтинг 4.7, 0.8 км от вас", opt.Why)
	})

	t.Run("never empty given a candidate", func(t *testing.T) {
		for n := 1; n <= 12; n++ {
			assert.NotEmpty(t, BuildFallback(scoredPlaces(n)), "n=%d", n)
		}
		assert.Empty(t, BuildFallback(nil))
	})
}

func TestBudgetHint(t *testing.T) {
	assert.Equal(t, "Бесплатно", budgetHint(0))
	assert.Equal(t, "$", budgetHint(1))
	assert.Equal(t, "$$$", budgetHint(3))
	assert.Equal(t, "$$$$$", budgetHint(5))
	assert.Equal(t, "$$$$$", budgetHint(9))
}
