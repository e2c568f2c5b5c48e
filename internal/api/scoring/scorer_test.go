package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

func place(title, category string, tags ...string) types.CatalogPlace {
	return types.CatalogPlace{ID: uuid.New(), Title: title, Category: category, Tags: tags}
}

func TestScore_CoffeeIntentRanksCafeFirst(t *testing.T) {
	cafe := place("Зерно", "cafe", "coffee")
	park := place("Центральный парк", "park", "park")

	got := Score([]types.CatalogPlace{park, cafe}, []string{"coffee"}, "хочу кофе", nil)
	require.Len(t, got, 2)

	assert.Equal(t, cafe.ID, got[0].ID)
	// interest tag 3 + interest category 2 + keyword tag 4 + keyword category 3
	assert.Equal(t, 12.0, got[0].Score)
	assert.Equal(t, 0.0, got[1].Score)
	assert.Nil(t, got[0].DistanceKm)
}

func TestScore_TitleWords(t *testing.T) {
	p := place("Кок-Тобе", "viewpoint")

	got := Score([]types.CatalogPlace{p}, nil, "на Кок-Тобе", nil)
	require.Len(t, got, 1)
	// "на" is too short, "кок" and "тобе" both hit the title
	assert.Equal(t, 10.0, got[0].Score)
}

func TestScore_RatingBands(t *testing.T) {
	tests := []struct {
		rating float64
		want   float64
	}{
		{4.8, 3},
		{4.7, 3},
		{4.6, 1},
		{4.5, 1},
		{4.4, 0},
		{0, 0},
	}
	for _, tt := range tests {
		p := place("X", "")
		p.Rating = tt.rating
		got := Score([]types.CatalogPlace{p}, nil, "", nil)
		assert.Equal(t, tt.want, got[0].Score, "rating %v", tt.rating)
	}
}

func TestScore_DistanceBonus(t *testing.T) {
	user := &types.Coordinate{Lat: 43.238, Lon: 76.945}
	at := func(dLat float64) types.CatalogPlace {
		p := place("P", "")
		p.Location = &types.Coordinate{Lat: user.Lat + dLat, Lon: user.Lon}
		return p
	}
	here, two, four, far := at(0), at(0.018), at(0.04), at(0.1)

	got := Score([]types.CatalogPlace{far, four, two, here}, nil, "", user)
	require.Len(t, got, 4)

	assert.Equal(t, here.ID, got[0].ID)
	assert.Equal(t, 5.0, got[0].Score)
	assert.Equal(t, two.ID, got[1].ID)
	assert.Equal(t, 3.0, got[1].Score)
	assert.Equal(t, four.ID, got[2].ID)
	assert.Equal(t, 1.0, got[2].Score)
	assert.Equal(t, far.ID, got[3].ID)
	assert.Equal(t, 0.0, got[3].Score)
	require.NotNil(t, got[3].DistanceKm)
	assert.InDelta(t, 11.1, *got[3].DistanceKm, 0.2)
}

func TestScore_TiesOrderedByDistanceThenInput(t *testing.T) {
	user := &types.Coordinate{Lat: 43.0, Lon: 76.0}
	unlocated := place("A", "")
	nearer := place("B", "")
	nearer.Location = &types.Coordinate{Lat: 43.1, Lon: 76.0}
	farther := place("C", "")
	farther.Location = &types.Coordinate{Lat: 43.2, Lon: 76.0}
	alsoUnlocated := place("D", "")

	got := Score([]types.CatalogPlace{unlocated, farther, alsoUnlocated, nearer}, nil, "", user)
	require.Len(t, got, 4)

	ids := []uuid.UUID{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []uuid.UUID{nearer.ID, farther.ID, unlocated.ID, alsoUnlocated.ID}, ids)
}

func TestScore_UnknownInterestAddsNothing(t *testing.T) {
	p := place("Музей", "museum", "museum", "history")

	got := Score([]types.CatalogPlace{p}, []string{"astrology"}, "", nil)
	assert.Equal(t, 0.0, got[0].Score)
}

func TestScore_Deterministic(t *testing.T) {
	catalog := []types.CatalogPlace{
		place("Зерно", "cafe", "coffee"),
		place("Арбат", "street", "shopping", "walk"),
		place("Парк Горького", "park", "park", "nature"),
		place("Музей", "museum", "museum"),
	}
	first := Score(catalog, []string{"nature", "coffee"}, "прогулка в парке и кофе", nil)
	second := Score(catalog, []string{"nature", "coffee"}, "прогулка в парке и кофе", nil)
	assert.Equal(t, first, second)
}

func TestDistance(t *testing.T) {
	a := types.Coordinate{Lat: 0, Lon: 0}
	b := types.Coordinate{Lat: 1, Lon: 0}
	assert.InDelta(t, 111.19, Distance(a, b), 0.1)
	assert.Equal(t, 0.0, Distance(a, a))
}
