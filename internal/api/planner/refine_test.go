package planner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

func opt(p types.ScoredPlace) types.PlanOption {
	return newOption(p.CatalogPlace, "why "+p.Title, "")
}

func TestReplace(t *testing.T) {
	c := scoredPlaces(6)
	candidates := types.NewPlaceIndex(c)

	newPlan := func() *types.Plan {
		return &types.Plan{
			ID: uuid.New(),
			Sections: []types.PlanSection{
				{Title: "Утро", Options: []types.PlanOption{opt(c[0])}, Reserves: []types.PlanOption{opt(c[1])}},
				{Title: "Встреча"},
				{Title: "Вечер", Options: []types.PlanOption{opt(c[2]), opt(c[3])}},
			},
			Pool: []uuid.UUID{c[2].ID, uuid.New(), c[4].ID, c[5].ID},
		}
	}

	t.Run("out of range returns the input unchanged", func(t *testing.T) {
		plan := newPlan()
		before := plan.Snapshot()

		for _, idx := range [][2]int{{-1, 0}, {3, 0}, {0, 1}, {0, -1}, {1, 0}} {
			got := Replace(plan, idx[0], idx[1], candidates)
			assert.Same(t, plan, got)
			assert.Equal(t, before.Sections, got.Sections)
			assert.Equal(t, before.Pool, got.Pool)
		}
	})

	t.Run("promotes the first reserve", func(t *testing.T) {
		plan := newPlan()
		reserve := plan.Sections[0].Reserves[0]

		got := Replace(plan, 0, 0, candidates)
		require.NotSame(t, plan, got)
		require.Len(t, got.Sections[0].Options, 1)
		assert.Equal(t, reserve, got.Sections[0].Options[0])
		assert.Empty(t, got.Sections[0].Reserves)

		assert.Equal(t, c[0].ID, plan.Sections[0].Options[0].PlaceID(), "input must not change")
		assert.Len(t, plan.Sections[0].Reserves, 1)
	})

	t.Run("pulls the next unused pool id", func(t *testing.T) {
		plan := newPlan()

		got := Replace(plan, 2, 1, candidates)
		require.Len(t, got.Sections[2].Options, 2)
		assert.Equal(t, c[2].ID, got.Sections[2].Options[0].PlaceID())

		pulled := got.Sections[2].Options[1]
		assert.Equal(t, c[4].ID, pulled.PlaceID())
		assert.Equal(t, types.ConfidenceVerified, pulled.Confidence)
		assert.Equal(t, 1.0, pulled.ConfidenceScore)
		assert.Equal(t, c[4].Description, pulled.Why)
		assert.NotContains(t, got.Pool, c[4].ID)
		assert.Contains(t, plan.Pool, c[4].ID)
	})

	t.Run("exhausted pool leaves the slot empty", func(t *testing.T) {
		plan := newPlan()
		plan.Pool = []uuid.UUID{c[0].ID}

		got := Replace(plan, 2, 0, candidates)
		require.Len(t, got.Sections[2].Options, 1)
		assert.Equal(t, c[3].ID, got.Sections[2].Options[0].PlaceID())
	})

	t.Run("nil plan", func(t *testing.T) {
		assert.Nil(t, Replace(nil, 0, 0, candidates))
	})
}

func TestReplace_DropsTravelThroughRemovedStop(t *testing.T) {
	c := scoredPlaces(4)
	for i := range c {
		c[i].Location = &types.Coordinate{Lat: 43.2 + float64(i)/100, Lon: 76.9}
	}
	candidates := types.NewPlaceIndex(c)
	a, b, stopC, reserve := c[0], c[1], c[2], c[3]

	travel := func(o types.PlanOption, text string, meters float64) types.PlanOption {
		o.Stop.TravelFromPrev = text
		o.Stop.DistanceFromPrevM = &meters
		return o
	}
	enrichedPlan := func(withReserve bool) *types.Plan {
		middle := types.PlanSection{Title: "День", Options: []types.PlanOption{travel(opt(b), "8 мин · 600 м", 600)}}
		if withReserve {
			middle.Reserves = []types.PlanOption{opt(reserve)}
		}
		return &types.Plan{
			ID: uuid.New(),
			Sections: []types.PlanSection{
				{Title: "Утро", Options: []types.PlanOption{opt(a)}},
				middle,
				{Title: "Вечер", Options: []types.PlanOption{travel(opt(stopC), "12 мин · 900 м", 900)}},
			},
			Route: []types.Coordinate{*a.Location, *b.Location, *stopC.Location},
		}
	}

	t.Run("promoted reserve", func(t *testing.T) {
		plan := enrichedPlan(true)

		got := Replace(plan, 1, 0, candidates)
		require.Len(t, got.Sections[1].Options, 1)
		promoted := got.Sections[1].Options[0].Stop
		assert.Equal(t, reserve.ID, promoted.PlaceID)
		assert.Empty(t, promoted.TravelFromPrev)
		assert.Nil(t, promoted.DistanceFromPrevM)

		next := got.Sections[2].Options[0].Stop
		assert.Empty(t, next.TravelFromPrev)
		assert.Nil(t, next.DistanceFromPrevM)
		assert.Nil(t, got.Route)

		assert.Equal(t, "12 мин · 900 м", plan.Sections[2].Options[0].Stop.TravelFromPrev, "input must not change")
		assert.Len(t, plan.Route, 3)
	})

	t.Run("emptied slot", func(t *testing.T) {
		plan := enrichedPlan(false)

		got := Replace(plan, 1, 0, candidates)
		assert.Empty(t, got.Sections[1].Options)
		assert.Empty(t, got.Sections[2].Options[0].Stop.TravelFromPrev)
		assert.Nil(t, got.Sections[2].Options[0].Stop.DistanceFromPrevM)
		assert.Nil(t, got.Route)
	})
}
