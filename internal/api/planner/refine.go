package planner

import (
	"slices"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

// Replace swaps out one shown option without any network call. The first
// reserve of the section takes the slot; without one, the next unused pool id
// found in candidates is projected into a verified option. An exhausted pool
// leaves the slot empty. Out-of-range indices return plan itself.
//
// The input plan is never modified. The replaced slot and the next
// geolocated stop lose their travel annotation, and the route is dropped,
// since both were measured through the removed place.
func Replace(plan *types.Plan, sectionIndex, optionIndex int, candidates types.PlaceIndex) *types.Plan {
	if plan == nil {
		return nil
	}
	out := plan.Snapshot()
	if sectionIndex < 0 || sectionIndex >= len(out.Sections) {
		return plan
	}
	section := &out.Sections[sectionIndex]
	if optionIndex < 0 || optionIndex >= len(section.Options) {
		return plan
	}

	section.Options = slices.Delete(section.Options, optionIndex, optionIndex+1)

	if len(section.Reserves) > 0 {
		promoted := section.Reserves[0]
		section.Reserves = slices.Delete(section.Reserves, 0, 1)
		section.Options = slices.Insert(section.Options, optionIndex, promoted)
		clearTravel(out, sectionIndex, optionIndex, true)
		return out
	}

	used := out.UsedIDs()
	for i, id := range out.Pool {
		if _, taken := used[id]; taken {
			continue
		}
		place, ok := candidates.Get(id)
		if !ok {
			continue
		}
		section.Options = slices.Insert(section.Options, optionIndex, newOption(place, "", ""))
		out.Pool = slices.Delete(out.Pool, i, i+1)
		clearTravel(out, sectionIndex, optionIndex, true)
		return out
	}
	clearTravel(out, sectionIndex, optionIndex, false)
	return out
}

// clearTravel drops the legs touching the slot at (si, oi): the slot's own
// when inserted, and the one into the next geolocated shown stop.
func clearTravel(p *types.Plan, si, oi int, inserted bool) {
	p.Route = nil
	start := oi
	if inserted {
		clearStopTravel(&p.Sections[si].Options[oi].Stop)
		start = oi + 1
	}
	for s := si; s < len(p.Sections); s++ {
		opts := p.Sections[s].Options
		from := 0
		if s == si {
			from = start
		}
		for o := from; o < len(opts); o++ {
			if opts[o].Stop.Location != nil {
				clearStopTravel(&opts[o].Stop)
				return
			}
		}
	}
}

func clearStopTravel(stop *types.Stop) {
	stop.TravelFromPrev = ""
	stop.DistanceFromPrevM = nil
}
