package types

import "github.com/google/uuid"

// DefaultSafetyScore is used when the catalog row carries no safety score.
const DefaultSafetyScore = 90

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CatalogPlace is a verified place as stored in the catalog. The planner
// never mutates it.
type CatalogPlace struct {
	ID            uuid.UUID   `json:"id"`
	CityID        uuid.UUID   `json:"city_id"`
	Title         string      `json:"title"`
	Category      string      `json:"category"`
	Description   string      `json:"description"`
	Tags          []string    `json:"tags,omitempty"`
	Rating        float64     `json:"rating,omitempty"` // 0 when unrated
	SafetyScore   int         `json:"safety_score"`
	PriceTier     int         `json:"price_tier"` // 0 (free) .. 5
	Location      *Coordinate `json:"location,omitempty"`
	Address       string      `json:"address,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Website       string      `json:"website,omitempty"`
	OpeningHours  string      `json:"opening_hours,omitempty"`
	ReviewSummary string      `json:"review_summary,omitempty"`
	Verified      bool        `json:"verified"`
}

// ScoredPlace is a catalog place ranked against one request.
type ScoredPlace struct {
	CatalogPlace
	Score      float64  `json:"score"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// PlaceIndex gives id lookups over the places scored for a request. It is the
// candidate pool the caller threads into refinement.
type PlaceIndex map[uuid.UUID]CatalogPlace

func NewPlaceIndex(places []ScoredPlace) PlaceIndex {
	idx := make(PlaceIndex, len(places))
	for _, p := range places {
		idx[p.ID] = p.CatalogPlace
	}
	return idx
}

func (idx PlaceIndex) Get(id uuid.UUID) (CatalogPlace, bool) {
	p, ok := idx[id]
	return p, ok
}
