package types

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Confidence summarizes how trustworthy an option's justification is.
type Confidence string

const (
	ConfidenceVerified    Confidence = "verified"
	ConfidenceAIGenerated Confidence = "ai_generated"
	ConfidenceLow         Confidence = "low_confidence"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceVerified:
		return 2
	case ConfidenceAIGenerated:
		return 1
	default:
		return 0
	}
}

// Lower returns the less trustworthy of c and other.
func (c Confidence) Lower(other Confidence) Confidence {
	if other.rank() < c.rank() {
		return other
	}
	return c
}

type PlanMode string

const (
	PlanModeSearch PlanMode = "search"
	PlanModeDay    PlanMode = "day"
)

type PlanSource string

const (
	PlanSourceLLM      PlanSource = "llm"
	PlanSourceFallback PlanSource = "fallback"
)

// Stop is the presentation form of a catalog place inside a plan.
type Stop struct {
	PlaceID      uuid.UUID   `json:"place_id"`
	Title        string      `json:"title"`
	Category     string      `json:"category"`
	Description  string      `json:"description,omitempty"`
	Address      string      `json:"address,omitempty"`
	OpeningHours string      `json:"opening_hours,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Rating       float64     `json:"rating,omitempty"`
	PriceTier    int         `json:"price_tier"`
	Location     *Coordinate `json:"location,omitempty"`

	// Set by the travel-time enricher; absent is a valid state.
	TravelFromPrev    string   `json:"travel_from_prev,omitempty"`
	DistanceFromPrevM *float64 `json:"distance_from_prev_m,omitempty"`
}

func NewStop(p CatalogPlace) Stop {
	var loc *Coordinate
	if p.Location != nil {
		c := *p.Location
		loc = &c
	}
	return Stop{
		PlaceID:      p.ID,
		Title:        p.Title,
		Category:     p.Category,
		Description:  p.Description,
		Address:      p.Address,
		OpeningHours: p.OpeningHours,
		Phone:        p.Phone,
		Rating:       p.Rating,
		PriceTier:    p.PriceTier,
		Location:     loc,
	}
}

type PlanOption struct {
	Stop            Stop       `json:"stop"`
	Why             string     `json:"why"`
	Budget          string     `json:"budget,omitempty"`
	ConfidenceScore float64    `json:"confidence_score"`
	Confidence      Confidence `json:"confidence"`
	// Substituted is set when Why was replaced with the catalog description.
	Substituted bool `json:"substituted,omitempty"`
}

func (o PlanOption) PlaceID() uuid.UUID { return o.Stop.PlaceID }

// Demote lowers the option's confidence to at most score and cls.
func (o *PlanOption) Demote(score float64, cls Confidence) {
	if score < o.ConfidenceScore {
		o.ConfidenceScore = score
	}
	o.Confidence = o.Confidence.Lower(cls)
}

type PlanSection struct {
	Title     string       `json:"title"`
	Emoji     string       `json:"emoji,omitempty"`
	TimeRange string       `json:"time_range,omitempty"`
	Options   []PlanOption `json:"options"`
	Reserves  []PlanOption `json:"-"`
}

// IsMarker reports a fixed external commitment: no options and no reserves.
func (s PlanSection) IsMarker() bool {
	return len(s.Options) == 0 && len(s.Reserves) == 0
}

// Plan is the unit returned to callers. The travel-time enricher mutates it
// from another goroutine, so readers that may race with it use Snapshot.
type Plan struct {
	mu sync.RWMutex

	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	City      string        `json:"city"`
	Mode      PlanMode      `json:"mode"`
	Source    PlanSource    `json:"source"`
	Sections  []PlanSection `json:"sections"`
	Pool      []uuid.UUID   `json:"-"`
	Route     []Coordinate  `json:"route,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Options calls fn for every shown option and reserve, in plan order.
func (p *Plan) Options(fn func(opt *PlanOption)) {
	for si := range p.Sections {
		for oi := range p.Sections[si].Options {
			fn(&p.Sections[si].Options[oi])
		}
		for ri := range p.Sections[si].Reserves {
			fn(&p.Sections[si].Reserves[ri])
		}
	}
}

// UsedIDs returns the set of place ids referenced by options and reserves.
func (p *Plan) UsedIDs() map[uuid.UUID]struct{} {
	used := make(map[uuid.UUID]struct{})
	p.Options(func(opt *PlanOption) {
		used[opt.PlaceID()] = struct{}{}
	})
	return used
}

// Lock and Unlock guard in-place mutation by concurrent writers.
func (p *Plan) Lock()   { p.mu.Lock() }
func (p *Plan) Unlock() { p.mu.Unlock() }

// Snapshot returns a deep copy taken under the read lock.
func (p *Plan) Snapshot() *Plan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clone()
}

func (p *Plan) clone() *Plan {
	out := &Plan{
		ID:        p.ID,
		Title:     p.Title,
		City:      p.City,
		Mode:      p.Mode,
		Source:    p.Source,
		CreatedAt: p.CreatedAt,
	}
	if p.Sections != nil {
		out.Sections = make([]PlanSection, len(p.Sections))
		for i, s := range p.Sections {
			out.Sections[i] = PlanSection{
				Title:     s.Title,
				Emoji:     s.Emoji,
				TimeRange: s.TimeRange,
				Options:   cloneOptions(s.Options),
				Reserves:  cloneOptions(s.Reserves),
			}
		}
	}
	if p.Pool != nil {
		out.Pool = append([]uuid.UUID{}, p.Pool...)
	}
	if p.Route != nil {
		out.Route = append([]Coordinate{}, p.Route...)
	}
	return out
}

func cloneOptions(in []PlanOption) []PlanOption {
	if in == nil {
		return nil
	}
	out := make([]PlanOption, len(in))
	for i, o := range in {
		out[i] = o
		if o.Stop.Location != nil {
			loc := *o.Stop.Location
			out[i].Stop.Location = &loc
		}
		if o.Stop.DistanceFromPrevM != nil {
			d := *o.Stop.DistanceFromPrevM
			out[i].Stop.DistanceFromPrevM = &d
		}
	}
	return out
}
