package types

// RouteLeg is the travel between two consecutive waypoints.
type RouteLeg struct {
	DurationSec float64 `json:"duration_sec"`
	DistanceM   float64 `json:"distance_m"`
}

// Route is a routing service answer for an ordered list of waypoints.
type Route struct {
	Legs     []RouteLeg   `json:"legs"`
	Geometry []Coordinate `json:"geometry,omitempty"`
}
