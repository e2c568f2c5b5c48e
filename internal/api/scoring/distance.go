package scoring

import (
	"math"

	"github.com/FACorreiaa/go-poi-planner/internal/types"
)

// Distance calculates the distance between two coordinates using the Haversine formula
// Returns distance in kilometers
func Distance(a, b types.Coordinate) float64 {
	const R = 6371 // Earth's radius in kilometers

	lat1Rad := a.Lat * math.Pi / 180
	lon1Rad := a.Lon * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	lon2Rad := b.Lon * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return R * c
}
