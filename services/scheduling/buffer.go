package scheduling

import (
	"math"
	"strings"

	"notaryops/models"
)

// BufferTimes is the non-bookable time reserved around one appointment.
type BufferTimes struct {
	PrepMinutes    int
	TravelMinutes  int
	CleanupMinutes int
}

// Lead returns the buffer minutes before the appointment starts.
func (b BufferTimes) Lead() int {
	return b.PrepMinutes + b.TravelMinutes
}

// Trail returns the buffer minutes after the appointment ends.
func (b BufferTimes) Trail() int {
	return b.CleanupMinutes
}

// DistanceEstimator computes the distance between two stops. It stands in
// for a proper distance service and is swappable without touching callers.
type DistanceEstimator interface {
	DistanceKm(a, b models.Location) float64
}

// HaversineEstimator estimates great-circle distance from coordinates.
type HaversineEstimator struct{}

func (HaversineEstimator) DistanceKm(a, b models.Location) float64 {
	const R = 6371
	dLat := (b.Lat - a.Lat) * (math.Pi / 180)
	dLon := (b.Lng - a.Lng) * (math.Pi / 180)
	lat1Rad := a.Lat * (math.Pi / 180)
	lat2Rad := b.Lat * (math.Pi / 180)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}

// Travel time tiers in minutes.
const (
	travelSameCity      = 15
	travelDifferentCity = 30
	travelCrossTown     = 45
	travelDefault       = 20

	// Distance thresholds (km) separating the middle and highest tiers.
	midDistanceKm = 15
	farDistanceKm = 30
)

var prepMinutesByService = map[string]int{
	"essential":    10,
	"standard":     15,
	"loan_signing": 30,
	"specialty":    20,
}

var cleanupMinutesByService = map[string]int{
	"essential":    5,
	"standard":     10,
	"loan_signing": 15,
	"specialty":    10,
}

const (
	prepDefault    = 15
	cleanupDefault = 10
)

// BufferCalculator derives prep, travel and cleanup minutes from the
// service kind and the relative locations of consecutive stops.
type BufferCalculator struct {
	Distance DistanceEstimator
}

// NewBufferCalculator returns a calculator backed by the haversine estimator.
func NewBufferCalculator() *BufferCalculator {
	return &BufferCalculator{Distance: HaversineEstimator{}}
}

// Compute looks up prep and cleanup minutes for the service kind, falling
// back to defaults for unrecognized kinds, and estimates travel time from
// the current stop to the next. Either location may be nil.
func (bc *BufferCalculator) Compute(serviceType string, current, next *models.Location) BufferTimes {
	key := strings.ToLower(serviceType)
	prep, ok := prepMinutesByService[key]
	if !ok {
		prep = prepDefault
	}
	cleanup, ok := cleanupMinutesByService[key]
	if !ok {
		cleanup = cleanupDefault
	}

	travel := travelDefault
	if current != nil && next != nil {
		travel = bc.TravelMinutes(*current, *next)
	}

	return BufferTimes{PrepMinutes: prep, TravelMinutes: travel, CleanupMinutes: cleanup}
}

// TravelMinutes estimates the travel time between two stops from a locality
// heuristic: same city is the lowest tier, then distance decides.
func (bc *BufferCalculator) TravelMinutes(current, next models.Location) int {
	if sameCity(current.Address, next.Address) {
		return travelSameCity
	}
	distanceKm := bc.Distance.DistanceKm(current, next)
	switch {
	case distanceKm > farDistanceKm:
		return travelCrossTown
	case distanceKm > midDistanceKm:
		return travelDifferentCity
	default:
		return travelSameCity
	}
}

// sameCity compares the city component of two free-text addresses. Both
// addresses need a parseable city for a match.
func sameCity(a, b string) bool {
	cityA := extractCity(a)
	cityB := extractCity(b)
	return cityA != "" && cityA == cityB
}

func extractCity(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[len(parts)-2]))
}
