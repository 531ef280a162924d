// Package geo estimates distances and commute times between coordinates.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for great-circle distances
const EarthRadiusMiles = 3959.0

// DefaultSpeedMPH is the average travel speed assumed by StraightLine
const DefaultSpeedMPH = 30.0

// Point is a WGS84 coordinate in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceMiles returns the haversine great-circle distance between a and b
func DistanceMiles(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// CommuteEstimator estimates travel minutes between two points.
// Implementations may call routing services; StraightLine is the offline default.
type CommuteEstimator interface {
	EstimateMinutes(from, to Point) float64
}

// StraightLine estimates commute time as great-circle distance at a constant speed
type StraightLine struct {
	SpeedMPH float64
}

// NewStraightLine returns a StraightLine estimator. Non-positive speeds use DefaultSpeedMPH.
func NewStraightLine(speedMPH float64) StraightLine {
	if speedMPH <= 0 {
		speedMPH = DefaultSpeedMPH
	}
	return StraightLine{SpeedMPH: speedMPH}
}

// EstimateMinutes implements CommuteEstimator
func (s StraightLine) EstimateMinutes(from, to Point) float64 {
	speed := s.SpeedMPH
	if speed <= 0 {
		speed = DefaultSpeedMPH
	}
	return DistanceMiles(from, to) / speed * 60
}

// AverageMinutes returns the mean estimated minutes from origin to each anchor.
// ok is false when anchors is empty.
func AverageMinutes(est CommuteEstimator, origin Point, anchors []Point) (minutes float64, ok bool) {
	if len(anchors) == 0 {
		return 0, false
	}
	var total float64
	for _, a := range anchors {
		total += est.EstimateMinutes(origin, a)
	}
	return total / float64(len(anchors)), true
}
