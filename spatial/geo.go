package spatial

import (
	"errors"
	"math"
)

// Earth's radius in km
const earthRadiusKm = 6371

// ErrInvalidCoordinate is returned for an out-of-range latitude or
// longitude. Zero is a valid value for both.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// CheckCoordinate validates lat in [-90,90] and lng in [-180,180].
func CheckCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return ErrInvalidCoordinate
	}
	if lat < -90 || lat > 90 {
		return ErrInvalidCoordinate
	}
	if lng < -180 || lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Haversine calculates the great-circle distance between two points in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
