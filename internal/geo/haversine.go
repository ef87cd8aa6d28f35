// Package geo holds the great-circle math used to approximate distances between places.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// HaversineKm returns the great-circle distance between a and b in kilometres,
// rounded to two decimals. Inputs are not validated, see Validate.
func HaversineKm(a, b models.Coordinates) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return Round2(EarthRadiusKm * c)
}

// Round2 rounds a distance to the two decimals shown to users.
func Round2(value float64) float64 {
	const scale = 100

	return math.Round(value*scale) / scale
}

// Validate checks that c lies within latitude [-90, 90] and longitude [-180, 180].
func Validate(c models.Coordinates) error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, c.Longitude)
	}

	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
