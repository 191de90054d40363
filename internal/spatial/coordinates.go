package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// ValidCoordinate reports whether lat/lon (degrees) form a valid position:
// finite, latitude within [-90, 90] and longitude within [-180, 180].
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}
