// Package geo provides great-circle distance and travel-speed math for
// checkpoint transition analysis.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// coordEpsilon absorbs float noise when testing for the (0,0) sentinel.
const coordEpsilon = 1e-9

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// IsUnknown reports whether the point is the (0,0) sentinel scanners send
// when they have no position fix.
func (p Point) IsUnknown() bool {
	return math.Abs(p.Lat) < coordEpsilon && math.Abs(p.Lon) < coordEpsilon
}

// DistanceKm returns the haversine great-circle distance between two points
// in kilometers.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// SpeedKmh returns the implied travel speed for a distance covered in the
// given number of hours. A zero or negative duration with zero distance is a
// co-located rescan and yields zero. A zero or negative duration with
// positive distance is physically impossible and yields +Inf so callers
// treat it as maximal.
func SpeedKmh(distanceKm, hours float64) float64 {
	if hours <= 0 {
		if distanceKm <= 0 {
			return 0
		}
		return math.Inf(1)
	}
	return distanceKm / hours
}
