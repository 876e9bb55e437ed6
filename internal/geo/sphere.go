// Package geo provides spherical-earth geodesic primitives used by the swath
// and coverage geometry.
package geo

import (
	"math"
)

const (
	// EarthRadiusKm is the earth radius used for every angular/linear
	// conversion in this module. It matches the value the antenna coverage
	// model was calibrated with, so swath and coverage curves stay consistent.
	EarthRadiusKm = 6367.47

	// MeanEarthRadiusKm is the IUGG mean earth radius.
	MeanEarthRadiusKm = 6371.0088
)

// Point is an immutable geographic position in degrees.
type Point struct {
	Lat float64 // Latitude in degrees (-90 to +90)
	Lon float64 // Longitude in degrees, normalized to (-180, 180]
}

// NewPoint returns a point with its longitude normalized.
func NewPoint(latDeg, lonDeg float64) Point {
	return Point{Lat: latDeg, Lon: NormalizeLon(lonDeg)}
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// Valid reports whether the point is finite with latitude in [-90, 90].
func (p Point) Valid() bool {
	return p.Finite() && p.Lat >= -90 && p.Lat <= 90
}

// NormalizeLon maps a longitude in degrees into (-180, 180].
func NormalizeLon(lon float64) float64 {
	// In-range values are returned untouched so normalization is exact
	if lon > -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon <= 0 {
		lon += 360
	}
	return lon - 180
}

// NormalizeBearing maps an angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// Tiny negative inputs round up to exactly 360 after the add
	if deg >= 360 {
		return 0
	}
	return deg
}

// Bearing returns the initial great-circle bearing from a to b in degrees,
// in [0, 360). The result is meaningless when a and b coincide; callers
// that can see duplicate points must check Coincident first.
func Bearing(a, b Point) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLon := degToRad(NormalizeLon(b.Lon - a.Lon))

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeBearing(radToDeg(math.Atan2(y, x)))
}

// Destination solves the direct geodesic problem on the sphere: the point
// reached from origin after travelling angularDistance radians along the
// initial bearing bearingDeg.
func Destination(origin Point, bearingDeg, angularDistance float64) Point {
	if angularDistance == 0 {
		return NewPoint(origin.Lat, origin.Lon)
	}

	lat1 := degToRad(origin.Lat)
	lon1 := degToRad(origin.Lon)
	theta := degToRad(bearingDeg)

	sinLat1, cosLat1 := math.Sin(lat1), math.Cos(lat1)
	sinD, cosD := math.Sin(angularDistance), math.Cos(angularDistance)

	sinLat2 := sinLat1*cosD + cosLat1*sinD*math.Cos(theta)
	// Rounding can push the sum a hair outside asin's domain near the poles
	sinLat2 = clamp(sinLat2, -1, 1)
	lat2 := math.Asin(sinLat2)

	lon2 := lon1 + math.Atan2(math.Sin(theta)*sinD*cosLat1, cosD-sinLat1*sinLat2)

	return Point{
		Lat: radToDeg(lat2),
		Lon: NormalizeLon(radToDeg(lon2)),
	}
}

// AngularDistance returns the central angle between a and b in radians
// (haversine form).
func AngularDistance(a, b Point) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLat := lat2 - lat1
	dLon := degToRad(NormalizeLon(b.Lon - a.Lon))

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = clamp(h, 0, 1)

	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceKm returns the great-circle distance between a and b on a sphere
// of the given radius.
func DistanceKm(a, b Point, radiusKm float64) float64 {
	return AngularDistance(a, b) * radiusKm
}

// KmToAngle converts a surface distance to a central angle in radians.
func KmToAngle(km, radiusKm float64) float64 {
	return km / radiusKm
}

// Coincident reports whether a and b are the same position for bearing
// purposes. Points at the same pole coincide regardless of longitude.
func Coincident(a, b Point) bool {
	const eps = 1e-12
	if math.Abs(a.Lat-b.Lat) > eps {
		return false
	}
	if math.Abs(math.Abs(a.Lat)-90) <= eps {
		return true
	}
	return math.Abs(NormalizeLon(b.Lon-a.Lon)) <= eps
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
