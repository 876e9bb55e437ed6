package coverage

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-swath/internal/geo"
)

// BoundaryPoints is the number of points in a coverage curve: one per
// degree of azimuth from 0 to 360 inclusive.
const BoundaryPoints = 361

// ErrInvalidGeometry reports that the visibility triangle has no solution.
var ErrInvalidGeometry = errors.New("invalid coverage geometry")

// Circle is a solved coverage boundary.
type Circle struct {
	Station     geo.Point
	AngleRad    float64   // Central angle from the station to the boundary
	RadiusKm    float64   // Surface distance from the station to the boundary
	Boundary    geo.Curve // Closed, BoundaryPoints long
	SatAltKm    float64
	StationAltM float64
}

// CoverageAngle solves the earth-center / station / satellite triangle by
// the law of sines and returns the central angle, in radians, between the
// station and the edge of its visibility region.
//
//	Rsat   = R + satAltKm
//	SAC    = 90° + elevation
//	sinASC = R·sin(SAC) / (Rsat - stationAltKm)
//	angle  = π - SAC - asin(sinASC)
//
// The station altitude is subtracted from the orbit radius rather than added
// to R. This matches the established coverage plots but has not been checked
// against a derivation; see DESIGN.md before changing it.
func CoverageAngle(elevationDeg, stationAltKm, satAltKm, radiusKm float64) (float64, error) {
	if !(elevationDeg > 0 && elevationDeg < 90) {
		return 0, fmt.Errorf("%w: elevation %.3f° outside (0, 90)", ErrInvalidGeometry, elevationDeg)
	}
	if radiusKm <= 0 || satAltKm <= 0 {
		return 0, fmt.Errorf("%w: radius %.3f km, satellite altitude %.3f km",
			ErrInvalidGeometry, radiusKm, satAltKm)
	}

	rsat := radiusKm + satAltKm
	sac := (90 + elevationDeg) * math.Pi / 180

	denom := rsat - stationAltKm
	if denom <= 0 {
		return 0, fmt.Errorf("%w: station altitude %.3f km at or above orbit radius",
			ErrInvalidGeometry, stationAltKm)
	}

	sinASC := radiusKm * math.Sin(sac) / denom
	if math.IsNaN(sinASC) || sinASC < -1 || sinASC > 1 {
		return 0, fmt.Errorf("%w: sin(ASC) = %.6f for elevation %.1f°, station %.3f km, satellite %.3f km",
			ErrInvalidGeometry, sinASC, elevationDeg, stationAltKm, satAltKm)
	}

	angle := math.Pi - sac - math.Asin(sinASC)
	if !(angle > 0) {
		return 0, fmt.Errorf("%w: non-positive coverage angle %.6f rad", ErrInvalidGeometry, angle)
	}

	return angle, nil
}

// Solve computes the closed coverage boundary for a station seeing a
// satellite at satAltKm. Point 360 is an exact copy of point 0.
func Solve(st GroundStation, satAltKm, radiusKm float64) (Circle, error) {
	center := st.Position()
	if !center.Valid() {
		return Circle{}, fmt.Errorf("%w: station %q position (%v, %v)",
			ErrInvalidGeometry, st.Name, st.Lat, st.Lon)
	}

	angle, err := CoverageAngle(st.AntennaAngle, st.AltitudeKm(), satAltKm, radiusKm)
	if err != nil {
		return Circle{}, fmt.Errorf("station %q: %w", st.Name, err)
	}

	return Circle{
		Station:     center,
		AngleRad:    angle,
		RadiusKm:    angle * radiusKm,
		Boundary:    Ring(center, angle),
		SatAltKm:    satAltKm,
		StationAltM: st.AltitudeM,
	}, nil
}

// Ring samples the small circle of the given angular radius around center
// at 1° azimuth steps. Each azimuth is computed from its index, not
// accumulated, and the last point repeats the first bit for bit.
func Ring(center geo.Point, angleRad float64) geo.Curve {
	pts := make([]geo.Point, BoundaryPoints)
	for i := 0; i < BoundaryPoints-1; i++ {
		pts[i] = geo.Destination(center, float64(i), angleRad)
	}
	pts[BoundaryPoints-1] = pts[0]

	return geo.Curve{Points: pts, Closed: true}
}
