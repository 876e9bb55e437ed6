package geo

import (
	"math"
)

// LonMode selects how longitudes are represented along a curve.
type LonMode int

const (
	// LonWrapped keeps every longitude in (-180, 180]. Suited to globe displays.
	LonWrapped LonMode = iota
	// LonContinuous unwraps longitudes so consecutive points never jump by
	// more than 180°. Values may leave (-180, 180]. Suited to flat maps.
	LonContinuous
)

// String returns the mode name.
func (m LonMode) String() string {
	switch m {
	case LonWrapped:
		return "wrapped"
	case LonContinuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// ParseLonMode parses a mode name, defaulting to LonWrapped.
func ParseLonMode(s string) LonMode {
	switch s {
	case "continuous", "unwrapped":
		return LonContinuous
	default:
		return LonWrapped
	}
}

// Curve is an ordered sequence of points. A closed curve repeats its first
// point as its last.
type Curve struct {
	Points []Point
	Closed bool
}

// Len returns the number of points.
func (c Curve) Len() int {
	return len(c.Points)
}

// Empty reports whether the curve has no points.
func (c Curve) Empty() bool {
	return len(c.Points) == 0
}

// Finite reports whether every point is finite with a normalized longitude.
func (c Curve) Finite() bool {
	for _, p := range c.Points {
		if !p.Valid() || p.Lon <= -180 || p.Lon > 180 {
			return false
		}
	}
	return true
}

// In returns the curve's points in the requested longitude representation.
// The receiver is never modified.
func (c Curve) In(mode LonMode) []Point {
	if mode == LonContinuous {
		return c.Continuous()
	}
	out := make([]Point, len(c.Points))
	copy(out, c.Points)
	return out
}

// Continuous returns a copy of the points with longitudes unwrapped into a
// running sequence, starting from the first point's wrapped longitude.
func (c Curve) Continuous() []Point {
	if len(c.Points) == 0 {
		return nil
	}

	out := make([]Point, len(c.Points))
	out[0] = c.Points[0]
	for i := 1; i < len(c.Points); i++ {
		prev := out[i-1].Lon
		delta := NormalizeLon(c.Points[i].Lon - c.Points[i-1].Lon)
		out[i] = Point{Lat: c.Points[i].Lat, Lon: prev + delta}
	}
	return out
}

// Segments splits the wrapped curve wherever it crosses the antimeridian.
// At every crossing the running segment is closed with an interpolated point
// on the ±180° boundary and the next segment starts from the matching point
// on the opposite side, so no segment spans the seam.
func (c Curve) Segments() [][]Point {
	if len(c.Points) == 0 {
		return nil
	}

	var segments [][]Point
	current := []Point{c.Points[0]}

	for i := 1; i < len(c.Points); i++ {
		prev := c.Points[i-1]
		curr := c.Points[i]

		if crossesAntimeridian(prev, curr) {
			end, start := boundaryPoints(prev, curr)
			current = append(current, end)
			segments = append(segments, current)
			current = []Point{start, curr}
			continue
		}
		current = append(current, curr)
	}

	return append(segments, current)
}

// crossesAntimeridian reports whether the short way from a to b passes
// through ±180°.
func crossesAntimeridian(a, b Point) bool {
	delta := NormalizeLon(b.Lon - a.Lon)
	return math.Abs((a.Lon+delta)-b.Lon) > 1e-9
}

// boundaryPoints returns the two points where the a→b step meets the
// antimeridian: one on a's side and one on b's side.
func boundaryPoints(a, b Point) (Point, Point) {
	sideA, sideB := 180.0, -180.0
	if a.Lon < 0 {
		sideA, sideB = -180.0, 180.0
	}

	// Linear interpolation of latitude against unwrapped longitude
	bLon := a.Lon + NormalizeLon(b.Lon-a.Lon)
	dLon := bLon - a.Lon

	t := 0.5
	if math.Abs(dLon) > 1e-10 {
		t = (sideA - a.Lon) / dLon
	}
	t = clamp(t, 0, 1)

	lat := a.Lat + (b.Lat-a.Lat)*t

	// 180 is the canonical form; -180 only appears as a segment end marker
	return Point{Lat: lat, Lon: sideA}, Point{Lat: lat, Lon: sideB}
}
