package track

import (
	"github.com/litescript/ls-swath/internal/geo"
)

// EdgeOffset is the track index of the first swath edge point. Edge point k
// belongs to track sample k+EdgeOffset.
const EdgeOffset = 1

// Swath holds the two edges of a sensor footprint. Both curves have one
// point per interior track sample (len(track)-2) and are index-aligned.
type Swath struct {
	Left  geo.Curve
	Right geo.Curve
}

// Empty reports whether no edges were produced.
func (s Swath) Empty() bool {
	return s.Left.Empty() && s.Right.Empty()
}

// ProjectSwath offsets every interior track point perpendicular to the
// direction of travel by half the swath width. The heading at point i is
// the bearing from point i-1 to point i; right is heading+90°, left is
// heading-90°.
//
// Width zero, fewer than three points or an all-coincident track give an
// empty Swath.
func ProjectSwath(points []geo.Point, widthKm, radiusKm float64) Swath {
	s, _ := ProjectSwathChecked(points, widthKm, radiusKm)
	return s
}

// ProjectSwathChecked is ProjectSwath that also reports ErrDegenerateTrack
// when the track has fewer than two distinct points.
func ProjectSwathChecked(points []geo.Point, widthKm, radiusKm float64) (Swath, error) {
	if widthKm <= 0 {
		return Swath{}, nil
	}

	headings, ok := interiorHeadings(points)
	if !ok {
		return Swath{}, ErrDegenerateTrack
	}
	if len(headings) == 0 {
		return Swath{}, nil
	}

	half := geo.KmToAngle(widthKm/2, radiusKm)
	left := make([]geo.Point, len(headings))
	right := make([]geo.Point, len(headings))

	for k, h := range headings {
		p := points[k+EdgeOffset]
		right[k] = geo.Destination(p, h+90, half)
		left[k] = geo.Destination(p, h-90, half)
	}

	return Swath{
		Left:  geo.Curve{Points: left},
		Right: geo.Curve{Points: right},
	}, nil
}

// interiorHeadings returns the incoming heading for points 1..n-2. A step
// between coincident points has no bearing; it inherits the previous valid
// heading, or the first valid one when it leads the track. ok is false when
// no step in the whole track has a bearing.
func interiorHeadings(points []geo.Point) ([]float64, bool) {
	n := len(points)
	if n < 2 {
		return nil, false
	}

	// Bearing of step i (from i-1 to i) for i in 1..n-1
	steps := make([]float64, n)
	valid := make([]bool, n)
	first := -1
	for i := 1; i < n; i++ {
		if geo.Coincident(points[i-1], points[i]) {
			continue
		}
		steps[i] = geo.Bearing(points[i-1], points[i])
		valid[i] = true
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return nil, false
	}
	if n < 3 {
		return nil, true
	}

	headings := make([]float64, n-2)
	current := steps[first]
	for i := 1; i <= n-2; i++ {
		if valid[i] {
			current = steps[i]
		}
		headings[i-1] = current
	}
	return headings, true
}
