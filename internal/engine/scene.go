package engine

import (
	"github.com/litescript/ls-swath/internal/coverage"
	"github.com/litescript/ls-swath/internal/geo"
	"github.com/litescript/ls-swath/internal/track"
)

// Visibility toggles which parts of the scene are handed to the renderer.
type Visibility struct {
	Track    bool // Center line and time labels
	Swath    bool // Swath edges
	Coverage bool // Coverage rings and station name labels
}

// AllVisible shows everything.
func AllVisible() Visibility {
	return Visibility{Track: true, Swath: true, Coverage: true}
}

// enables reports whether v turns on anything that is off in prev.
func (v Visibility) enables(prev Visibility) bool {
	return (v.Track && !prev.Track) || (v.Swath && !prev.Swath) || (v.Coverage && !prev.Coverage)
}

// PlacedLabel is text anchored to an earth position.
type PlacedLabel struct {
	Point geo.Point
	Text  string
}

// StationCoverage is a solved coverage ring with its station name label.
type StationCoverage struct {
	Station coverage.GroundStation
	Circle  coverage.Circle
	Label   PlacedLabel
}

// StationProblem records a station whose coverage curve was omitted.
type StationProblem struct {
	Station string
	Err     error
}

// Scene is everything the renderer draws for one redraw. It is a value:
// later engine changes never modify a returned Scene.
type Scene struct {
	Generation int // Incremented on every full recompute
	Source     string
	Config     track.SwathConfig

	Centerline    geo.Curve
	TimeLabels    []track.Label
	Swath         track.Swath
	Coverage      []StationCoverage
	StationLabels []PlacedLabel

	// TrackErr is track.ErrDegenerateTrack when a swath was requested but
	// the track has fewer than two distinct points.
	TrackErr error
	Problems []StationProblem

	SatelliteAltKm float64
	DisplayScale   float64 // Passed through for label font sizing
	LonMode        geo.LonMode
	Visibility     Visibility
}

// Points returns a curve in the scene's longitude representation.
func (s *Scene) Points(c geo.Curve) []geo.Point {
	return c.In(s.LonMode)
}

// Curves returns the number of curves to draw.
func (s *Scene) Curves() int {
	n := len(s.Coverage)
	if !s.Centerline.Empty() {
		n++
	}
	if !s.Swath.Empty() {
		n += 2
	}
	return n
}

// filtered returns a copy of s with hidden parts removed, reporting the
// current display scale.
func (s *Scene) filtered(v Visibility, scale float64) *Scene {
	out := *s
	out.Visibility = v
	out.DisplayScale = scale
	if !v.Track {
		out.Centerline = geo.Curve{}
		out.TimeLabels = nil
	}
	if !v.Swath {
		out.Swath = track.Swath{}
	}
	if !v.Coverage {
		out.Coverage = nil
		out.StationLabels = nil
	}
	return &out
}
