// Package track derives label placements and swath edges from a satellite
// ground track.
package track

import (
	"errors"
	"time"

	"github.com/litescript/ls-swath/internal/geo"
)

const (
	// DefaultLabelInterval is the number of samples between time labels.
	DefaultLabelInterval = 5

	// DefaultDistanceThresholdKm suppresses a label closer than this to the
	// previously accepted one.
	DefaultDistanceThresholdKm = 2.5

	// LabelTimeFormat is the layout used for time label text.
	LabelTimeFormat = "15:04:05"
)

// ErrDegenerateTrack reports a track with fewer than two distinct positions.
// Swath computation returns empty edges alongside it; it is informational.
var ErrDegenerateTrack = errors.New("degenerate track: fewer than two distinct points")

// Sample is one ground-track position with its time label.
type Sample struct {
	Point geo.Point
	Time  time.Time
	Label string // Display text for a time label at this sample
	Index int    // Ordinal position in the source track
}

// NewSample builds a sample labelled with the UTC time of day.
func NewSample(index int, t time.Time, latDeg, lonDeg float64) Sample {
	return Sample{
		Point: geo.NewPoint(latDeg, lonDeg),
		Time:  t,
		Label: t.UTC().Format(LabelTimeFormat),
		Index: index,
	}
}

// SwathConfig controls edge and label generation.
type SwathConfig struct {
	// WidthKm is the full swath width. Zero means the sensor has no swath
	// and edges are not computed.
	WidthKm float64

	// LabelInterval is the sample stride between label candidates.
	LabelInterval int

	// DistanceThresholdKm is the minimum spacing between accepted labels.
	DistanceThresholdKm float64
}

// DefaultSwathConfig returns a config with no swath and default labelling.
func DefaultSwathConfig() SwathConfig {
	return SwathConfig{
		WidthKm:             0,
		LabelInterval:       DefaultLabelInterval,
		DistanceThresholdKm: DefaultDistanceThresholdKm,
	}
}

// HasSwath reports whether swath edges apply.
func (c SwathConfig) HasSwath() bool {
	return c.WidthKm > 0
}

// Points extracts the positions of samples in order.
func Points(samples []Sample) []geo.Point {
	pts := make([]geo.Point, len(samples))
	for i, s := range samples {
		pts[i] = s.Point
	}
	return pts
}

// Centerline returns the track as an open curve.
func Centerline(samples []Sample) geo.Curve {
	return geo.Curve{Points: Points(samples)}
}

// Decimate strides samples down to at most maxPoints entries, always
// keeping the first and last sample. Samples keep their original Index.
// A maxPoints below 2 or a track already within the limit is returned as is.
func Decimate(samples []Sample, maxPoints int) []Sample {
	n := len(samples)
	if maxPoints < 2 || n <= maxPoints {
		return samples
	}

	// Ceiling division keeps the strided count plus the tail within the limit
	stride := (n - 1 + maxPoints - 2) / (maxPoints - 1)

	out := make([]Sample, 0, maxPoints)
	for i := 0; i < n-1; i += stride {
		out = append(out, samples[i])
	}
	return append(out, samples[n-1])
}
