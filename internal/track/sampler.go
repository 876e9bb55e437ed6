package track

import (
	"github.com/litescript/ls-swath/internal/geo"
)

// Label is a time label anchored to a track sample.
type Label struct {
	Index int // Index of the labeled sample, its ordinal in the original track
	Point geo.Point
	Text  string
}

// SampleLabels picks the samples that get a time label. Every
// LabelInterval-th sample starting at 0 is a candidate; a candidate closer
// than DistanceThresholdKm to the last accepted label is dropped. Dropped
// samples still belong to the center line.
//
// The result depends only on the inputs, in track order.
func SampleLabels(samples []Sample, cfg SwathConfig, radiusKm float64) []Label {
	if len(samples) == 0 {
		return nil
	}

	interval := cfg.LabelInterval
	if interval <= 0 {
		interval = DefaultLabelInterval
	}

	labels := make([]Label, 0, len(samples)/interval+1)
	var last geo.Point
	haveLast := false

	for i := 0; i < len(samples); i += interval {
		s := samples[i]

		if haveLast && geo.DistanceKm(last, s.Point, radiusKm) < cfg.DistanceThresholdKm {
			continue
		}

		labels = append(labels, Label{
			Index: s.Index,
			Point: s.Point,
			Text:  s.Label,
		})
		last = s.Point
		haveLast = true
	}

	return labels
}
