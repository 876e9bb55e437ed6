package ephem

import (
	"fmt"
	"time"

	"github.com/litescript/ls-swath/internal/geo"
	"github.com/litescript/ls-swath/internal/track"
)

// GreatCirclePath is a synthetic provider: a point moving at constant
// ground speed along a great circle. It needs no element set and is used
// for demos and for exercising the geometry on known tracks.
type GreatCirclePath struct {
	Label      string
	Origin     geo.Point // Position at Epoch
	HeadingDeg float64   // Initial bearing from Origin
	SpeedKmS   float64   // Ground speed
	Epoch      time.Time
	RadiusKm   float64
	AltitudeKm float64 // Reported as the pass mean altitude
}

// Name implements Provider.
func (g GreatCirclePath) Name() string {
	if g.Label != "" {
		return g.Label
	}
	return "synthetic"
}

// At returns the position at t. Times before Epoch travel backwards.
func (g GreatCirclePath) At(t time.Time) geo.Point {
	km := g.SpeedKmS * t.Sub(g.Epoch).Seconds()
	if km < 0 {
		return geo.Destination(g.Origin, geo.NormalizeBearing(g.HeadingDeg+180), geo.KmToAngle(-km, g.radius()))
	}
	return geo.Destination(g.Origin, g.HeadingDeg, geo.KmToAngle(km, g.radius()))
}

// Pass implements Provider.
func (g GreatCirclePath) Pass(start, end time.Time, step time.Duration) (Pass, error) {
	start, end, err := checkRange(start, end, step)
	if err != nil {
		return Pass{}, err
	}
	if !g.Origin.Valid() {
		return Pass{}, fmt.Errorf("synthetic path origin %v out of range", g.Origin)
	}

	var samples []track.Sample
	for t := start; !t.After(end); t = t.Add(step) {
		p := g.At(t)
		samples = append(samples, track.NewSample(len(samples), t, p.Lat, p.Lon))
	}

	return Pass{
		Samples:        samples,
		Start:          start,
		End:            end,
		MeanAltitudeKm: g.AltitudeKm,
	}, nil
}

func (g GreatCirclePath) radius() float64 {
	if g.RadiusKm > 0 {
		return g.RadiusKm
	}
	return geo.EarthRadiusKm
}
