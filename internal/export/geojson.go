// Package export writes computed scenes as GeoJSON or as a text summary.
package export

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/litescript/ls-swath/internal/engine"
	"github.com/litescript/ls-swath/internal/geo"
)

// Feature kinds, stored in the "kind" property.
const (
	KindTrack        = "track"
	KindSwathLeft    = "swath_left"
	KindSwathRight   = "swath_right"
	KindCoverage     = "coverage"
	KindTimeLabel    = "time_label"
	KindStationLabel = "station_label"
)

// GeoJSON converts a scene into a FeatureCollection. Open curves in
// wrapped mode are split at the antimeridian into a MultiLineString;
// continuous mode keeps one running LineString.
//
// Coverage rings become polygons. In wrapped mode a ring that crosses the
// antimeridian is cut there into a MultiPolygon whose parts are closed
// along ±180°, and a ring around a pole is closed over that pole. In
// continuous mode a ring whose unwrapped form does not close (a ring
// around a pole) is written as a LineString.
func GeoJSON(scene *engine.Scene) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if !scene.Centerline.Empty() {
		f := geojson.NewFeature(openGeometry(scene, scene.Centerline))
		f.Properties["kind"] = KindTrack
		f.Properties["source"] = scene.Source
		f.Properties["samples"] = scene.Centerline.Len()
		fc.Append(f)
	}

	if !scene.Swath.Empty() {
		for _, edge := range []struct {
			kind  string
			curve geo.Curve
		}{
			{KindSwathLeft, scene.Swath.Left},
			{KindSwathRight, scene.Swath.Right},
		} {
			f := geojson.NewFeature(openGeometry(scene, edge.curve))
			f.Properties["kind"] = edge.kind
			f.Properties["width_km"] = scene.Config.WidthKm
			fc.Append(f)
		}
	}

	for _, c := range scene.Coverage {
		f := geojson.NewFeature(ringGeometry(scene, c.Circle.Boundary))
		f.Properties["kind"] = KindCoverage
		f.Properties["station"] = c.Station.Name
		f.Properties["antenna_angle_deg"] = c.Station.AntennaAngle
		f.Properties["station_alt_m"] = c.Station.AltitudeM
		f.Properties["sat_alt_km"] = c.Circle.SatAltKm
		f.Properties["radius_km"] = c.Circle.RadiusKm
		fc.Append(f)
	}

	for _, l := range scene.TimeLabels {
		f := geojson.NewFeature(toOrb(l.Point))
		f.Properties["kind"] = KindTimeLabel
		f.Properties["text"] = l.Text
		f.Properties["index"] = l.Index
		fc.Append(f)
	}

	for _, l := range scene.StationLabels {
		f := geojson.NewFeature(toOrb(l.Point))
		f.Properties["kind"] = KindStationLabel
		f.Properties["text"] = l.Text
		fc.Append(f)
	}

	fc.ExtraMembers = geojson.Properties{
		"generation":    scene.Generation,
		"lon_mode":      scene.LonMode.String(),
		"display_scale": scene.DisplayScale,
	}
	if len(scene.Problems) > 0 {
		problems := make([]map[string]string, 0, len(scene.Problems))
		for _, p := range scene.Problems {
			problems = append(problems, map[string]string{
				"station": p.Station,
				"error":   p.Err.Error(),
			})
		}
		fc.ExtraMembers["problems"] = problems
	}

	return fc
}

// WriteGeoJSON writes the scene as indented GeoJSON.
func WriteGeoJSON(w io.Writer, scene *engine.Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(GeoJSON(scene))
}

func toOrb(p geo.Point) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func lineString(pts []geo.Point) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = toOrb(p)
	}
	return ls
}

func openGeometry(scene *engine.Scene, c geo.Curve) orb.Geometry {
	if scene.LonMode == geo.LonContinuous {
		return lineString(c.Continuous())
	}

	segments := c.Segments()
	if len(segments) == 1 {
		return lineString(segments[0])
	}
	mls := make(orb.MultiLineString, len(segments))
	for i, seg := range segments {
		mls[i] = lineString(seg)
	}
	return mls
}

func ringGeometry(scene *engine.Scene, c geo.Curve) orb.Geometry {
	if scene.LonMode == geo.LonContinuous {
		return closedGeometry(lineString(c.Continuous()))
	}

	pieces := c.Segments()
	if len(pieces) == 1 {
		return closedGeometry(lineString(pieces[0]))
	}
	if !c.Closed {
		return openGeometry(scene, c)
	}

	// The last piece runs back into the first point; join them so every
	// piece starts and ends on the antimeridian.
	last := pieces[len(pieces)-1]
	joined := append(append([]geo.Point{}, last...), pieces[0][1:]...)
	pieces = append([][]geo.Point{joined}, pieces[1:len(pieces)-1]...)

	mp := make(orb.MultiPolygon, 0, len(pieces))
	for _, piece := range pieces {
		mp = append(mp, orb.Polygon{seamRing(piece)})
	}
	return mp
}

// seamRing closes a piece of a cut ring. A piece that leaves and returns
// on the same side of the antimeridian closes along it; one that ends on
// the other side went around a pole and closes over it.
func seamRing(pts []geo.Point) orb.Ring {
	ring := orb.Ring(lineString(pts))
	first, last := pts[0], pts[len(pts)-1]

	if first.Lon != last.Lon {
		var latSum float64
		for _, p := range pts {
			latSum += p.Lat
		}
		pole := 90.0
		if latSum < 0 {
			pole = -90
		}
		ring = append(ring, orb.Point{last.Lon, pole}, orb.Point{first.Lon, pole})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

func closedGeometry(ls orb.LineString) orb.Geometry {
	if len(ls) < 4 || ls[0] != ls[len(ls)-1] {
		return ls
	}
	return orb.Polygon{orb.Ring(ls)}
}
