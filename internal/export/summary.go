package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-swath/internal/config"
	"github.com/litescript/ls-swath/internal/coverage"
	"github.com/litescript/ls-swath/internal/engine"
)

// SummaryRow represents one station row in the summary table.
type SummaryRow struct {
	Station   string
	Lat       float64
	Lon       float64
	AltitudeM float64
	Elevation float64
	RadiusKm  float64
	Status    string
}

// GenerateSummaryRows creates one row per station, in the given order.
func GenerateSummaryRows(scene *engine.Scene, stations []coverage.GroundStation) []SummaryRow {
	if scene == nil {
		return nil
	}

	solved := make(map[string]engine.StationCoverage, len(scene.Coverage))
	for _, c := range scene.Coverage {
		solved[c.Station.Name] = c
	}
	failed := make(map[string]error, len(scene.Problems))
	for _, p := range scene.Problems {
		failed[p.Station] = p.Err
	}

	var rows []SummaryRow
	for _, st := range stations {
		row := SummaryRow{
			Station:   st.Name,
			Lat:       st.Lat,
			Lon:       st.Lon,
			AltitudeM: st.AltitudeM,
			Elevation: st.AntennaAngle,
		}
		if c, ok := solved[st.Name]; ok {
			row.RadiusKm = c.Circle.RadiusKm
			row.Status = "ok"
		} else if err := failed[st.Name]; err != nil {
			row.Status = "omitted: " + err.Error()
		} else {
			row.Status = "hidden"
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteSummaryTable writes a text summary of the scene to w.
func WriteSummaryTable(w io.Writer, scene *engine.Scene, stations []coverage.GroundStation, timestamp time.Time) {
	fmt.Fprintf(w, "Swath Geometry @ %s\n", timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 90))

	source := scene.Source
	if source == "" {
		source = "(none)"
	}
	fmt.Fprintf(w, "Track:      %s, %d samples, %d time labels\n",
		source, scene.Centerline.Len(), len(scene.TimeLabels))
	fmt.Fprintf(w, "Swath:      %s km", config.FormatSwathWidth(scene.Config.WidthKm))
	if !scene.Swath.Empty() {
		fmt.Fprintf(w, ", %d edge points per side", scene.Swath.Left.Len())
	}
	if scene.TrackErr != nil {
		fmt.Fprintf(w, " (%v)", scene.TrackErr)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Satellite:  %.0f km altitude\n", scene.SatelliteAltKm)
	fmt.Fprintf(w, "Longitudes: %s\n", scene.LonMode)

	rows := GenerateSummaryRows(scene, stations)
	fmt.Fprintln(w, strings.Repeat("─", 90))
	if len(rows) == 0 {
		fmt.Fprintln(w, "No ground stations")
		return
	}

	// Header
	fmt.Fprintf(w, "%-14s %8s %9s %7s %5s %9s  %s\n",
		"Station", "Lat", "Lon", "Alt m", "Elev", "Radius", "Status")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	// Rows
	for _, r := range rows {
		radius := "-"
		if r.RadiusKm > 0 {
			radius = fmt.Sprintf("%.0f km", r.RadiusKm)
		}
		fmt.Fprintf(w, "%-14s %8.3f %9.3f %7.0f %4.0f° %9s  %s\n",
			truncateStr(r.Station, 14),
			r.Lat,
			r.Lon,
			r.AltitudeM,
			r.Elevation,
			radius,
			truncateStr(r.Status, 40),
		)
	}

	fmt.Fprintf(w, "\nTotal: %d stations, %d with coverage\n", len(rows), len(scene.Coverage))
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
