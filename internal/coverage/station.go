// Package coverage computes ground-station antenna visibility boundaries.
package coverage

import (
	"sort"
	"strings"

	"github.com/litescript/ls-swath/internal/geo"
)

// Station elevation-angle limits accepted from user input.
const (
	MinAntennaAngle     = 5
	MaxAntennaAngle     = 90
	DefaultAntennaAngle = 5
)

// GroundStation is a tracked antenna site. Name is the unique key.
type GroundStation struct {
	Name         string
	Lat          float64 // Degrees, north positive
	Lon          float64 // Degrees, east positive
	AltitudeM    float64 // Meters above mean sea level
	AntennaAngle float64 // Minimum elevation in degrees
	Style        any     // Rendering style, passed through untouched
}

// Position returns the station location as a point.
func (s GroundStation) Position() geo.Point {
	return geo.NewPoint(s.Lat, s.Lon)
}

// AltitudeKm returns the station altitude in kilometers.
func (s GroundStation) AltitudeKm() float64 {
	return s.AltitudeM / 1000
}

// SiteInfo is a catalog entry for a well-known ground station.
type SiteInfo struct {
	Name      string
	Latitude  float64
	Longitude float64
	AltitudeM float64
}

// KnownStations maps lower-case keys to catalog entries.
var KnownStations = map[string]SiteInfo{
	"goldstone": {Name: "Goldstone", Latitude: 35.4267, Longitude: -116.8900, AltitudeM: 1000},
	"canberra":  {Name: "Canberra", Latitude: -35.4014, Longitude: 148.9817, AltitudeM: 680},
	"madrid":    {Name: "Madrid", Latitude: 40.4314, Longitude: -4.2481, AltitudeM: 830},
	"wallops":   {Name: "Wallops", Latitude: 37.9402, Longitude: -75.4664, AltitudeM: 10},
	"fairbanks": {Name: "Fairbanks", Latitude: 64.8594, Longitude: -147.8499, AltitudeM: 160},
	"svalbard":  {Name: "Svalbard", Latitude: 78.2298, Longitude: 15.4078, AltitudeM: 500},
	"mcmurdo":   {Name: "McMurdo", Latitude: -77.8391, Longitude: 166.6671, AltitudeM: 104},
	"madison":   {Name: "Madison", Latitude: 43.0707, Longitude: -89.4066, AltitudeM: 270},
}

// LookupStation returns the catalog entry for name, ignoring case.
func LookupStation(name string) (SiteInfo, bool) {
	info, ok := KnownStations[strings.ToLower(strings.TrimSpace(name))]
	return info, ok
}

// CatalogNames returns the catalog keys in sorted order.
func CatalogNames() []string {
	names := make([]string, 0, len(KnownStations))
	for k := range KnownStations {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FromCatalog builds a station from a catalog entry at the given antenna angle.
func FromCatalog(info SiteInfo, antennaAngle float64) GroundStation {
	return GroundStation{
		Name:         info.Name,
		Lat:          info.Latitude,
		Lon:          info.Longitude,
		AltitudeM:    info.AltitudeM,
		AntennaAngle: antennaAngle,
	}
}
