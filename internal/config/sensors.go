package config

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

//go:embed sensors.xml
var defaultSensorsXML []byte

type sensorsDoc struct {
	XMLName xml.Name    `xml:"sensors"`
	Sensors []sensorXML `xml:"sensor"`
}

type sensorXML struct {
	Name     string `xml:"name,attr"`
	Platform string `xml:"platform,attr"`
	Width    string `xml:"width,attr"` // km, or N/A
}

// Sensor is one swath-width table entry.
type Sensor struct {
	Name     string
	Platform string
	WidthKm  float64 // 0 when the sensor has no swath
}

// SensorTable maps sensor names to swath widths. It is an ordinary value
// owned by whoever loads it.
type SensorTable struct {
	byKey map[string]Sensor
}

// LoadSensorTable parses a sensor table document.
func LoadSensorTable(r io.Reader) (*SensorTable, error) {
	var doc sensorsDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sensor table: %w", err)
	}

	table := &SensorTable{byKey: make(map[string]Sensor, len(doc.Sensors))}
	for _, s := range doc.Sensors {
		width, err := ParseSwathWidth(s.Width)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", s.Name, err)
		}
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			return nil, fmt.Errorf("sensor table: entry with empty name")
		}
		table.byKey[key] = Sensor{Name: s.Name, Platform: s.Platform, WidthKm: width}
	}
	return table, nil
}

// DefaultSensorTable returns the table bundled with the binary.
func DefaultSensorTable() (*SensorTable, error) {
	return LoadSensorTable(bytes.NewReader(defaultSensorsXML))
}

// Lookup returns the sensor entry for name, ignoring case.
func (t *SensorTable) Lookup(name string) (Sensor, bool) {
	if t == nil {
		return Sensor{}, false
	}
	s, ok := t.byKey[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Names returns all sensor names sorted.
func (t *SensorTable) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.byKey))
	for _, s := range t.byKey {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (t *SensorTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byKey)
}
