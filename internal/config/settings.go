package config

import (
	"github.com/litescript/ls-swath/internal/coverage"
	"github.com/litescript/ls-swath/internal/track"
)

// DefaultSatelliteAltKm is a typical polar-orbiter altitude.
const DefaultSatelliteAltKm = 850.0

// Settings is the validated configuration surface of a display control.
// Every setter parses and validates its input first; a rejected value
// leaves the previous one in place.
type Settings struct {
	antennaAngle  int
	swathWidthKm  float64
	labelInterval int
	thresholdKm   float64
	satAltKm      float64
	sensor        string
}

// DefaultSettings returns the initial settings of a new display.
func DefaultSettings() Settings {
	return Settings{
		antennaAngle:  coverage.DefaultAntennaAngle,
		swathWidthKm:  0,
		labelInterval: track.DefaultLabelInterval,
		thresholdKm:   track.DefaultDistanceThresholdKm,
		satAltKm:      DefaultSatelliteAltKm,
	}
}

// AntennaAngle returns the minimum antenna elevation in degrees.
func (s *Settings) AntennaAngle() int { return s.antennaAngle }

// SwathWidthKm returns the swath width, 0 when not applicable.
func (s *Settings) SwathWidthKm() float64 { return s.swathWidthKm }

// LabelInterval returns the label stride in samples.
func (s *Settings) LabelInterval() int { return s.labelInterval }

// DistanceThresholdKm returns the label suppression distance.
func (s *Settings) DistanceThresholdKm() float64 { return s.thresholdKm }

// SatelliteAltKm returns the satellite altitude used for coverage.
func (s *Settings) SatelliteAltKm() float64 { return s.satAltKm }

// SetAntennaAngle validates and applies an antenna angle.
func (s *Settings) SetAntennaAngle(input string) error {
	v, err := ParseAntennaAngle(input)
	if err != nil {
		return err
	}
	s.antennaAngle = v
	return nil
}

// SetSwathWidth validates and applies a swath width or "N/A".
func (s *Settings) SetSwathWidth(input string) error {
	v, err := ParseSwathWidth(input)
	if err != nil {
		return err
	}
	s.swathWidthKm = v
	s.sensor = ""
	return nil
}

// SetLabelInterval validates and applies a label interval.
func (s *Settings) SetLabelInterval(input string) error {
	v, err := ParseLabelInterval(input)
	if err != nil {
		return err
	}
	s.labelInterval = v
	return nil
}

// SetDistanceThreshold validates and applies the label suppression distance.
func (s *Settings) SetDistanceThreshold(input string) error {
	v, err := parseFloat("distance threshold", input)
	if err != nil {
		return err
	}
	if v < 0 {
		return outOfRange("distance threshold", input, "zero or greater")
	}
	s.thresholdKm = v
	return nil
}

// SetSatelliteAltitude validates and applies the satellite altitude in km.
func (s *Settings) SetSatelliteAltitude(input string) error {
	v, err := parseFloat("satellite altitude", input)
	if err != nil {
		return err
	}
	if v <= 0 {
		return outOfRange("satellite altitude", input, "greater than 0 km")
	}
	s.satAltKm = v
	return nil
}

// Sensor returns the name of the sensor whose width was last applied, or
// "" when the width was entered by hand.
func (s *Settings) Sensor() string { return s.sensor }

// SetSensor applies the swath width of a sensor from table.
func (s *Settings) SetSensor(table *SensorTable, name string) error {
	sensor, ok := table.Lookup(name)
	if !ok {
		return &ValidationError{Field: "sensor", Input: name, Reason: "not in sensor table", Err: ErrOutOfRange}
	}
	s.swathWidthKm = sensor.WidthKm
	s.sensor = sensor.Name
	return nil
}

// SwathConfig returns the settings as a track.SwathConfig.
func (s *Settings) SwathConfig() track.SwathConfig {
	return track.SwathConfig{
		WidthKm:             s.swathWidthKm,
		LabelInterval:       s.labelInterval,
		DistanceThresholdKm: s.thresholdKm,
	}
}
