// Package config validates user-facing configuration values before they
// reach the geometry engine.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/litescript/ls-swath/internal/coverage"
)

// Accepted ranges for user input.
const (
	MinSwathWidthKm  = 0.0 // exclusive
	MaxSwathWidthKm  = 4000.0
	MinLabelInterval = 1
	MaxLabelInterval = 120
	MinStationAltM   = -500.0
	MaxStationAltM   = 9000.0

	// NotApplicable is the swath width text for sensors without a swath.
	NotApplicable = "N/A"
)

// Sentinels wrapped by ValidationError.
var (
	ErrUnparseable = errors.New("unparseable value")
	ErrOutOfRange  = errors.New("value out of range")
)

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Field  string
	Input  string
	Reason string
	Err    error // ErrUnparseable or ErrOutOfRange
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func unparseable(field, input string) error {
	return &ValidationError{Field: field, Input: input, Reason: "not a number", Err: ErrUnparseable}
}

func outOfRange(field, input, bounds string) error {
	return &ValidationError{Field: field, Input: input, Reason: "must be " + bounds, Err: ErrOutOfRange}
}

func parseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, unparseable(field, s)
	}
	return v, nil
}

func parseInt(field, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, unparseable(field, s)
	}
	return v, nil
}

// ParseAntennaAngle parses an integer antenna elevation angle in degrees.
func ParseAntennaAngle(s string) (int, error) {
	v, err := parseInt("antenna angle", s)
	if err != nil {
		return 0, err
	}
	if v < coverage.MinAntennaAngle || v > coverage.MaxAntennaAngle {
		return 0, outOfRange("antenna angle", s,
			fmt.Sprintf("between %d and %d degrees", coverage.MinAntennaAngle, coverage.MaxAntennaAngle))
	}
	return v, nil
}

// ParseSwathWidth parses a swath width in km. "N/A" (any case) yields 0,
// meaning the sensor has no swath.
func ParseSwathWidth(s string) (float64, error) {
	if strings.EqualFold(strings.TrimSpace(s), NotApplicable) {
		return 0, nil
	}
	v, err := parseFloat("swath width", s)
	if err != nil {
		return 0, err
	}
	if v <= MinSwathWidthKm || v > MaxSwathWidthKm {
		return 0, outOfRange("swath width", s, fmt.Sprintf("greater than 0 and at most %.0f km", MaxSwathWidthKm))
	}
	return v, nil
}

// FormatSwathWidth renders a width the way ParseSwathWidth accepts it.
func FormatSwathWidth(km float64) string {
	if km <= 0 {
		return NotApplicable
	}
	return strconv.FormatFloat(km, 'f', -1, 64)
}

// ParseLabelInterval parses the sample stride between time labels.
func ParseLabelInterval(s string) (int, error) {
	v, err := parseInt("label interval", s)
	if err != nil {
		return 0, err
	}
	if v < MinLabelInterval || v > MaxLabelInterval {
		return 0, outOfRange("label interval", s, fmt.Sprintf("between %d and %d", MinLabelInterval, MaxLabelInterval))
	}
	return v, nil
}

// ParseLatitude parses a latitude in degrees.
func ParseLatitude(s string) (float64, error) {
	v, err := parseFloat("latitude", s)
	if err != nil {
		return 0, err
	}
	if v < -90 || v > 90 {
		return 0, outOfRange("latitude", s, "between -90 and 90 degrees")
	}
	return v, nil
}

// ParseLongitude parses a longitude in degrees.
func ParseLongitude(s string) (float64, error) {
	v, err := parseFloat("longitude", s)
	if err != nil {
		return 0, err
	}
	if v < -180 || v > 180 {
		return 0, outOfRange("longitude", s, "between -180 and 180 degrees")
	}
	return v, nil
}

// ParseStationAltitude parses a station altitude in meters.
func ParseStationAltitude(s string) (float64, error) {
	v, err := parseFloat("altitude", s)
	if err != nil {
		return 0, err
	}
	if v < MinStationAltM || v > MaxStationAltM {
		return 0, outOfRange("altitude", s,
			fmt.Sprintf("between %.0f and %.0f meters", MinStationAltM, MaxStationAltM))
	}
	return v, nil
}

// ParseCustomStation parses "name:lat:lon[:alt_m]" into a station using
// antennaAngle. Every field is validated before anything is built.
func ParseCustomStation(spec string, antennaAngle int) (coverage.GroundStation, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return coverage.GroundStation{}, &ValidationError{
			Field:  "station",
			Input:  spec,
			Reason: "expected name:lat:lon[:alt_m]",
			Err:    ErrUnparseable,
		}
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return coverage.GroundStation{}, &ValidationError{
			Field: "station", Input: spec, Reason: "name is empty", Err: ErrUnparseable,
		}
	}

	lat, err := ParseLatitude(parts[1])
	if err != nil {
		return coverage.GroundStation{}, err
	}
	lon, err := ParseLongitude(parts[2])
	if err != nil {
		return coverage.GroundStation{}, err
	}

	var alt float64
	if len(parts) == 4 {
		if alt, err = ParseStationAltitude(parts[3]); err != nil {
			return coverage.GroundStation{}, err
		}
	}

	return coverage.GroundStation{
		Name:         name,
		Lat:          lat,
		Lon:          lon,
		AltitudeM:    alt,
		AntennaAngle: float64(antennaAngle),
	}, nil
}
