// Package ephem supplies satellite ground tracks to the geometry engine.
package ephem

import (
	"errors"
	"time"

	"github.com/litescript/ls-swath/internal/track"
)

const (
	// DefaultPassDuration is the default time span of a ground track.
	DefaultPassDuration = 100 * time.Minute

	// DefaultPassStep is the default spacing between track samples.
	DefaultPassStep = 30 * time.Second
)

// Errors returned by track providers.
var (
	ErrInvalidStep  = errors.New("step must be positive")
	ErrInvalidRange = errors.New("invalid time range: start equals end")
)

// Pass is one ground track over a time range.
type Pass struct {
	Samples []track.Sample
	Start   time.Time
	End     time.Time

	// MeanAltitudeKm is the mean satellite altitude over the pass, or 0
	// when the provider has no altitude information.
	MeanAltitudeKm float64
}

// Provider defines the interface for ground-track data sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Pass returns ground-track samples from start to end inclusive,
	// spaced by step. Samples are in time order with Index 0..n-1.
	Pass(start, end time.Time, step time.Duration) (Pass, error)
}

// Mode represents which track source to use.
type Mode int

const (
	ModeSGP4      Mode = iota // Propagate a TLE
	ModeSynthetic             // Constant-speed great-circle path
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSGP4:
		return "sgp4"
	case ModeSynthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) Mode {
	switch s {
	case "synthetic":
		return ModeSynthetic
	default:
		return ModeSGP4
	}
}

// checkRange validates and orders a time range.
func checkRange(start, end time.Time, step time.Duration) (time.Time, time.Time, error) {
	if step <= 0 {
		return start, end, ErrInvalidStep
	}
	if start.Equal(end) {
		return start, end, ErrInvalidRange
	}
	if end.Before(start) {
		start, end = end, start
	}
	return start, end, nil
}
