// Package engine combines the track, swath and coverage geometry into the
// scene handed to a renderer, recomputing everything after any change.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-swath/internal/coverage"
	"github.com/litescript/ls-swath/internal/geo"
	"github.com/litescript/ls-swath/internal/logging"
	"github.com/litescript/ls-swath/internal/track"
)

const (
	// DefaultMaxTrackPoints bounds the track size; longer tracks are
	// coarsely decimated when set.
	DefaultMaxTrackPoints = 20000

	// DefaultMaxEvents is the size of the event ring buffer.
	DefaultMaxEvents = 50

	// DefaultScaleTolerance is the relative display-scale change that
	// counts as material.
	DefaultScaleTolerance = 0.05

	// DefaultSatelliteAltKm is a typical polar-orbiter altitude.
	DefaultSatelliteAltKm = 850.0
)

// Engine errors.
var (
	ErrDuplicateStation = errors.New("station already plotted")
	ErrUnknownStation   = errors.New("station not plotted")
	ErrInvalidScale     = errors.New("display scale must be positive and finite")
)

// State is the recompute state of an engine.
type State int

const (
	Clean State = iota // No pending recompute
	Dirty              // A change is pending
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// Config holds configuration for the engine.
type Config struct {
	EarthRadiusKm  float64
	LonMode        geo.LonMode
	MaxTrackPoints int
	MaxEvents      int
	ScaleTolerance float64
	SatelliteAltKm float64
	Swath          track.SwathConfig
	Visibility     Visibility
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		EarthRadiusKm:  geo.EarthRadiusKm,
		LonMode:        geo.LonWrapped,
		MaxTrackPoints: DefaultMaxTrackPoints,
		MaxEvents:      DefaultMaxEvents,
		ScaleTolerance: DefaultScaleTolerance,
		SatelliteAltKm: DefaultSatelliteAltKm,
		Swath:          track.DefaultSwathConfig(),
		Visibility:     AllVisible(),
	}
}

// stationEntry owns a plotted station and its last computed result.
type stationEntry struct {
	station coverage.GroundStation
	circle  *coverage.Circle
	label   PlacedLabel
	err     error
}

// Engine holds geometry inputs and the last computed scene. Independent
// engines share no state. Calls on one engine are serialized by its mutex.
type Engine struct {
	mu sync.Mutex

	cfg   Config
	log   *logging.Logger
	now   func() time.Time
	state State

	// Inputs
	samples  []track.Sample
	source   string
	swath    track.SwathConfig
	satAltKm float64
	stations map[string]*stationEntry
	order    []string
	scale    float64
	vis      Visibility

	// Last full result, before visibility filtering
	scene      *Scene
	generation int

	events *eventLog
}

// New creates an engine. A nil logger discards output.
func New(cfg Config, log *logging.Logger) *Engine {
	def := DefaultConfig()
	if cfg.EarthRadiusKm <= 0 {
		cfg.EarthRadiusKm = def.EarthRadiusKm
	}
	if cfg.ScaleTolerance <= 0 {
		cfg.ScaleTolerance = def.ScaleTolerance
	}
	if cfg.SatelliteAltKm <= 0 {
		cfg.SatelliteAltKm = def.SatelliteAltKm
	}
	if cfg.Swath.LabelInterval <= 0 {
		cfg.Swath.LabelInterval = track.DefaultLabelInterval
	}
	if log == nil {
		log = logging.Discard()
	}

	return &Engine{
		cfg:      cfg,
		log:      log.Named("engine"),
		now:      time.Now,
		state:    Clean,
		swath:    cfg.Swath,
		satAltKm: cfg.SatelliteAltKm,
		stations: make(map[string]*stationEntry),
		scale:    1,
		vis:      cfg.Visibility,
		events:   newEventLog(cfg.MaxEvents),
	}
}

// State returns the current recompute state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Dirty reports whether a recompute is pending.
func (e *Engine) Dirty() bool {
	return e.State() == Dirty
}

func (e *Engine) markDirty() {
	e.state = Dirty
}

func (e *Engine) addEvent(t EventType, station, format string, args ...interface{}) {
	e.events.add(Event{
		Type:      t,
		Timestamp: e.now(),
		Station:   station,
		Message:   fmt.Sprintf(format, args...),
	})
}

// SetTrack replaces the ground track. Samples with non-finite coordinates
// or latitude outside [-90, 90] are dropped, longitudes are normalized and
// tracks longer than MaxTrackPoints are decimated. Retained samples keep
// their original Index. The input slice is not modified.
func (e *Engine) SetTrack(source string, samples []track.Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clean := make([]track.Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Point.Valid() {
			continue
		}
		s.Point = geo.NewPoint(s.Point.Lat, s.Point.Lon)
		clean = append(clean, s)
	}

	if dropped := len(samples) - len(clean); dropped > 0 {
		e.log.Warn("dropped %d of %d track samples with invalid coordinates", dropped, len(samples))
		e.addEvent(EventSamplesDropped, "", "dropped %d invalid samples", dropped)
	}

	if limit := e.cfg.MaxTrackPoints; limit > 0 && len(clean) > limit {
		before := len(clean)
		clean = track.Decimate(clean, limit)
		e.log.Warn("track has %d samples, decimated to %d", before, len(clean))
		e.addEvent(EventDecimated, "", "decimated %d samples to %d", before, len(clean))
	}

	e.samples = clean
	e.source = source
	e.addEvent(EventTrackReplaced, "", "%s: %d samples", source, len(clean))
	e.markDirty()
}

// Samples returns a copy of the current (sanitized) track.
func (e *Engine) Samples() []track.Sample {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]track.Sample, len(e.samples))
	copy(out, e.samples)
	return out
}

// Source returns the name of the current track source.
func (e *Engine) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// SwathConfig returns the current swath configuration.
func (e *Engine) SwathConfig() track.SwathConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.swath
}

// SetSwathConfig replaces width, label interval and label threshold at once.
func (e *Engine) SetSwathConfig(cfg track.SwathConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg.LabelInterval <= 0 {
		cfg.LabelInterval = track.DefaultLabelInterval
	}
	if cfg != e.swath {
		e.swath = cfg
		e.markDirty()
	}
}

// SetSwathWidth sets the full swath width in km; 0 disables edges.
func (e *Engine) SetSwathWidth(km float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if km != e.swath.WidthKm {
		e.swath.WidthKm = km
		e.markDirty()
	}
}

// SetLabelInterval sets the sample stride between time labels.
func (e *Engine) SetLabelInterval(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n <= 0 {
		n = track.DefaultLabelInterval
	}
	if n != e.swath.LabelInterval {
		e.swath.LabelInterval = n
		e.markDirty()
	}
}

// SetDistanceThreshold sets the minimum spacing between time labels.
func (e *Engine) SetDistanceThreshold(km float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if km != e.swath.DistanceThresholdKm {
		e.swath.DistanceThresholdKm = km
		e.markDirty()
	}
}

// SatelliteAltitude returns the altitude used by the coverage solver.
func (e *Engine) SatelliteAltitude() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.satAltKm
}

// SetSatelliteAltitude sets the satellite altitude in km.
func (e *Engine) SetSatelliteAltitude(km float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if km != e.satAltKm {
		e.satAltKm = km
		e.markDirty()
	}
}

// AddStation plots a station. Names are unique.
func (e *Engine) AddStation(st coverage.GroundStation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.stations[st.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateStation, st.Name)
	}

	e.stations[st.Name] = &stationEntry{station: st}
	e.order = append(e.order, st.Name)
	e.addEvent(EventStationAdded, st.Name, "added at %.3f, %.3f", st.Lat, st.Lon)
	e.markDirty()
	return nil
}

// RemoveStation stops plotting a station and discards its result.
func (e *Engine) RemoveStation(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.stations[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}

	delete(e.stations, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.addEvent(EventStationRemoved, name, "removed")
	e.markDirty()
	return nil
}

// UpdateStationElevation changes a station's minimum antenna elevation.
func (e *Engine) UpdateStationElevation(name string, angleDeg float64) error {
	return e.editStation(name, func(st *coverage.GroundStation) bool {
		if st.AntennaAngle == angleDeg {
			return false
		}
		st.AntennaAngle = angleDeg
		return true
	}, "antenna angle %.1f°", angleDeg)
}

// UpdateStationAltitude changes a station's altitude in meters.
func (e *Engine) UpdateStationAltitude(name string, altitudeM float64) error {
	return e.editStation(name, func(st *coverage.GroundStation) bool {
		if st.AltitudeM == altitudeM {
			return false
		}
		st.AltitudeM = altitudeM
		return true
	}, "altitude %.0f m", altitudeM)
}

func (e *Engine) editStation(name string, edit func(*coverage.GroundStation) bool, format string, args ...interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.stations[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	if !edit(&entry.station) {
		return nil
	}

	// The old ring no longer matches the station
	entry.circle = nil
	entry.err = nil
	e.addEvent(EventStationEdited, name, format, args...)
	e.markDirty()
	return nil
}

// Stations returns the plotted stations in the order they were added.
func (e *Engine) Stations() []coverage.GroundStation {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]coverage.GroundStation, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.stations[name].station)
	}
	return out
}

// SetDisplayScale records the display scale used for label sizing. The
// scale is always stored; only a relative change beyond the configured
// tolerance, measured against the scale of the last recompute, marks the
// engine dirty.
func (e *Engine) SetDisplayScale(scale float64) error {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ref := e.scale
	if e.scene != nil {
		ref = e.scene.DisplayScale
	}
	e.scale = scale
	if math.Abs(scale-ref)/ref > e.cfg.ScaleTolerance {
		e.markDirty()
	}
	return nil
}

// RecordRejected logs an input that failed validation. Nothing else about
// the engine changes.
func (e *Engine) RecordRejected(field string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.log.Warn("rejected %s: %v", field, err)
	e.addEvent(EventValidationRejected, "", "%s: %v", field, err)
}

// Visibility returns the current visibility toggles.
func (e *Engine) Visibility() Visibility {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vis
}

// SetVisibility changes what the next scene shows. Hiding never needs a
// recompute; showing needs one only when nothing has been computed yet.
func (e *Engine) SetVisibility(v Visibility) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v.enables(e.vis) && e.scene == nil {
		e.markDirty()
	}
	e.vis = v
}

// Redraw returns the scene for the current inputs, recomputing only when a
// change is pending or nothing has been computed yet.
func (e *Engine) Redraw() *Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Dirty || e.scene == nil {
		e.recompute()
	}
	return e.scene.filtered(e.vis, e.scale)
}

// Recompute recomputes every curve from the current inputs and returns
// the resulting scene. The engine is Clean afterwards.
func (e *Engine) Recompute() *Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recompute()
	return e.scene.filtered(e.vis, e.scale)
}

func (e *Engine) recompute() {
	start := e.now()
	r := e.cfg.EarthRadiusKm

	e.generation++
	scene := &Scene{
		Generation:     e.generation,
		Source:         e.source,
		Config:         e.swath,
		SatelliteAltKm: e.satAltKm,
		DisplayScale:   e.scale,
		LonMode:        e.cfg.LonMode,
	}

	points := track.Points(e.samples)
	scene.Centerline = geo.Curve{Points: points}
	scene.TimeLabels = track.SampleLabels(e.samples, e.swath, r)

	if e.swath.HasSwath() {
		swath, err := track.ProjectSwathChecked(points, e.swath.WidthKm, r)
		scene.Swath = swath
		if err != nil {
			scene.TrackErr = err
			e.log.Debug("no swath edges: %v", err)
			e.addEvent(EventDegenerateTrack, "", "%v", err)
		}
	}

	for _, name := range e.order {
		entry := e.stations[name]
		e.solveStation(entry)

		if pos := entry.station.Position(); pos.Valid() {
			scene.StationLabels = append(scene.StationLabels, entry.label)
		}
		if entry.err != nil {
			scene.Problems = append(scene.Problems, StationProblem{Station: name, Err: entry.err})
			continue
		}
		scene.Coverage = append(scene.Coverage, StationCoverage{
			Station: entry.station,
			Circle:  *entry.circle,
			Label:   entry.label,
		})
	}

	e.scene = scene
	e.state = Clean

	elapsed := e.now().Sub(start)
	e.log.Debug("recompute #%d: %d samples, %d labels, %d stations (%d omitted) in %s",
		scene.Generation, len(points), len(scene.TimeLabels), len(e.order), len(scene.Problems), elapsed)
	e.addEvent(EventRecompute, "", "%d samples, %d rings, %d omitted",
		len(points), len(scene.Coverage), len(scene.Problems))
}

// solveStation recomputes one station's ring. A failure only affects the
// station itself.
func (e *Engine) solveStation(entry *stationEntry) {
	st := entry.station
	entry.label = PlacedLabel{Point: st.Position(), Text: st.Name}

	circle, err := coverage.Solve(st, e.satAltKm, e.cfg.EarthRadiusKm)
	if err != nil {
		entry.circle = nil
		entry.err = err
		e.log.Warn("omitting coverage for %s: %v", st.Name, err)
		e.addEvent(EventStationOmitted, st.Name, "%v", err)
		return
	}
	entry.circle = &circle
	entry.err = nil
}

// StationError returns the error from the last solve of a station, if any.
func (e *Engine) StationError(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.stations[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return entry.err
}

// RecentEvents returns the last n events, oldest first.
func (e *Engine) RecentEvents(n int) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events.last(n)
}
