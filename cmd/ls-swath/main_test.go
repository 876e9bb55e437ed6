package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-swath/internal/config"
	"github.com/litescript/ls-swath/internal/engine"
	"github.com/litescript/ls-swath/internal/ephem"
	"github.com/litescript/ls-swath/internal/logging"
)

const issTLE = `ISS (ZARYA)
1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927
2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537
`

// resetFlags restores flag globals after a test.
func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		tlePath, tleName, sourceMode = "", "", "sgp4"
		sensorName, widthStr, intervalStr, thresholdStr = "", "", "", ""
		satAltStr, antennaStr = "", ""
		stations, customStations = nil, nil
		duration, step = ephem.DefaultPassDuration, ephem.DefaultPassStep
	})
}

func TestBuildSettings(t *testing.T) {
	resetFlags(t)
	sensors, err := config.DefaultSensorTable()
	if err != nil {
		t.Fatalf("DefaultSensorTable failed: %v", err)
	}

	sensorName = "viirs"
	intervalStr = "10"
	antennaStr = "15"
	eng := engine.New(engine.DefaultConfig(), nil)
	settings, err := buildSettings(sensors, eng)
	if err != nil {
		t.Fatalf("buildSettings failed: %v", err)
	}
	if settings.SwathWidthKm() != 3040 {
		t.Errorf("SwathWidthKm = %v, want 3040", settings.SwathWidthKm())
	}
	if settings.LabelInterval() != 10 || settings.AntennaAngle() != 15 {
		t.Errorf("interval=%d antenna=%d", settings.LabelInterval(), settings.AntennaAngle())
	}
	if got := eng.SwathConfig(); got.WidthKm != 3040 || got.LabelInterval != 10 {
		t.Errorf("engine swath = %+v, want width 3040 interval 10", got)
	}

	// An explicit width overrides the sensor
	widthStr = "500"
	settings, err = buildSettings(sensors, eng)
	if err != nil {
		t.Fatalf("buildSettings failed: %v", err)
	}
	if settings.SwathWidthKm() != 500 || settings.Sensor() != "" {
		t.Errorf("width=%v sensor=%q, want 500 and manual", settings.SwathWidthKm(), settings.Sensor())
	}

	antennaStr = "3"
	_, err = buildSettings(sensors, eng)
	var verr *config.ValidationError
	if !errors.As(err, &verr) || verr.Field != "antenna angle" {
		t.Errorf("err = %v, want antenna angle ValidationError", err)
	}
	events := eng.RecentEvents(1)
	if len(events) != 1 || events[0].Type != engine.EventValidationRejected {
		t.Fatalf("RecentEvents(1) = %+v, want VALIDATION_REJECTED", events)
	}
	if !strings.HasPrefix(events[0].Message, "-antenna:") {
		t.Errorf("Message = %q, want -antenna prefix", events[0].Message)
	}
}

func TestBuildProvider(t *testing.T) {
	resetFlags(t)

	p, err := buildProvider()
	if err != nil {
		t.Fatalf("buildProvider failed: %v", err)
	}
	if _, ok := p.(ephem.GreatCirclePath); !ok {
		t.Errorf("provider = %T, want synthetic without -tle", p)
	}

	tlePath = filepath.Join(t.TempDir(), "iss.tle")
	if err := os.WriteFile(tlePath, []byte(issTLE), 0o644); err != nil {
		t.Fatal(err)
	}
	tleName = "Station"
	p, err = buildProvider()
	if err != nil {
		t.Fatalf("buildProvider failed: %v", err)
	}
	if p.Name() != "Station" {
		t.Errorf("Name() = %q, want Station", p.Name())
	}

	tlePath = filepath.Join(t.TempDir(), "missing.tle")
	if _, err := buildProvider(); err == nil {
		t.Error("expected error for missing TLE file")
	}
}

func TestAddStations(t *testing.T) {
	resetFlags(t)
	settings := config.DefaultSettings()
	eng := engine.New(engine.DefaultConfig(), nil)

	stations = stringList{"Goldstone", "svalbard", "goldstone"}
	customStations = stringList{"Champaign:40:-88:200"}
	if err := addStations(eng, &settings, logging.Discard()); err != nil {
		t.Fatalf("addStations failed: %v", err)
	}
	if got := len(eng.Stations()); got != 3 {
		t.Errorf("len(Stations) = %d, want 3 (duplicate skipped)", got)
	}

	stations = stringList{"atlantis"}
	if err := addStations(engine.New(engine.DefaultConfig(), nil), &settings, logging.Discard()); err == nil {
		t.Error("expected error for unknown station")
	}
}

func TestLoadTrack_UsesPassAltitude(t *testing.T) {
	resetFlags(t)
	settings := config.DefaultSettings()
	eng := engine.New(engine.DefaultConfig(), nil)

	duration = 10 * time.Minute
	step = time.Minute
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	provider := ephem.GreatCirclePath{SpeedKmS: 7, Epoch: start, AltitudeKm: 700}

	if err := loadTrack(eng, &settings, provider, start, logging.Discard()); err != nil {
		t.Fatalf("loadTrack failed: %v", err)
	}
	if got := len(eng.Samples()); got != 11 {
		t.Errorf("len(Samples) = %d, want 11", got)
	}
	if eng.SatelliteAltitude() != 700 || settings.SatelliteAltKm() != 700 {
		t.Errorf("altitude engine=%v settings=%v, want 700", eng.SatelliteAltitude(), settings.SatelliteAltKm())
	}

	// An explicit -sat-alt wins
	satAltStr = "900"
	eng.SetSatelliteAltitude(900)
	if err := loadTrack(eng, &settings, provider, start, logging.Discard()); err != nil {
		t.Fatalf("loadTrack failed: %v", err)
	}
	if eng.SatelliteAltitude() != 900 {
		t.Errorf("altitude = %v, want 900", eng.SatelliteAltitude())
	}
}
