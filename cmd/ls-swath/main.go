// Command ls-swath draws satellite ground tracks, instrument swaths and
// ground-station coverage rings in the terminal or as GeoJSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-swath/internal/config"
	"github.com/litescript/ls-swath/internal/coverage"
	"github.com/litescript/ls-swath/internal/engine"
	"github.com/litescript/ls-swath/internal/ephem"
	"github.com/litescript/ls-swath/internal/export"
	"github.com/litescript/ls-swath/internal/geo"
	"github.com/litescript/ls-swath/internal/logging"
	"github.com/litescript/ls-swath/internal/ui"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// CLI flags
var (
	tlePath        string
	tleName        string
	sourceMode     string
	startStr       string
	duration       time.Duration
	step           time.Duration
	sensorName     string
	widthStr       string
	intervalStr    string
	thresholdStr   string
	satAltStr      string
	antennaStr     string
	lonModeStr     string
	stations       stringList
	customStations stringList
	geojsonPath    string
	summaryMode    bool
	eventsMode     bool
	watchInterval  time.Duration
	logLevel       string
	logFile        string
)

const (
	minStep  = 1 * time.Second
	maxSteps = 200000
	minWatch = 1 * time.Second
)

func main() {
	flag.StringVar(&tlePath, "tle", "", "Two- or three-line element set file (use - for stdin)")
	flag.StringVar(&tleName, "tle-name", "", "Satellite name, overriding the element set's name line")
	flag.StringVar(&sourceMode, "source", "sgp4", "Track source (sgp4, synthetic)")
	flag.StringVar(&startStr, "start", "", "Track start time, RFC 3339 (default now)")
	flag.DurationVar(&duration, "duration", ephem.DefaultPassDuration, "Track duration")
	flag.DurationVar(&step, "step", ephem.DefaultPassStep, "Time between track samples")
	flag.StringVar(&sensorName, "sensor", "", "Sensor name from the swath-width table (e.g., VIIRS)")
	flag.StringVar(&widthStr, "width", "", "Swath width in km, or N/A")
	flag.StringVar(&intervalStr, "interval", "", "Time label every N samples")
	flag.StringVar(&thresholdStr, "threshold", "", "Minimum km between time labels")
	flag.StringVar(&satAltStr, "sat-alt", "", "Satellite altitude in km for coverage (default from track)")
	flag.StringVar(&antennaStr, "antenna", "", "Minimum antenna elevation in degrees (5-90)")
	flag.StringVar(&lonModeStr, "lon-mode", "wrapped", "Longitude output (wrapped, continuous)")
	flag.Var(&stations, "station", "Catalog ground station (repeatable): "+strings.Join(coverage.CatalogNames(), ", "))
	flag.Var(&customStations, "custom-station", "Custom ground station name:lat:lon[:alt_m] (repeatable)")
	flag.StringVar(&geojsonPath, "geojson", "", "Export GeoJSON to file (use - for stdout)")
	flag.BoolVar(&summaryMode, "summary", false, "Print text summary instead of TUI")
	flag.BoolVar(&eventsMode, "events", false, "Print recent engine events after the summary")
	flag.DurationVar(&watchInterval, "watch", 0, "Recompute from the current time at interval (headless)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Write log output to file")
	flag.Parse()

	logger := logging.New(logging.ParseLevel(logLevel))
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	if err := run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *logging.Logger) error {
	// Clamp sampling so a bad flag cannot allocate an unbounded track
	if step < minStep {
		step = minStep
	}
	if duration <= 0 {
		duration = ephem.DefaultPassDuration
	}
	if int(duration/step) > maxSteps {
		step = duration / maxSteps
	}
	if watchInterval > 0 && watchInterval < minWatch {
		watchInterval = minWatch
	}

	sensors, err := config.DefaultSensorTable()
	if err != nil {
		return err
	}
	cfg := engine.DefaultConfig()
	cfg.LonMode = geo.ParseLonMode(lonModeStr)
	eng := engine.New(cfg, logger)

	settings, err := buildSettings(sensors, eng)
	if err != nil {
		return err
	}

	provider, err := buildProvider()
	if err != nil {
		return err
	}

	if err := addStations(eng, settings, logger); err != nil {
		return err
	}

	start := time.Now().UTC()
	fixedStart := startStr != ""
	if fixedStart {
		if start, err = time.Parse(time.RFC3339, startStr); err != nil {
			return fmt.Errorf("parse -start: %w", err)
		}
	}
	if err := loadTrack(eng, settings, provider, start, logger); err != nil {
		return err
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	headless := summaryMode || eventsMode || geojsonPath != "" || watchInterval > 0 ||
		!term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		return runHeadless(ctx, eng, settings, provider, fixedStart, logger)
	}

	// Logging would corrupt the alt screen
	if logFile == "" {
		logger.SetOutput(io.Discard)
	}

	p := tea.NewProgram(ui.New(eng, settings, sensors, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// buildSettings applies the display flags through the validating setters
// and hands the result to eng. A rejected flag is recorded on eng.
func buildSettings(sensors *config.SensorTable, eng *engine.Engine) (*config.Settings, error) {
	settings := config.DefaultSettings()

	if sensorName != "" {
		if err := settings.SetSensor(sensors, sensorName); err != nil {
			eng.RecordRejected("-sensor", err)
			return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(sensors.Names(), ", "))
		}
	}
	setters := []struct {
		flag  string
		value string
		set   func(string) error
	}{
		{"-width", widthStr, settings.SetSwathWidth},
		{"-interval", intervalStr, settings.SetLabelInterval},
		{"-threshold", thresholdStr, settings.SetDistanceThreshold},
		{"-sat-alt", satAltStr, settings.SetSatelliteAltitude},
		{"-antenna", antennaStr, settings.SetAntennaAngle},
	}
	for _, s := range setters {
		if s.value == "" {
			continue
		}
		if err := s.set(s.value); err != nil {
			eng.RecordRejected(s.flag, err)
			return nil, err
		}
	}

	eng.SetSwathConfig(settings.SwathConfig())
	eng.SetSatelliteAltitude(settings.SatelliteAltKm())
	return &settings, nil
}

// buildProvider selects the track source. Without an element set the
// synthetic path is used.
func buildProvider() (ephem.Provider, error) {
	mode := ephem.ParseMode(sourceMode)
	if tlePath == "" {
		mode = ephem.ModeSynthetic
	}

	if mode == ephem.ModeSynthetic {
		return ephem.GreatCirclePath{
			Label:      "synthetic",
			Origin:     geo.Point{Lat: 0, Lon: 0},
			HeadingDeg: 8, // Near-polar, like a sun-synchronous orbit
			SpeedKmS:   6.6,
			Epoch:      time.Now().UTC(),
			AltitudeKm: config.DefaultSatelliteAltKm,
		}, nil
	}

	r := io.Reader(os.Stdin)
	if tlePath != "-" {
		f, err := os.Open(tlePath)
		if err != nil {
			return nil, fmt.Errorf("open TLE: %w", err)
		}
		defer f.Close()
		r = f
	}

	tle, err := ephem.ReadTLE(r)
	if err != nil {
		return nil, err
	}
	if tleName != "" {
		tle.Name = tleName
	}
	return ephem.NewSGP4Provider(tle)
}

func addStations(eng *engine.Engine, settings *config.Settings, logger *logging.Logger) error {
	angle := float64(settings.AntennaAngle())

	for _, name := range stations {
		info, ok := coverage.LookupStation(name)
		if !ok {
			return fmt.Errorf("unknown station %q (known: %s)", name, strings.Join(coverage.CatalogNames(), ", "))
		}
		if err := eng.AddStation(coverage.FromCatalog(info, angle)); err != nil {
			logger.Warn("Skipping station: %v", err)
		}
	}

	for _, spec := range customStations {
		st, err := config.ParseCustomStation(spec, settings.AntennaAngle())
		if err != nil {
			eng.RecordRejected("-custom-station", err)
			return err
		}
		if err := eng.AddStation(st); err != nil {
			logger.Warn("Skipping station: %v", err)
		}
	}
	return nil
}

// loadTrack fetches a pass starting at start and hands it to the engine.
// The pass mean altitude becomes the coverage altitude unless -sat-alt
// was given.
func loadTrack(eng *engine.Engine, settings *config.Settings, provider ephem.Provider, start time.Time, logger *logging.Logger) error {
	log := logger.Named("ephem")
	log.Debug("Computing %s pass from %s for %v", provider.Name(), start.Format(time.RFC3339), duration)

	pass, err := provider.Pass(start, start.Add(duration), step)
	if err != nil {
		return fmt.Errorf("compute %s pass: %w", provider.Name(), err)
	}
	log.Debug("Pass complete: %d samples, mean altitude %.1f km", len(pass.Samples), pass.MeanAltitudeKm)

	eng.SetTrack(provider.Name(), pass.Samples)

	if satAltStr == "" && pass.MeanAltitudeKm > 0 {
		if err := settings.SetSatelliteAltitude(strconv.FormatFloat(pass.MeanAltitudeKm, 'f', 1, 64)); err == nil {
			eng.SetSatelliteAltitude(settings.SatelliteAltKm())
		}
	}
	return nil
}

// runHeadless writes the requested outputs once, or repeatedly in watch mode.
func runHeadless(ctx context.Context, eng *engine.Engine, settings *config.Settings, provider ephem.Provider, fixedStart bool, logger *logging.Logger) error {
	if !summaryMode && !eventsMode && geojsonPath == "" {
		summaryMode = true
	}

	outputOnce := func() error {
		scene := eng.Redraw()

		if geojsonPath != "" {
			if err := writeGeoJSON(scene); err != nil {
				return err
			}
		}

		// Keep stdout clean for GeoJSON
		if summaryMode && geojsonPath != "-" {
			export.WriteSummaryTable(os.Stdout, scene, eng.Stations(), time.Now())
		}

		if eventsMode && geojsonPath != "-" {
			fmt.Println()
			for _, ev := range eng.RecentEvents(10) {
				fmt.Printf("%s  %-16s %s\n", ev.Timestamp.Format("15:04:05"), ev.Type, ev.Message)
			}
		}
		return nil
	}

	if err := outputOnce(); err != nil {
		return err
	}
	if watchInterval == 0 {
		return nil
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !fixedStart {
				if err := loadTrack(eng, settings, provider, time.Now().UTC(), logger); err != nil {
					logger.Error("Track refresh failed: %v", err)
					continue
				}
			}
			if geojsonPath != "-" {
				fmt.Println()
			}
			if err := outputOnce(); err != nil {
				logger.Error("Output failed: %v", err)
			}
		}
	}
}

func writeGeoJSON(scene *engine.Scene) error {
	if geojsonPath == "-" {
		if err := export.WriteGeoJSON(os.Stdout, scene); err != nil {
			return fmt.Errorf("write GeoJSON to stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(geojsonPath)
	if err != nil {
		return fmt.Errorf("create GeoJSON file: %w", err)
	}
	defer f.Close()
	if err := export.WriteGeoJSON(f, scene); err != nil {
		return fmt.Errorf("write GeoJSON to file: %w", err)
	}
	return nil
}
