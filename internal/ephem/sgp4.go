package ephem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/litescript/ls-swath/internal/track"
)

const (
	// tleLineLength is the fixed length of a TLE data line, checksum included.
	tleLineLength = 69

	maxCachedPasses = 16
)

// TLE parsing and propagation errors.
var (
	ErrInvalidTLE        = errors.New("invalid TLE")
	ErrPropagationFailed = errors.New("SGP4 propagation failed")
)

// TLE is a named two-line element set.
type TLE struct {
	Name  string
	Line1 string
	Line2 string
}

// ReadTLE reads the first element set from r. Both the 2-line and the
// 3-line (name first) layouts are accepted; blank lines are skipped.
func ReadTLE(r io.Reader) (TLE, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 3 || (len(lines) == 2 && strings.HasPrefix(lines[0], "1 ")) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return TLE{}, fmt.Errorf("read TLE: %w", err)
	}

	var tle TLE
	switch {
	case len(lines) == 2:
		tle = TLE{Line1: lines[0], Line2: lines[1]}
	case len(lines) == 3:
		tle = TLE{Name: strings.TrimSpace(strings.TrimPrefix(lines[0], "0 ")), Line1: lines[1], Line2: lines[2]}
	default:
		return TLE{}, fmt.Errorf("%w: need 2 or 3 lines, got %d", ErrInvalidTLE, len(lines))
	}

	if err := tle.Validate(); err != nil {
		return TLE{}, err
	}
	return tle, nil
}

// Validate checks line lengths, line numbers and checksums. go-satellite
// exits the process on malformed input, so this runs before any TLEToSat.
func (t TLE) Validate() error {
	for i, line := range []string{t.Line1, t.Line2} {
		num := byte('1' + i)
		if len(line) != tleLineLength {
			return fmt.Errorf("%w: line %c length %d, want %d", ErrInvalidTLE, num, len(line), tleLineLength)
		}
		if line[0] != num || line[1] != ' ' {
			return fmt.Errorf("%w: line %c starts with %q", ErrInvalidTLE, num, line[:2])
		}
		if !validChecksum(line) {
			return fmt.Errorf("%w: line %c checksum mismatch", ErrInvalidTLE, num)
		}
	}
	if strings.TrimSpace(t.Line1[2:7]) != strings.TrimSpace(t.Line2[2:7]) {
		return fmt.Errorf("%w: catalog number differs between lines", ErrInvalidTLE)
	}
	return nil
}

// validChecksum applies the modulo-10 TLE checksum: digits count at face
// value, minus signs count as 1.
func validChecksum(line string) bool {
	sum := 0
	for i := 0; i < tleLineLength-1; i++ {
		c := line[i]
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	last := line[tleLineLength-1]
	return last >= '0' && last <= '9' && sum%10 == int(last-'0')
}

// SGP4Provider propagates a TLE with the SGP4 model.
type SGP4Provider struct {
	tle TLE
	sat satellite.Satellite

	// Pass cache
	mu    sync.RWMutex
	cache map[passKey]Pass
}

// passKey identifies a propagated range.
type passKey struct {
	start, end int64
	step       time.Duration
}

// NewSGP4Provider validates the TLE and initializes the propagator.
func NewSGP4Provider(tle TLE) (*SGP4Provider, error) {
	if err := tle.Validate(); err != nil {
		return nil, err
	}

	sat := satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("%w: init code=%d %s", ErrPropagationFailed, sat.Error, sat.ErrorStr)
	}
	return &SGP4Provider{tle: tle, sat: sat, cache: make(map[passKey]Pass)}, nil
}

// Name returns the satellite name, or the catalog number when unnamed.
func (p *SGP4Provider) Name() string {
	if p.tle.Name != "" {
		return p.tle.Name
	}
	return "NORAD " + strings.TrimSpace(p.tle.Line1[2:7])
}

// Position returns the sub-satellite point and altitude (km) at t.
func (p *SGP4Provider) Position(t time.Time) (lat, lon, altKm float64, err error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	pos, _ := satellite.Propagate(p.sat, year, int(month), day, hour, minute, sec)
	if !finite(pos.X) || !finite(pos.Y) || !finite(pos.Z) {
		return 0, 0, 0, fmt.Errorf("%w at %s: non-finite position (decayed or invalid elements)",
			ErrPropagationFailed, t.Format(time.RFC3339))
	}

	gmst := satellite.GSTimeFromDate(year, int(month), day, hour, minute, sec)
	altKm, _, ll := satellite.ECIToLLA(pos, gmst)

	lat = ll.Latitude * 180 / math.Pi
	lon = ll.Longitude * 180 / math.Pi
	if !finite(lat) || !finite(lon) || !finite(altKm) {
		return 0, 0, 0, fmt.Errorf("%w at %s: non-finite geodetic position",
			ErrPropagationFailed, t.Format(time.RFC3339))
	}
	return lat, lon, altKm, nil
}

// Pass propagates from start to end at step. A propagation failure after
// at least one good sample ends the pass early instead of failing it.
// Results are cached per range; callers must not modify the samples.
func (p *SGP4Provider) Pass(start, end time.Time, step time.Duration) (Pass, error) {
	start, end, err := checkRange(start, end, step)
	if err != nil {
		return Pass{}, err
	}

	key := passKey{start: start.UnixNano(), end: end.UnixNano(), step: step}
	p.mu.RLock()
	cached, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	pass, err := p.propagate(start, end, step)
	if err != nil {
		return Pass{}, err
	}

	p.mu.Lock()
	if len(p.cache) >= maxCachedPasses {
		clear(p.cache)
	}
	p.cache[key] = pass
	p.mu.Unlock()

	return pass, nil
}

func (p *SGP4Provider) propagate(start, end time.Time, step time.Duration) (Pass, error) {
	estimated := int(end.Sub(start)/step) + 1
	samples := make([]track.Sample, 0, estimated)
	var altSum float64

	for t := start; !t.After(end); t = t.Add(step) {
		lat, lon, alt, err := p.Position(t)
		if err != nil {
			if len(samples) > 0 {
				break
			}
			return Pass{}, err
		}
		samples = append(samples, track.NewSample(len(samples), t, lat, lon))
		altSum += alt
	}

	return Pass{
		Samples:        samples,
		Start:          start,
		End:            end,
		MeanAltitudeKm: altSum / float64(len(samples)),
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
