package ephem

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-swath/internal/geo"
)

// ISS (ZARYA) elements with valid checksums; epoch 2008-09-20 12:25:40 UTC.
const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

var issEpoch = time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)

func issTLE() TLE {
	return TLE{Name: "ISS (ZARYA)", Line1: issLine1, Line2: issLine2}
}

// withChecksum replaces the last character of a TLE line.
func withChecksum(line string, c byte) string {
	return line[:len(line)-1] + string(c)
}

func TestTLE_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tle     TLE
		wantErr bool
	}{
		{"valid", issTLE(), false},
		{"bad checksum line 1", TLE{Line1: withChecksum(issLine1, '8'), Line2: issLine2}, true},
		{"bad checksum line 2", TLE{Line1: issLine1, Line2: withChecksum(issLine2, '0')}, true},
		{"short line", TLE{Line1: issLine1[:60], Line2: issLine2}, true},
		{"swapped lines", TLE{Line1: issLine2, Line2: issLine1}, true},
		{"empty", TLE{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tle.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTLE) {
				t.Errorf("error %v does not wrap ErrInvalidTLE", err)
			}
		})
	}
}

func TestReadTLE(t *testing.T) {
	t.Run("three lines", func(t *testing.T) {
		input := "ISS (ZARYA)\n" + issLine1 + "\r\n" + issLine2 + "\n"
		tle, err := ReadTLE(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadTLE failed: %v", err)
		}
		if tle.Name != "ISS (ZARYA)" {
			t.Errorf("Name = %q, want ISS (ZARYA)", tle.Name)
		}
		if tle.Line1 != issLine1 || tle.Line2 != issLine2 {
			t.Error("element lines not preserved")
		}
	})

	t.Run("two lines with blanks", func(t *testing.T) {
		input := "\n" + issLine1 + "\n\n" + issLine2 + "\n"
		tle, err := ReadTLE(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadTLE failed: %v", err)
		}
		if tle.Name != "" {
			t.Errorf("Name = %q, want empty", tle.Name)
		}
	})

	t.Run("too few lines", func(t *testing.T) {
		_, err := ReadTLE(strings.NewReader(issLine1 + "\n"))
		if !errors.Is(err, ErrInvalidTLE) {
			t.Errorf("error = %v, want ErrInvalidTLE", err)
		}
	})
}

func TestSGP4Provider_Name(t *testing.T) {
	p, err := NewSGP4Provider(issTLE())
	if err != nil {
		t.Fatalf("NewSGP4Provider failed: %v", err)
	}
	if p.Name() != "ISS (ZARYA)" {
		t.Errorf("Name() = %q", p.Name())
	}

	unnamed, err := NewSGP4Provider(TLE{Line1: issLine1, Line2: issLine2})
	if err != nil {
		t.Fatalf("NewSGP4Provider failed: %v", err)
	}
	if unnamed.Name() != "NORAD 25544" {
		t.Errorf("Name() = %q, want NORAD 25544", unnamed.Name())
	}
}

func TestSGP4Provider_RejectsInvalidTLE(t *testing.T) {
	_, err := NewSGP4Provider(TLE{Line1: withChecksum(issLine1, '0'), Line2: issLine2})
	if !errors.Is(err, ErrInvalidTLE) {
		t.Errorf("error = %v, want ErrInvalidTLE", err)
	}
}

func TestSGP4Provider_Pass(t *testing.T) {
	p, err := NewSGP4Provider(issTLE())
	if err != nil {
		t.Fatalf("NewSGP4Provider failed: %v", err)
	}

	pass, err := p.Pass(issEpoch, issEpoch.Add(10*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("Pass failed: %v", err)
	}

	if len(pass.Samples) != 11 {
		t.Fatalf("len(Samples) = %d, want 11", len(pass.Samples))
	}

	// ISS altitude in 2008 was roughly 350 km
	if pass.MeanAltitudeKm < 250 || pass.MeanAltitudeKm > 450 {
		t.Errorf("MeanAltitudeKm = %.1f, want 250..450", pass.MeanAltitudeKm)
	}

	for i, s := range pass.Samples {
		if s.Index != i {
			t.Errorf("Samples[%d].Index = %d", i, s.Index)
		}
		if !s.Point.Valid() || s.Point.Lon <= -180 || s.Point.Lon > 180 {
			t.Errorf("Samples[%d] out of range: %+v", i, s.Point)
		}
		// Geodetic latitude is bounded by the inclination plus a small margin
		if math.Abs(s.Point.Lat) > 52.5 {
			t.Errorf("Samples[%d].Lat = %.2f exceeds inclination", i, s.Point.Lat)
		}
		want := issEpoch.Add(time.Duration(i) * time.Minute).Format("15:04:05")
		if s.Label != want {
			t.Errorf("Samples[%d].Label = %q, want %q", i, s.Label, want)
		}
	}

	// About 7.3 km/s over the ground, less the earth's rotation
	for i := 1; i < len(pass.Samples); i++ {
		d := geo.DistanceKm(pass.Samples[i-1].Point, pass.Samples[i].Point, geo.EarthRadiusKm)
		if d < 300 || d > 550 {
			t.Errorf("step %d ground distance = %.1f km, want 300..550", i, d)
		}
	}
}

func TestSGP4Provider_PassCached(t *testing.T) {
	p, err := NewSGP4Provider(issTLE())
	if err != nil {
		t.Fatalf("NewSGP4Provider failed: %v", err)
	}

	a, err := p.Pass(issEpoch, issEpoch.Add(5*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	b, err := p.Pass(issEpoch, issEpoch.Add(5*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	if &a.Samples[0] != &b.Samples[0] {
		t.Error("second Pass over the same range should come from cache")
	}
}

func TestSGP4Provider_PassInvalidRange(t *testing.T) {
	p, err := NewSGP4Provider(issTLE())
	if err != nil {
		t.Fatalf("NewSGP4Provider failed: %v", err)
	}

	if _, err := p.Pass(issEpoch, issEpoch.Add(time.Hour), 0); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("zero step error = %v, want ErrInvalidStep", err)
	}
	if _, err := p.Pass(issEpoch, issEpoch, time.Minute); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("empty range error = %v, want ErrInvalidRange", err)
	}
}

func TestGreatCirclePath_Equatorial(t *testing.T) {
	g := GreatCirclePath{
		Origin:     geo.Point{Lat: 0, Lon: 0},
		HeadingDeg: 90,
		SpeedKmS:   1,
		Epoch:      issEpoch,
		AltitudeKm: 850,
	}

	pass, err := g.Pass(issEpoch, issEpoch.Add(10*time.Minute), time.Minute)
	if err != nil {
		t.Fatalf("Pass failed: %v", err)
	}
	if len(pass.Samples) != 11 {
		t.Fatalf("len(Samples) = %d, want 11", len(pass.Samples))
	}
	if pass.MeanAltitudeKm != 850 {
		t.Errorf("MeanAltitudeKm = %v, want 850", pass.MeanAltitudeKm)
	}

	stepDeg := 60 / geo.EarthRadiusKm * 180 / math.Pi
	for i, s := range pass.Samples {
		if math.Abs(s.Point.Lat) > 1e-9 {
			t.Errorf("Samples[%d].Lat = %v, want 0", i, s.Point.Lat)
		}
		if want := float64(i) * stepDeg; math.Abs(s.Point.Lon-want) > 1e-9 {
			t.Errorf("Samples[%d].Lon = %v, want %v", i, s.Point.Lon, want)
		}
	}
}

func TestGreatCirclePath_BeforeEpoch(t *testing.T) {
	g := GreatCirclePath{HeadingDeg: 90, SpeedKmS: 1, Epoch: issEpoch}

	p := g.At(issEpoch.Add(-time.Minute))
	if p.Lon >= 0 {
		t.Errorf("position before epoch Lon = %v, want negative", p.Lon)
	}
	if g.Name() != "synthetic" {
		t.Errorf("Name() = %q, want synthetic", g.Name())
	}
}

func TestGreatCirclePath_InvalidOrigin(t *testing.T) {
	g := GreatCirclePath{Origin: geo.Point{Lat: 95}, SpeedKmS: 1, Epoch: issEpoch}
	if _, err := g.Pass(issEpoch, issEpoch.Add(time.Minute), time.Second); err == nil {
		t.Error("expected error for out-of-range origin")
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("synthetic") != ModeSynthetic {
		t.Error("ParseMode(synthetic) != ModeSynthetic")
	}
	if ParseMode("anything") != ModeSGP4 {
		t.Error("ParseMode default should be ModeSGP4")
	}
	if ModeSynthetic.String() != "synthetic" || ModeSGP4.String() != "sgp4" {
		t.Error("Mode.String mismatch")
	}
}
