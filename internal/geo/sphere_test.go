package geo

import (
	"math"
	"testing"
)

// samplePoints is a fixed grid that covers poles-adjacent latitudes and
// both sides of the antimeridian.
func samplePoints() []Point {
	var pts []Point
	for _, lat := range []float64{-89, -60, -30, 0, 15, 45, 75, 89} {
		for _, lon := range []float64{-179.5, -120, -45, 0, 30, 90, 150, 179.9, 180} {
			pts = append(pts, Point{Lat: lat, Lon: lon})
		}
	}
	return pts
}

func TestNormalizeLon(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{-540, 180},
		{359, -1},
		{720.5, 0.5},
		{0.1, 0.1},
	}

	for _, tt := range tests {
		got := NormalizeLon(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeLon(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got <= -180 || got > 180 {
			t.Errorf("NormalizeLon(%v) = %v out of (-180, 180]", tt.in, got)
		}
	}
}

func TestNormalizeLon_InRangeIsExact(t *testing.T) {
	for _, lon := range []float64{0.1, -179.999999, 179.9, 33.333333333} {
		if got := NormalizeLon(lon); got != lon {
			t.Errorf("NormalizeLon(%v) = %v, want exact input", lon, got)
		}
	}
}

func TestBearing_Cardinal(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}
	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"north", Point{Lat: 1, Lon: 0}, 0},
		{"east", Point{Lat: 0, Lon: 1}, 90},
		{"south", Point{Lat: -1, Lon: 0}, 180},
		{"west", Point{Lat: 0, Lon: -1}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(origin, tt.to)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Bearing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBearing_AcrossAntimeridian(t *testing.T) {
	// A short hop eastward over the dateline must read as east, not west
	got := Bearing(Point{Lat: 0, Lon: 179.5}, Point{Lat: 0, Lon: -179.5})
	if math.Abs(got-90) > 1e-9 {
		t.Errorf("Bearing across antimeridian = %v, want 90", got)
	}
}

func TestBearing_Range(t *testing.T) {
	pts := samplePoints()
	for _, a := range pts {
		for _, b := range pts {
			if Coincident(a, b) {
				continue
			}
			got := Bearing(a, b)
			if got < 0 || got >= 360 || math.IsNaN(got) {
				t.Fatalf("Bearing(%v, %v) = %v out of [0, 360)", a, b, got)
			}
		}
	}
}

func TestDestination_RoundTrip(t *testing.T) {
	pts := samplePoints()
	const tol = 1e-6 // degrees

	for _, a := range pts {
		for _, b := range pts {
			if Coincident(a, b) {
				continue
			}
			d := AngularDistance(a, b)
			// Antipodal pairs have no unique bearing
			if math.Pi-d < 1e-6 {
				continue
			}

			got := Destination(a, Bearing(a, b), d)
			if AngularDistance(got, b)*EarthRadiusKm > tol*111 {
				t.Errorf("Destination(%v, Bearing, dist) = %v, want %v", a, got, b)
			}
		}
	}
}

func TestDestination_ZeroDistanceIdentity(t *testing.T) {
	for _, p := range samplePoints() {
		for _, bearing := range []float64{0, 37, 90, 180, 271.5, 359.9} {
			got := Destination(p, bearing, 0)
			want := NewPoint(p.Lat, p.Lon)
			if got != want {
				t.Errorf("Destination(%v, %v, 0) = %v, want %v", p, bearing, got, want)
			}
		}
	}
}

func TestDestination_WrapsPastAntimeridian(t *testing.T) {
	start := Point{Lat: 0, Lon: 179.9}
	got := Destination(start, 90, KmToAngle(50, EarthRadiusKm))

	if got.Lon <= -180 || got.Lon > 180 {
		t.Fatalf("Lon = %v out of (-180, 180]", got.Lon)
	}
	if got.Lon > -179 || got.Lon < -180 {
		t.Errorf("Lon = %v, want just past -180", got.Lon)
	}
	if math.Abs(got.Lat) > 1e-9 {
		t.Errorf("Lat = %v, want 0", got.Lat)
	}
}

func TestDestination_OverPole(t *testing.T) {
	start := Point{Lat: 89, Lon: 0}
	// 2° of arc northward crosses the pole and lands at 89°N on the far side
	got := Destination(start, 0, 2*math.Pi/180)

	if math.Abs(got.Lat-89) > 1e-6 {
		t.Errorf("Lat = %v, want 89", got.Lat)
	}
	if math.Abs(math.Abs(got.Lon)-180) > 1e-6 {
		t.Errorf("Lon = %v, want ±180", got.Lon)
	}
}

func TestDistanceKm(t *testing.T) {
	a := Point{Lat: 0, Lon: 0}
	b := Point{Lat: 0, Lon: 1}

	got := DistanceKm(a, b, EarthRadiusKm)
	want := EarthRadiusKm * math.Pi / 180
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("DistanceKm() = %v, want %v", got, want)
	}

	// Distance is symmetric and ignores the longitude seam
	c := Point{Lat: 10, Lon: 179.5}
	d := Point{Lat: 10, Lon: -179.5}
	if math.Abs(DistanceKm(c, d, EarthRadiusKm)-DistanceKm(d, c, EarthRadiusKm)) > 1e-9 {
		t.Error("DistanceKm should be symmetric")
	}
	if DistanceKm(c, d, EarthRadiusKm) > 120 {
		t.Errorf("DistanceKm across seam = %v, want ~110", DistanceKm(c, d, EarthRadiusKm))
	}
}

func TestCoincident(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"same", Point{10, 20}, Point{10, 20}, true},
		{"seam", Point{10, 180}, Point{10, -180}, true},
		{"pole any lon", Point{90, 10}, Point{90, -100}, true},
		{"different", Point{10, 20}, Point{10, 20.001}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coincident(tt.a, tt.b); got != tt.want {
				t.Errorf("Coincident() = %v, want %v", got, tt.want)
			}
		})
	}
}
