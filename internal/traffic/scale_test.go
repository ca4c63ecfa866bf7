package traffic

import (
	"math"
	"testing"
)

func TestRadiusScaleRanges(t *testing.T) {
	s := NewRadiusScale(100)

	if got := s.Radius(0); got != 0 {
		t.Errorf("Expected radius 0 at zero traffic, got %f", got)
	}
	if got := s.Radius(100); got != 25 {
		t.Errorf("Expected radius 25 at max traffic, got %f", got)
	}
	if got := s.Radius(25); got != 12.5 {
		t.Errorf("Expected square-root radius 12.5 at quarter traffic, got %f", got)
	}

	s.UseRange(true)
	if s.Range() != FilteredRange {
		t.Errorf("Expected filtered range, got %+v", s.Range())
	}
	if got := s.Radius(0); got != 3 {
		t.Errorf("Expected filtered minimum 3, got %f", got)
	}
	if got := s.Radius(100); got != 50 {
		t.Errorf("Expected filtered maximum 50, got %f", got)
	}
	if s.DomainMax() != 100 {
		t.Errorf("Domain must not change with range, got %f", s.DomainMax())
	}

	s.UseRange(false)
	if s.Range() != UnfilteredRange {
		t.Errorf("Expected unfiltered range, got %+v", s.Range())
	}
}

func TestRadiusScaleMonotonic(t *testing.T) {
	for _, filtered := range []bool{false, true} {
		s := NewRadiusScale(937)
		s.UseRange(filtered)
		prev := math.Inf(-1)
		for v := 0; v <= 1000; v++ {
			r := s.Radius(v)
			if r < prev {
				t.Fatalf("Radius decreased at %d (filtered=%v): %f < %f", v, filtered, r, prev)
			}
			prev = r
		}
	}
}

func TestRadiusScaleEmptyDomain(t *testing.T) {
	s := NewRadiusScale(0)
	if got := s.Radius(0); got != 0 || math.IsNaN(got) {
		t.Errorf("Expected 0 for empty domain, got %f", got)
	}
	s.UseRange(true)
	if got := s.Radius(0); got != 3 {
		t.Errorf("Expected range minimum 3 for empty domain, got %f", got)
	}
}

func TestDepartureRatio(t *testing.T) {
	tests := []struct {
		departures, arrivals int
		want                 float64
	}{
		{0, 0, DefaultDepartureRatio},
		{0, 5, 0},
		{1, 3, 0},
		{1, 2, 0.5},
		{1, 1, 0.5},
		{2, 1, 1},
		{5, 0, 1},
	}

	for _, tt := range tests {
		st := StationTraffic{
			Departures:   tt.departures,
			Arrivals:     tt.arrivals,
			TotalTraffic: tt.departures + tt.arrivals,
		}
		got := DepartureRatio(st)
		if got != tt.want {
			t.Errorf("DepartureRatio(%d dep, %d arr) = %v, expected %v", tt.departures, tt.arrivals, got, tt.want)
		}
		if math.IsNaN(got) {
			t.Errorf("DepartureRatio returned NaN for %+v", st)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := map[int]string{
		0:    "12:00 AM",
		480:  "8:00 AM",
		725:  "12:05 PM",
		1439: "11:59 PM",
	}
	for minutes, want := range tests {
		if got := FormatTime(minutes); got != want {
			t.Errorf("FormatTime(%d) = %q, expected %q", minutes, got, want)
		}
	}
}

func TestDisplayFor(t *testing.T) {
	if d := DisplayFor(NoFilter); !d.AnyTime || d.Label != "" {
		t.Errorf("Expected any-time display, got %+v", d)
	}
	if d := DisplayFor(480); d.AnyTime || d.Label != "8:00 AM" {
		t.Errorf("Expected 8:00 AM display, got %+v", d)
	}
}
