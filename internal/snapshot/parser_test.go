package snapshot

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/bikeflow-data/internal/common/logger"
)

const tripsCSV = `ride_id,rideable_type,started_at,ended_at,start_station_id,end_station_id,member_casual
R1,classic_bike,2024-03-01 08:00:10.123,2024-03-01 08:10:00.000,A32000,M32006,member
R2,electric_bike,2024-03-01 09:30:00,2024-03-01 07:00:00,M32006,A32000,casual
R3,classic_bike,not a time,2024-03-01 07:00:00,M32006,A32000,casual
R4,classic_bike,2024-03-01 23:55:00,2024-03-02 00:05:00,A32000,A32000,member
`

func newParser() *TripParser {
	return NewTripParser(time.UTC, logger.New(io.Discard))
}

func TestParseTrips(t *testing.T) {
	trips, skipped, err := newParser().ParseTrips(strings.NewReader(tripsCSV))
	if err != nil {
		t.Fatalf("ParseTrips returned error: %v", err)
	}
	if len(trips) != 3 {
		t.Fatalf("Expected 3 trips, got %d", len(trips))
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped row, got %d", skipped)
	}

	first := trips[0]
	if first.RideID != "R1" || first.StartStationID != "A32000" || first.EndStationID != "M32006" {
		t.Errorf("Unexpected first trip: %+v", first)
	}
	if first.StartedAt.Hour() != 8 || first.StartedAt.Minute() != 0 {
		t.Errorf("Expected 08:00 start, got %v", first.StartedAt)
	}
	if trips[2].EndedAt.Day() != 2 {
		t.Errorf("Expected end on next day, got %v", trips[2].EndedAt)
	}
}

func TestParseTripsColumnOrderDoesNotMatter(t *testing.T) {
	input := "end_station_id,start_station_id,ended_at,started_at\nB,A,2024-03-01 08:10:00,2024-03-01 08:00:00\n"
	trips, _, err := newParser().ParseTrips(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTrips returned error: %v", err)
	}
	if len(trips) != 1 || trips[0].StartStationID != "A" || trips[0].EndStationID != "B" {
		t.Errorf("Unexpected trips: %+v", trips)
	}
	if trips[0].RideID != "" {
		t.Errorf("Expected empty ride id without column, got %q", trips[0].RideID)
	}
}

func TestParseTripsByteOrderMark(t *testing.T) {
	input := "\ufeffstarted_at,ended_at,start_station_id,end_station_id\n2024-03-01 08:00:00,2024-03-01 08:10:00,A,B\n"
	trips, _, err := newParser().ParseTrips(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTrips returned error: %v", err)
	}
	if len(trips) != 1 {
		t.Errorf("Expected 1 trip, got %d", len(trips))
	}
}

func TestParseTripsMissingColumn(t *testing.T) {
	input := "started_at,ended_at,start_station_id\n2024-03-01 08:00:00,2024-03-01 08:10:00,A\n"
	_, _, err := newParser().ParseTrips(strings.NewReader(input))
	if errors.Cause(err) != ErrMissingColumn {
		t.Errorf("Expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "end_station_id") {
		t.Errorf("Expected column name in error, got %v", err)
	}
}

func TestParseTripsEmpty(t *testing.T) {
	_, _, err := newParser().ParseTrips(strings.NewReader(""))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Expected ErrMissingColumn for empty input, got %v", err)
	}
}

func TestParseTripsHeaderOnly(t *testing.T) {
	trips, skipped, err := newParser().ParseTrips(strings.NewReader("started_at,ended_at,start_station_id,end_station_id\n"))
	if err != nil {
		t.Fatalf("ParseTrips returned error: %v", err)
	}
	if len(trips) != 0 || skipped != 0 {
		t.Errorf("Expected no trips, got %d (skipped %d)", len(trips), skipped)
	}
}

func TestParseStations(t *testing.T) {
	doc := `{"last_updated":1709251200,"data":{"stations":[{"short_name":"A32000","name":"Fan Pier","lon":-71.04,"lat":42.35}]}}`
	stations, err := ParseStations(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseStations returned error: %v", err)
	}
	if len(stations) != 1 || stations[0].ShortName != "A32000" {
		t.Errorf("Unexpected stations: %+v", stations)
	}

	if _, err := ParseStations(strings.NewReader(`{"data":`)); err == nil {
		t.Error("Expected error for truncated document")
	}
}
