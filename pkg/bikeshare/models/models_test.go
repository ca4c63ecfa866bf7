package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStationUnmarshalNumericAndStringCoordinates(t *testing.T) {
	doc := `{"data":{"stations":[
		{"short_name":"A32000","name":"Fan Pier","lon":-71.044624,"lat":42.353391,"capacity":15},
		{"short_name":"M32006","name":"MIT at Mass Ave","lon":"-71.093198","lat":"42.358100"}
	]}}`

	var parsed StationsDocument
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stations := parsed.Data.Stations
	if len(stations) != 2 {
		t.Fatalf("Expected 2 stations, got %d", len(stations))
	}
	if stations[0].ShortName != "A32000" || stations[0].Capacity != 15 {
		t.Errorf("Unexpected first station: %+v", stations[0])
	}
	if stations[0].Position.Lon() != -71.044624 || stations[0].Position.Lat() != 42.353391 {
		t.Errorf("Expected numeric coordinates to decode, got %v", stations[0].Position)
	}
	if stations[1].Position.Lon() != -71.093198 || stations[1].Position.Lat() != 42.3581 {
		t.Errorf("Expected string coordinates to decode, got %v", stations[1].Position)
	}
}

func TestStationUnmarshalRejectsBadCoordinate(t *testing.T) {
	var s Station
	err := json.Unmarshal([]byte(`{"short_name":"X","lon":"west","lat":42}`), &s)
	if err == nil {
		t.Fatal("Expected error for non-numeric coordinate")
	}
	if !strings.Contains(err.Error(), "coordinate") {
		t.Errorf("Expected coordinate error, got %v", err)
	}
}

func TestStationMarshalUsesFeedShape(t *testing.T) {
	var s Station
	if err := json.Unmarshal([]byte(`{"short_name":"A","name":"Alpha","lon":"-71.1","lat":"42.3"}`), &s); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `"lon":-71.1`) || !strings.Contains(string(out), `"short_name":"A"`) {
		t.Errorf("Unexpected JSON: %s", out)
	}
}

func TestParseTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	tests := []struct {
		input      string
		wantHour   int
		wantMinute int
	}{
		{"2024-03-01 08:05:12.345", 8, 5},
		{"2024-03-01 23:59:59", 23, 59},
		{"2024-03-01 07:00", 7, 0},
		{"2024-03-01T12:30:00", 12, 30},
		// 13:15 UTC is 08:15 EST
		{"2024-03-01T13:15:00Z", 8, 15},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.input, loc)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) returned error: %v", tt.input, err)
			continue
		}
		if got.Hour() != tt.wantHour || got.Minute() != tt.wantMinute {
			t.Errorf("ParseTimestamp(%q) = %02d:%02d, expected %02d:%02d",
				tt.input, got.Hour(), got.Minute(), tt.wantHour, tt.wantMinute)
		}
	}
}

func TestParseTimestampErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "yesterday", "2024-13-45 99:00:00"} {
		if _, err := ParseTimestamp(input, time.UTC); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}
