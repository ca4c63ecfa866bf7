package db

import (
	"testing"
	"time"

	"github.com/bikeflow-data/internal/traffic"
)

func TestWallClockKeepsMinuteOfDay(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	// lib/pq returns timestamp without time zone values tagged as UTC
	scanned := time.Date(2024, 3, 1, 8, 0, 30, 0, time.UTC)
	got := wallClock(scanned, newYork)

	if got.Location() != newYork {
		t.Errorf("Expected location %v, got %v", newYork, got.Location())
	}
	if m := traffic.MinutesSinceMidnight(got); m != 480 {
		t.Errorf("Expected minute 480, got %d", m)
	}
	if got.Day() != 1 || got.Second() != 30 {
		t.Errorf("Expected date and seconds to be kept, got %v", got)
	}
}

func TestWallClockAcrossMidnight(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	got := wallClock(time.Date(2024, 3, 1, 23, 55, 0, 0, time.UTC), newYork)
	if got.Day() != 1 || traffic.MinutesSinceMidnight(got) != 23*60+55 {
		t.Errorf("Expected 23:55 on the 1st, got %v", got)
	}
}

func TestSnapshotReaderPinsVersion(t *testing.T) {
	reader := NewSnapshotReader(nil, 7, nil)
	if reader.snapshotID != 7 {
		t.Errorf("Expected snapshot 7, got %d", reader.snapshotID)
	}
	if reader.loc != time.Local {
		t.Errorf("Expected local time zone by default, got %v", reader.loc)
	}
}
