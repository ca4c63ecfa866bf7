package traffic

import (
	"time"

	"github.com/bikeflow-data/pkg/bikeshare/models"
)

const (
	// NoFilter is the slider sentinel for "any time"
	NoFilter = -1

	// WindowTolerance is the half-width of the time window in minutes
	WindowTolerance = 60

	// LastMinute is the last minute of the day a filter may target
	LastMinute = 24*60 - 1
)

// MinutesSinceMidnight returns the minute-of-day of t in its own location,
// ignoring date and seconds
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FilterTrips keeps trips that started or ended within WindowTolerance
// minutes of targetMinute. With NoFilter the input slice is returned as is.
func FilterTrips(trips []models.Trip, targetMinute int) []models.Trip {
	return FilterTripsWithin(trips, targetMinute, WindowTolerance)
}

// FilterTripsWithin is FilterTrips with an explicit tolerance.
//
// Differences are plain integer differences: a target of 23:50 and a trip
// at 00:05 are 1425 minutes apart, not 15.
func FilterTripsWithin(trips []models.Trip, targetMinute, tolerance int) []models.Trip {
	if targetMinute == NoFilter {
		return trips
	}

	filtered := make([]models.Trip, 0, len(trips))
	for _, trip := range trips {
		started := MinutesSinceMidnight(trip.StartedAt)
		ended := MinutesSinceMidnight(trip.EndedAt)
		if abs(started-targetMinute) <= tolerance || abs(ended-targetMinute) <= tolerance {
			filtered = append(filtered, trip)
		}
	}
	return filtered
}

// ValidMinute reports whether m is NoFilter or a minute of the day
func ValidMinute(m int) bool {
	return m == NoFilter || (m >= 0 && m <= LastMinute)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
