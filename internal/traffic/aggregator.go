package traffic

import (
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// StationTraffic is the derived traffic of one station over a trip set.
// Values are rebuilt on every computation and never shared between frames.
type StationTraffic struct {
	Station      models.Station
	Arrivals     int
	Departures   int
	TotalTraffic int
}

// Rollup counts trips grouped by key
func Rollup(trips []models.Trip, key func(models.Trip) string) map[string]int {
	counts := make(map[string]int)
	for _, trip := range trips {
		counts[key(trip)]++
	}
	return counts
}

// ComputeStationTraffic returns arrivals, departures and total traffic for
// every station, in station order. Trips whose ids match no short_name
// contribute nothing; stations without trips get zero.
func ComputeStationTraffic(stations []models.Station, trips []models.Trip) []StationTraffic {
	departures := Rollup(trips, func(t models.Trip) string { return t.StartStationID })
	arrivals := Rollup(trips, func(t models.Trip) string { return t.EndStationID })

	result := make([]StationTraffic, len(stations))
	for i, station := range stations {
		id := station.ShortName
		result[i] = StationTraffic{
			Station:      station,
			Arrivals:     arrivals[id],
			Departures:   departures[id],
			TotalTraffic: arrivals[id] + departures[id],
		}
	}
	return result
}

// TrafficByStation is ComputeStationTraffic keyed by short_name
func TrafficByStation(stations []models.Station, trips []models.Trip) map[string]StationTraffic {
	computed := ComputeStationTraffic(stations, trips)
	byID := make(map[string]StationTraffic, len(computed))
	for _, st := range computed {
		byID[st.Station.ShortName] = st
	}
	return byID
}

// MaxTraffic returns the largest TotalTraffic, or 0 for an empty list
func MaxTraffic(traffic []StationTraffic) int {
	max := 0
	for _, st := range traffic {
		if st.TotalTraffic > max {
			max = st.TotalTraffic
		}
	}
	return max
}
