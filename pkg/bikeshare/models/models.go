package models

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
)

// Station is a bike-share dock. ShortName is the key trips refer to.
type Station struct {
	ShortName string
	Name      string
	StationID string
	Capacity  int
	Position  orb.Point // [lon, lat]
}

type stationJSON struct {
	ShortName string     `json:"short_name"`
	Name      string     `json:"name"`
	StationID string     `json:"station_id,omitempty"`
	Capacity  int        `json:"capacity,omitempty"`
	Lon       Coordinate `json:"lon"`
	Lat       Coordinate `json:"lat"`
}

// UnmarshalJSON decodes a station record from the station feed
func (s *Station) UnmarshalJSON(b []byte) error {
	var raw stationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Station{
		ShortName: raw.ShortName,
		Name:      raw.Name,
		StationID: raw.StationID,
		Capacity:  raw.Capacity,
		Position:  orb.Point{float64(raw.Lon), float64(raw.Lat)},
	}
	return nil
}

// MarshalJSON writes the station back in feed shape
func (s Station) MarshalJSON() ([]byte, error) {
	return json.Marshal(stationJSON{
		ShortName: s.ShortName,
		Name:      s.Name,
		StationID: s.StationID,
		Capacity:  s.Capacity,
		Lon:       Coordinate(s.Position.Lon()),
		Lat:       Coordinate(s.Position.Lat()),
	})
}

// StationsDocument is the envelope of the published station feed
type StationsDocument struct {
	LastUpdated int64 `json:"last_updated,omitempty"`
	Data        struct {
		Stations []Station `json:"stations"`
	} `json:"data"`
}

// Trip is one rental. Timestamps are parsed once at load time.
type Trip struct {
	RideID         string
	StartStationID string
	EndStationID   string
	StartedAt      time.Time
	EndedAt        time.Time
}

// SnapshotInfo describes where a loaded snapshot came from
type SnapshotInfo struct {
	VersionID   int       `json:"version_id,omitempty"`
	VersionName string    `json:"version_name,omitempty"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}
