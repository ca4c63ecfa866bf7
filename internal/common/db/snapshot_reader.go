package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/bikeflow-data/pkg/bikeshare/models"
)

const (
	stationsQuery = `
		SELECT short_name, name, COALESCE(station_id, ''), COALESCE(capacity, 0), lon, lat
		FROM bikeshare.stations
		WHERE snapshot_id = $1
		ORDER BY short_name
	`

	tripsQuery = `
		SELECT COALESCE(ride_id, ''), start_station_id, end_station_id, started_at, ended_at
		FROM bikeshare.trips
		WHERE snapshot_id = $1
	`
)

// SnapshotReader reads the stations and trips of one snapshot version. The
// version is pinned at construction, so both fetches see the same data even
// if the active flag moves meanwhile. It only ever issues SELECTs.
//
// started_at and ended_at are "timestamp without time zone" columns holding
// local wall-clock times, the same as the published trip table.
type SnapshotReader struct {
	db         *DB
	snapshotID int
	loc        *time.Location
}

func NewSnapshotReader(db *DB, snapshotID int, loc *time.Location) *SnapshotReader {
	if loc == nil {
		loc = time.Local
	}
	return &SnapshotReader{
		db:         db,
		snapshotID: snapshotID,
		loc:        loc,
	}
}

// FetchStations returns the stations of the active snapshot
func (r *SnapshotReader) FetchStations(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	err := r.withSnapshot(ctx, func(tx *sql.Tx, snapshotID int) error {
		rows, err := tx.QueryContext(ctx, stationsQuery, snapshotID)
		if err != nil {
			return fmt.Errorf("querying stations: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s models.Station
			var lon, lat float64
			if err := rows.Scan(&s.ShortName, &s.Name, &s.StationID, &s.Capacity, &lon, &lat); err != nil {
				return fmt.Errorf("scanning station: %w", err)
			}
			s.Position = orb.Point{lon, lat}
			stations = append(stations, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	r.db.logger.Info("Stations read from database", "count", len(stations))
	return stations, nil
}

// FetchTrips returns the trips of the active snapshot with timestamps in the
// configured location
func (r *SnapshotReader) FetchTrips(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.withSnapshot(ctx, func(tx *sql.Tx, snapshotID int) error {
		rows, err := tx.QueryContext(ctx, tripsQuery, snapshotID)
		if err != nil {
			return fmt.Errorf("querying trips: %w", err)
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var t models.Trip
			if err := rows.Scan(&t.RideID, &t.StartStationID, &t.EndStationID, &t.StartedAt, &t.EndedAt); err != nil {
				return fmt.Errorf("scanning trip: %w", err)
			}
			t.StartedAt = wallClock(t.StartedAt, r.loc)
			t.EndedAt = wallClock(t.EndedAt, r.loc)
			trips = append(trips, t)

			count++
			if count%100000 == 0 {
				r.db.logger.Debug("Progress", "table", "trips", "records", count)
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	r.db.logger.Info("Trips read from database", "count", len(trips))
	return trips, nil
}

func (r *SnapshotReader) withSnapshot(ctx context.Context, fn func(tx *sql.Tx, snapshotID int) error) error {
	tx, err := r.db.BeginReadOnly(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// read-only; nothing to commit
	defer tx.Rollback()

	return fn(tx, r.snapshotID)
}

// wallClock keeps the clock reading of t and places it in loc. lib/pq hands
// back timestamps without a zone tagged as UTC; converting them with In
// would shift the minute of day.
func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
