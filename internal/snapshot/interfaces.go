package snapshot

import (
	"context"

	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// Source provides the station list and trip log of a static snapshot
type Source interface {
	FetchStations(ctx context.Context) ([]models.Station, error)
	FetchTrips(ctx context.Context) ([]models.Trip, error)
}

// Snapshot is everything loaded once at startup
type Snapshot struct {
	Stations []models.Station
	Trips    []models.Trip
	Info     models.SnapshotInfo
}
