package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/bikeflow-data/internal/common/logger"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// Load fetches stations and trips concurrently and returns once both are in.
// Either failure fails the load; there is no retry or partial result.
func Load(ctx context.Context, src Source, log logger.Logger) (*Snapshot, error) {
	started := time.Now()

	var (
		wg          sync.WaitGroup
		stations    []models.Station
		trips       []models.Trip
		stationsErr error
		tripsErr    error
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(2)
	go func() {
		defer wg.Done()
		stations, stationsErr = src.FetchStations(ctx)
		if stationsErr != nil {
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		trips, tripsErr = src.FetchTrips(ctx)
		if tripsErr != nil {
			cancel()
		}
	}()
	wg.Wait()

	// report the root failure, not the cancellation it caused in the other fetch
	switch {
	case stationsErr != nil && !isCanceled(stationsErr):
		return nil, errors.Wrap(stationsErr, "loading stations")
	case tripsErr != nil && !isCanceled(tripsErr):
		return nil, errors.Wrap(tripsErr, "loading trips")
	case stationsErr != nil:
		return nil, errors.Wrap(stationsErr, "loading stations")
	case tripsErr != nil:
		return nil, errors.Wrap(tripsErr, "loading trips")
	}

	log.Info("Snapshot loaded",
		"stations", len(stations),
		"trips", len(trips),
		"duration", time.Since(started).String())

	return &Snapshot{
		Stations: stations,
		Trips:    trips,
		Info: models.SnapshotInfo{
			LoadedAt: time.Now(),
		},
	}, nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
