package api

import (
	"fmt"

	"github.com/bluele/gcache"

	"github.com/bikeflow-data/internal/surface"
	"github.com/bikeflow-data/internal/traffic"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

const defaultFrameCacheSize = 256

// FrameCache memoizes station traffic per slider minute. Each entry is the
// full filter and aggregation result for that minute; values are never
// mutated after they are stored.
type FrameCache struct {
	stations   []models.Station
	trips      []models.Trip
	maxTraffic int
	cache      gcache.Cache
}

func NewFrameCache(stations []models.Station, trips []models.Trip, size int) *FrameCache {
	if size <= 0 {
		size = defaultFrameCacheSize
	}

	fc := &FrameCache{
		stations: stations,
		trips:    trips,
	}
	fc.cache = gcache.New(size).
		LRU().
		LoaderFunc(func(key interface{}) (interface{}, error) {
			return fc.compute(key.(int)), nil
		}).
		Build()

	// The radius domain always comes from the unfiltered aggregate
	all, err := fc.Traffic(traffic.NoFilter)
	if err == nil {
		fc.maxTraffic = traffic.MaxTraffic(all)
	}
	return fc
}

func (fc *FrameCache) compute(minute int) []traffic.StationTraffic {
	return traffic.ComputeStationTraffic(fc.stations, traffic.FilterTrips(fc.trips, minute))
}

// Traffic returns the per-station traffic for a slider value
func (fc *FrameCache) Traffic(minute int) ([]traffic.StationTraffic, error) {
	if !traffic.ValidMinute(minute) {
		return nil, fmt.Errorf("%w: got %d", traffic.ErrInvalidMinute, minute)
	}
	v, err := fc.cache.Get(minute)
	if err != nil {
		return nil, fmt.Errorf("loading traffic for minute %d: %w", minute, err)
	}
	return v.([]traffic.StationTraffic), nil
}

// Station returns one station's traffic for a slider value
func (fc *FrameCache) Station(shortName string, minute int) (traffic.StationTraffic, bool, error) {
	all, err := fc.Traffic(minute)
	if err != nil {
		return traffic.StationTraffic{}, false, err
	}
	for _, st := range all {
		if st.Station.ShortName == shortName {
			return st, true, nil
		}
	}
	return traffic.StationTraffic{}, false, nil
}

// Frame builds a stateless frame for a minute, projected with viewport
func (fc *FrameCache) Frame(minute int, viewport surface.Viewport) (traffic.Frame, error) {
	st, err := fc.Traffic(minute)
	if err != nil {
		return traffic.Frame{}, err
	}
	scale := traffic.NewRadiusScale(fc.maxTraffic)
	scale.UseRange(minute != traffic.NoFilter)
	return traffic.BuildFrame(minute, st, scale, viewport.Project), nil
}

// MaxTraffic is the unfiltered maximum that fixes the radius domain
func (fc *FrameCache) MaxTraffic() int {
	return fc.maxTraffic
}

// Stats returns cache hit and miss counts
func (fc *FrameCache) Stats() (hits, misses uint64) {
	return fc.cache.HitCount(), fc.cache.MissCount()
}
