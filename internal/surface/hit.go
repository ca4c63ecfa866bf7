package surface

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/umahmood/haversine"

	"github.com/bikeflow-data/internal/traffic"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// HitTest returns the circle under pixel (x, y). Later shapes are drawn on
// top, so they win.
func HitTest(frame traffic.Frame, x, y float64) (traffic.Shape, bool) {
	for i := len(frame.Shapes) - 1; i >= 0; i-- {
		s := frame.Shapes[i]
		if s.Radius <= 0 {
			continue
		}
		if math.Hypot(s.X-x, s.Y-y) <= s.Radius {
			return s, true
		}
	}
	return traffic.Shape{}, false
}

// Nearest returns the station closest to position by great-circle distance
// and that distance in kilometres
func Nearest(stations []models.Station, position orb.Point) (models.Station, float64, bool) {
	origin := haversine.Coord{Lat: position.Lat(), Lon: position.Lon()}

	best := -1
	bestKm := math.Inf(1)
	for i, s := range stations {
		_, km := haversine.Distance(origin, haversine.Coord{Lat: s.Position.Lat(), Lon: s.Position.Lon()})
		if km < bestKm {
			best, bestKm = i, km
		}
	}
	if best < 0 {
		return models.Station{}, 0, false
	}
	return stations[best], bestKm, true
}

// Bounds returns the bounding box of all station positions
func Bounds(stations []models.Station) orb.Bound {
	points := make(orb.MultiPoint, len(stations))
	for i, s := range stations {
		points[i] = s.Position
	}
	return points.Bound()
}
