package traffic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/bikeflow-data/internal/common/logger"
	"github.com/bikeflow-data/pkg/bikeshare/models"
)

// ErrInvalidMinute is returned for slider values outside -1..1439
var ErrInvalidMinute = errors.New("minute must be -1 or within 0..1439")

// HoverScale is the radius factor applied to a hovered circle
const HoverScale = 1.3

// Pixel is a screen coordinate on the map surface
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface is the map rendering collaborator. It owns projection and draws
// the shapes it is handed; shapes are joined across frames by ShortName.
type Surface interface {
	Project(position orb.Point) Pixel
	Render(frame Frame) error
}

// Shape is one station circle as the surface should draw it
type Shape struct {
	ShortName      string    `json:"short_name"`
	Name           string    `json:"name"`
	Position       orb.Point `json:"position"`
	X              float64   `json:"cx"`
	Y              float64   `json:"cy"`
	Radius         float64   `json:"r"`
	HoverRadius    float64   `json:"hover_r"`
	DepartureRatio float64   `json:"departure_ratio"`
	Arrivals       int       `json:"arrivals"`
	Departures     int       `json:"departures"`
	TotalTraffic   int       `json:"total_traffic"`
}

// Frame is a complete visual state for one slider value
type Frame struct {
	Minute     int     `json:"minute"`
	Filtered   bool    `json:"filtered"`
	Range      Range   `json:"range"`
	MaxTraffic int     `json:"max_traffic"`
	Shapes     []Shape `json:"shapes"`
}

// BuildFrame turns station traffic into shapes using the scale's active range
func BuildFrame(minute int, traffic []StationTraffic, scale *RadiusScale, project func(orb.Point) Pixel) Frame {
	shapes := make([]Shape, len(traffic))
	for i, st := range traffic {
		r := scale.Radius(st.TotalTraffic)
		shape := Shape{
			ShortName:      st.Station.ShortName,
			Name:           st.Station.Name,
			Position:       st.Station.Position,
			Radius:         r,
			HoverRadius:    r * HoverScale,
			DepartureRatio: DepartureRatio(st),
			Arrivals:       st.Arrivals,
			Departures:     st.Departures,
			TotalTraffic:   st.TotalTraffic,
		}
		if project != nil {
			p := project(st.Station.Position)
			shape.X, shape.Y = p.X, p.Y
		}
		shapes[i] = shape
	}

	return Frame{
		Minute:     minute,
		Filtered:   minute != NoFilter,
		Range:      scale.Range(),
		MaxTraffic: int(scale.DomainMax()),
		Shapes:     shapes,
	}
}

// ViewState holds the current slider value and the traffic computed for it.
// Every transition is rebuilt from the full trip log.
type ViewState struct {
	stations []models.Station
	trips    []models.Trip
	surface  Surface
	logger   logger.Logger

	mu      sync.Mutex
	scale   *RadiusScale
	minute  int
	traffic []StationTraffic
	frame   Frame
}

// NewViewState aggregates all trips, fixes the radius domain from that
// unfiltered result and renders the first frame
func NewViewState(stations []models.Station, trips []models.Trip, surface Surface, log logger.Logger) (*ViewState, error) {
	all := ComputeStationTraffic(stations, trips)

	v := &ViewState{
		stations: stations,
		trips:    trips,
		surface:  surface,
		logger:   log,
		scale:    NewRadiusScale(MaxTraffic(all)),
		minute:   NoFilter,
		traffic:  all,
	}

	frame, err := v.draw(v.minute, v.traffic, v.scale)
	if err != nil {
		return nil, err
	}
	v.frame = frame
	return v, nil
}

// SetTime applies a slider value and runs filter, aggregation, re-ranging
// and rendering. State changes only once the surface accepted the frame.
func (v *ViewState) SetTime(minute int) (Frame, error) {
	if !ValidMinute(minute) {
		return Frame{}, fmt.Errorf("%w: got %d", ErrInvalidMinute, minute)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	filtered := FilterTrips(v.trips, minute)
	traffic := ComputeStationTraffic(v.stations, filtered)
	scale := *v.scale
	scale.UseRange(minute != NoFilter)

	frame, err := v.draw(minute, traffic, &scale)
	if err != nil {
		return Frame{}, err
	}

	v.logger.Debug("Time filter applied",
		"from", v.minute,
		"to", minute,
		"trips", len(filtered),
		"range_min", scale.Range().Min,
		"range_max", scale.Range().Max)

	v.minute = minute
	v.traffic = traffic
	v.scale = &scale
	v.frame = frame
	return frame, nil
}

// Reproject redraws the current traffic after the surface moved, zoomed or
// resized. Traffic is not recomputed.
func (v *ViewState) Reproject() (Frame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	frame, err := v.draw(v.minute, v.traffic, v.scale)
	if err != nil {
		return Frame{}, err
	}
	v.frame = frame
	return frame, nil
}

// draw builds a frame and hands it to the surface without touching state
func (v *ViewState) draw(minute int, traffic []StationTraffic, scale *RadiusScale) (Frame, error) {
	var project func(orb.Point) Pixel
	if v.surface != nil {
		project = v.surface.Project
	}
	frame := BuildFrame(minute, traffic, scale, project)

	if v.surface == nil {
		return frame, nil
	}
	if err := v.surface.Render(frame); err != nil {
		return Frame{}, fmt.Errorf("rendering frame: %w", err)
	}
	return frame, nil
}

// Frame returns the last rendered frame
func (v *ViewState) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// Minute returns the active slider value
func (v *ViewState) Minute() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.minute
}

// Filtered reports whether a time filter is active
func (v *ViewState) Filtered() bool {
	return v.Minute() != NoFilter
}

// Display returns the label state for the active slider value
func (v *ViewState) Display() Display {
	return DisplayFor(v.Minute())
}

// Traffic returns the station traffic behind the last frame
func (v *ViewState) Traffic(shortName string) (StationTraffic, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, st := range v.traffic {
		if st.Station.ShortName == shortName {
			return st, true
		}
	}
	return StationTraffic{}, false
}
