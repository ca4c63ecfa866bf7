package surface

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/bikeflow-data/internal/traffic"
)

const (
	// tileSize matches the vector-tile map client, which uses 512px tiles
	tileSize    = 512.0
	earthRadius = 6378137.0

	DefaultMinZoom = 0.0
	DefaultMaxZoom = 22.0
)

// Viewport is the visible part of a Web-Mercator map
type Viewport struct {
	Center  orb.Point `json:"center"`
	Zoom    float64   `json:"zoom"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	MinZoom float64   `json:"min_zoom"`
	MaxZoom float64   `json:"max_zoom"`
}

// NewViewport returns a viewport with zoom clamped into [minZoom, maxZoom]
func NewViewport(center orb.Point, zoom float64, width, height int, minZoom, maxZoom float64) Viewport {
	v := Viewport{
		Center:  center,
		Width:   width,
		Height:  height,
		MinZoom: minZoom,
		MaxZoom: maxZoom,
	}
	if v.MaxZoom <= v.MinZoom {
		v.MinZoom, v.MaxZoom = DefaultMinZoom, DefaultMaxZoom
	}
	v.Zoom = v.clampZoom(zoom)
	return v
}

func (v Viewport) clampZoom(z float64) float64 {
	return math.Max(v.MinZoom, math.Min(v.MaxZoom, z))
}

// pixelsPerMeter at the viewport's zoom, in Mercator meters
func (v Viewport) pixelsPerMeter() float64 {
	world := tileSize * math.Pow(2, v.Zoom)
	return world / (2 * math.Pi * earthRadius)
}

// Project converts a WGS84 position into screen pixels, with the viewport
// center at (Width/2, Height/2) and y growing downwards
func (v Viewport) Project(position orb.Point) traffic.Pixel {
	p := project.Point(position, project.WGS84.ToMercator)
	c := project.Point(v.Center, project.WGS84.ToMercator)
	scale := v.pixelsPerMeter()

	return traffic.Pixel{
		X: (p.X()-c.X())*scale + float64(v.Width)/2,
		Y: (c.Y()-p.Y())*scale + float64(v.Height)/2,
	}
}

// Unproject converts a screen pixel back into a WGS84 position
func (v Viewport) Unproject(px traffic.Pixel) orb.Point {
	c := project.Point(v.Center, project.WGS84.ToMercator)
	scale := v.pixelsPerMeter()

	m := orb.Point{
		c.X() + (px.X-float64(v.Width)/2)/scale,
		c.Y() - (px.Y-float64(v.Height)/2)/scale,
	}
	return project.Point(m, project.Mercator.ToWGS84)
}

// Bounds returns the geographic box currently on screen
func (v Viewport) Bounds() orb.Bound {
	topLeft := v.Unproject(traffic.Pixel{X: 0, Y: 0})
	bottomRight := v.Unproject(traffic.Pixel{X: float64(v.Width), Y: float64(v.Height)})
	return orb.MultiPoint{topLeft, bottomRight}.Bound()
}
