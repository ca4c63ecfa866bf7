package surface

import (
	"sync"

	"github.com/paulmach/orb"

	"github.com/bikeflow-data/internal/traffic"
)

// Canvas is an in-memory map surface for remote clients: it projects with
// its viewport and keeps the last rendered frame for them to fetch
type Canvas struct {
	mu       sync.RWMutex
	viewport Viewport
	frame    traffic.Frame
	renders  int
}

func NewCanvas(viewport Viewport) *Canvas {
	return &Canvas{viewport: viewport}
}

// Project implements traffic.Surface
func (c *Canvas) Project(position orb.Point) traffic.Pixel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewport.Project(position)
}

// Render implements traffic.Surface
func (c *Canvas) Render(frame traffic.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
	c.renders++
	return nil
}

// Move pans and zooms the viewport. The caller reprojects afterwards.
func (c *Canvas) Move(center orb.Point, zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport.Center = center
	c.viewport.Zoom = c.viewport.clampZoom(zoom)
}

// Resize changes the viewport size. The caller reprojects afterwards.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport.Width = width
	c.viewport.Height = height
}

func (c *Canvas) Viewport() Viewport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewport
}

// LastFrame returns the most recently rendered frame
func (c *Canvas) LastFrame() traffic.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frame
}

// Renders counts Render calls
func (c *Canvas) Renders() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renders
}
