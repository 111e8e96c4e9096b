// Package debug provides instrumentation for the scan engine. The
// MarkerCollector captures per-hit debug markers for visualisation; it is
// a no-op unless explicitly enabled, so it can stay wired in production
// paths with zero overhead.
package debug

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// defaultMarkerCapacity pre-sizes the marker slice for a typical sweep.
const defaultMarkerCapacity = 1024

// Marker is a single debug point in world coordinates.
type Marker struct {
	X float64
	Y float64
	Z float64
}

// MarkerCollector accumulates hit markers during a tick's sweep. Call
// DrawPoint during processing, then Drain at tick completion to take the
// markers. The collector is safe for concurrent use so a parallelised
// sweep can share it.
type MarkerCollector struct {
	mu      sync.Mutex
	enabled bool
	markers []Marker
}

// NewMarkerCollector creates a collector that is initially disabled.
func NewMarkerCollector() *MarkerCollector {
	return &MarkerCollector{}
}

// SetEnabled controls whether markers are recorded. Disabling clears any
// pending markers.
func (c *MarkerCollector) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled {
		c.markers = nil
	}
}

// Enabled reports whether the collector records markers.
func (c *MarkerCollector) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// DrawPoint records a hit marker. No-op when disabled.
func (c *MarkerCollector) DrawPoint(p r3.Vec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	if c.markers == nil {
		c.markers = make([]Marker, 0, defaultMarkerCapacity)
	}
	c.markers = append(c.markers, Marker{X: p.X, Y: p.Y, Z: p.Z})
}

// Drain returns the accumulated markers and resets the collector for the
// next tick. Returns nil when disabled or empty.
func (c *MarkerCollector) Drain() []Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.markers
	c.markers = nil
	return out
}
