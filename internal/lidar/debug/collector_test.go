package debug

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCollectorDisabledByDefault(t *testing.T) {
	c := NewMarkerCollector()
	c.DrawPoint(r3.Vec{X: 1})
	if got := c.Drain(); got != nil {
		t.Errorf("disabled collector recorded %d markers", len(got))
	}
}

func TestCollectorRecordsWhenEnabled(t *testing.T) {
	c := NewMarkerCollector()
	c.SetEnabled(true)

	c.DrawPoint(r3.Vec{X: 1, Y: 2, Z: 3})
	c.DrawPoint(r3.Vec{X: 4})

	got := c.Drain()
	if len(got) != 2 {
		t.Fatalf("got %d markers, want 2", len(got))
	}
	if got[0] != (Marker{X: 1, Y: 2, Z: 3}) {
		t.Errorf("first marker = %+v", got[0])
	}

	// Drain resets for the next tick.
	if again := c.Drain(); again != nil {
		t.Errorf("second drain returned %d markers, want none", len(again))
	}
}

func TestDisableClearsPending(t *testing.T) {
	c := NewMarkerCollector()
	c.SetEnabled(true)
	c.DrawPoint(r3.Vec{X: 1})
	c.SetEnabled(false)
	if got := c.Drain(); got != nil {
		t.Errorf("disable left %d markers pending", len(got))
	}
}
