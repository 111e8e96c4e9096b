package lidar

import (
	"math"
	"testing"
)

func TestBuildLaserAnglesEvenSpacing(t *testing.T) {
	cfg := DefaultLidarConfig()
	cfg.Channels = 32
	cfg.UpperFovLimit = 10.0
	cfg.LowerFovLimit = -30.0

	angles := buildLaserAngles(cfg)
	if len(angles) != cfg.Channels {
		t.Fatalf("got %d angles, want %d", len(angles), cfg.Channels)
	}
	if angles[0] != cfg.UpperFovLimit {
		t.Errorf("channel 0 = %v, want upper limit %v", angles[0], cfg.UpperFovLimit)
	}
	if math.Abs(angles[len(angles)-1]-cfg.LowerFovLimit) > 1e-9 {
		t.Errorf("last channel = %v, want lower limit %v", angles[len(angles)-1], cfg.LowerFovLimit)
	}

	step := (cfg.UpperFovLimit - cfg.LowerFovLimit) / float64(cfg.Channels-1)
	for i := 1; i < len(angles); i++ {
		if angles[i] >= angles[i-1] {
			t.Errorf("angles not strictly decreasing at %d: %v >= %v", i, angles[i], angles[i-1])
		}
		got := angles[i-1] - angles[i]
		if math.Abs(got-step) > 1e-9 {
			t.Errorf("uneven spacing at %d: %v, want %v", i, got, step)
		}
	}
}

func TestBuildLaserAnglesSingleChannel(t *testing.T) {
	cfg := DefaultLidarConfig()
	cfg.Channels = 1
	cfg.UpperFovLimit = 5.0
	cfg.LowerFovLimit = -5.0

	angles := buildLaserAngles(cfg)
	if len(angles) != 1 {
		t.Fatalf("got %d angles, want 1", len(angles))
	}
	if angles[0] != cfg.UpperFovLimit {
		t.Errorf("single channel = %v, want upper limit %v", angles[0], cfg.UpperFovLimit)
	}
	if math.IsNaN(angles[0]) {
		t.Error("single channel produced NaN")
	}
}

func TestBuildLaserAnglesTwoChannels(t *testing.T) {
	cfg := DefaultLidarConfig()
	cfg.Channels = 2
	cfg.UpperFovLimit = 2.0
	cfg.LowerFovLimit = -26.8

	angles := buildLaserAngles(cfg)
	if angles[0] != 2.0 || math.Abs(angles[1]-(-26.8)) > 1e-9 {
		t.Errorf("two-channel table = %v, want [2, -26.8]", angles)
	}
}
