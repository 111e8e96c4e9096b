// Package units provides shared angle and rounding helpers for the
// scan engine and the simulated world.
package units

import "math"

// NormalizeDegrees wraps an angle in degrees into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// RoundHalfAwayFromZero rounds to the nearest integer with ties rounded
// away from zero (0.5 -> 1, -0.5 -> -1). This matches the rounding used
// when converting a per-second point budget into per-tick samples.
func RoundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(math.Floor(v + 0.5))
	}
	return int(math.Ceil(v - 0.5))
}
