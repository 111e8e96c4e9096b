// Package geom provides the rotation and pose math used by the scan
// engine and the simulated world.
//
// Coordinate convention: X=forward, Y=left, Z=up, right-handed. Yaw is a
// counter-clockwise rotation about +Z, pitch raises the nose above the
// horizontal plane, roll turns about the forward axis. All public angles
// are in degrees; radians appear only at the gonum boundary.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lidarsim/internal/units"
)

// Euler is an orientation expressed as pitch/yaw/roll in degrees.
type Euler struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Rotation converts the Euler orientation into a gonum rotation.
// Application order is roll, then pitch, then yaw (intrinsic Z-Y-X).
func (e Euler) Rotation() r3.Rotation {
	return Compose(
		r3.NewRotation(units.Radians(e.Yaw), r3.Vec{Z: 1}),
		r3.NewRotation(-units.Radians(e.Pitch), r3.Vec{Y: 1}),
		r3.NewRotation(units.Radians(e.Roll), r3.Vec{X: 1}),
	)
}

// Forward returns the unit forward vector of the orientation, ignoring roll.
func (e Euler) Forward() r3.Vec {
	return Forward(e.Pitch, e.Yaw)
}

// Forward returns the unit vector pointing along (pitch, yaw) degrees.
func Forward(pitchDeg, yawDeg float64) r3.Vec {
	p := units.Radians(pitchDeg)
	y := units.Radians(yawDeg)
	cp := math.Cos(p)
	return r3.Vec{
		X: cp * math.Cos(y),
		Y: cp * math.Sin(y),
		Z: math.Sin(p),
	}
}

// Compose combines rotations so that the last argument is applied to a
// vector first and the first argument last.
func Compose(rs ...r3.Rotation) r3.Rotation {
	q := quat.Number{Real: 1}
	for _, r := range rs {
		q = quat.Mul(q, quat.Number(r))
	}
	return r3.Rotation(q)
}

// RotateAboutZ rotates v about the vertical axis by deg degrees
// (counter-clockwise looking down +Z).
func RotateAboutZ(v r3.Vec, deg float64) r3.Vec {
	return r3.NewRotation(units.Radians(deg), r3.Vec{Z: 1}).Rotate(v)
}

// Pose is a rigid position and orientation in world coordinates.
type Pose struct {
	Position r3.Vec `json:"position"`
	Rotation Euler  `json:"rotation"`
}
