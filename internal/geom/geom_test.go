package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func vecClose(a, b r3.Vec) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestForward(t *testing.T) {
	cases := []struct {
		name       string
		pitch, yaw float64
		want       r3.Vec
	}{
		{"identity", 0, 0, r3.Vec{X: 1}},
		{"yaw 90 points left", 0, 90, r3.Vec{Y: 1}},
		{"yaw 180 points back", 0, 180, r3.Vec{X: -1}},
		{"pitch 90 points up", 90, 0, r3.Vec{Z: 1}},
		{"pitch -90 points down", -90, 0, r3.Vec{Z: -1}},
	}
	for _, c := range cases {
		got := Forward(c.pitch, c.yaw)
		if !vecClose(got, c.want) {
			t.Errorf("%s: Forward(%v, %v) = %+v, want %+v", c.name, c.pitch, c.yaw, got, c.want)
		}
	}
}

func TestEulerRotationMatchesForward(t *testing.T) {
	// Rotating the X axis by an Euler orientation must land on the same
	// vector Forward computes analytically.
	for _, e := range []Euler{
		{Pitch: 0, Yaw: 0},
		{Pitch: 30, Yaw: 45},
		{Pitch: -15, Yaw: 200},
		{Pitch: 60, Yaw: -90},
	} {
		rotated := e.Rotation().Rotate(r3.Vec{X: 1})
		want := e.Forward()
		if !vecClose(rotated, want) {
			t.Errorf("Euler %+v: rotation gives %+v, Forward gives %+v", e, rotated, want)
		}
	}
}

func TestComposeOrder(t *testing.T) {
	// Compose(a, b) applies b first: yaw 90 after pitching 90 down the
	// body axis must differ from the reverse order.
	pitch := r3.NewRotation(-math.Pi/2, r3.Vec{Y: 1}) // pitch up 90
	yaw := r3.NewRotation(math.Pi/2, r3.Vec{Z: 1})    // yaw left 90

	// Pitch first, then yaw: X -> Z -> Z (yaw leaves Z alone).
	got := Compose(yaw, pitch).Rotate(r3.Vec{X: 1})
	if !vecClose(got, r3.Vec{Z: 1}) {
		t.Errorf("Compose(yaw, pitch) X = %+v, want +Z", got)
	}

	// Yaw first, then pitch about the world Y axis: X -> Y -> Y.
	got = Compose(pitch, yaw).Rotate(r3.Vec{X: 1})
	if !vecClose(got, r3.Vec{Y: 1}) {
		t.Errorf("Compose(pitch, yaw) X = %+v, want +Y", got)
	}
}

func TestRotateAboutZ(t *testing.T) {
	got := RotateAboutZ(r3.Vec{X: 1}, 90)
	if !vecClose(got, r3.Vec{Y: 1}) {
		t.Errorf("RotateAboutZ(+X, 90) = %+v, want +Y", got)
	}
	got = RotateAboutZ(r3.Vec{X: 1, Z: 2}, -90)
	if !vecClose(got, r3.Vec{Y: -1, Z: 2}) {
		t.Errorf("RotateAboutZ(+X+2Z, -90) = %+v, want -Y+2Z", got)
	}
}
