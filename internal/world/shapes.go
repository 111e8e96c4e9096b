package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// intersectEpsilon rejects intersections at the segment origin so a
// sensor sitting exactly on a surface does not strike itself.
const intersectEpsilon = 1e-9

// Shape is analytic geometry a ray segment can strike. Intersect returns
// the parameter t along origin->end of the nearest entry point, with
// t constrained to (epsilon, 1].
type Shape interface {
	Intersect(origin, end r3.Vec) (t float64, ok bool)
}

// Sphere is a solid ball.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

func (s Sphere) Intersect(origin, end r3.Vec) (float64, bool) {
	d := r3.Sub(end, origin)
	m := r3.Sub(origin, s.Center)

	a := r3.Dot(d, d)
	if a == 0 {
		return 0, false
	}
	b := 2 * r3.Dot(m, d)
	c := r3.Dot(m, m) - s.Radius*s.Radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)

	// Nearest root first; fall back to the far root when the segment
	// starts inside the sphere.
	t := (-b - sqrtDisc) / (2 * a)
	if t <= intersectEpsilon {
		t = (-b + sqrtDisc) / (2 * a)
	}
	if t <= intersectEpsilon || t > 1 {
		return 0, false
	}
	return t, true
}

// Box is an axis-aligned box.
type Box struct {
	Min r3.Vec
	Max r3.Vec
}

func (b Box) Intersect(origin, end r3.Vec) (float64, bool) {
	d := r3.Sub(end, origin)

	tLow := math.Inf(-1)
	tHigh := math.Inf(1)

	o := [3]float64{origin.X, origin.Y, origin.Z}
	dd := [3]float64{d.X, d.Y, d.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if dd[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / dd[i]
		t2 := (hi[i] - o[i]) / dd[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tLow {
			tLow = t1
		}
		if t2 < tHigh {
			tHigh = t2
		}
		if tLow > tHigh {
			return 0, false
		}
	}

	t := tLow
	if t <= intersectEpsilon {
		// Segment starts inside the box; exit face is the hit.
		t = tHigh
	}
	if t <= intersectEpsilon || t > 1 {
		return 0, false
	}
	return t, true
}

// Plane is an infinite horizontal plane at height Z, used as ground.
type Plane struct {
	Z float64
}

func (p Plane) Intersect(origin, end r3.Vec) (float64, bool) {
	dz := end.Z - origin.Z
	if dz == 0 {
		return 0, false
	}
	t := (p.Z - origin.Z) / dz
	if t <= intersectEpsilon || t > 1 {
		return 0, false
	}
	return t, true
}
