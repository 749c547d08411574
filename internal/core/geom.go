// Package core provides fundamental types and utilities for the brawler
// platform: vector math, input snapshots, and the screen buffer. It contains
// no external dependencies (especially no Bubble Tea) to keep simulation
// logic pure and testable.
package core

import "math"

// Vec3 is a 3D vector. The simulation runs on the XY plane (X horizontal,
// Y vertical); Z carries stage depth for collision volumes.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Len returns the euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// MirrorX returns v with the X component negated.
// Used to flip bone-local offsets for left-facing fighters.
func (v Vec3) MirrorX() Vec3 {
	return Vec3{-v.X, v.Y, v.Z}
}

// Rect is an axis-aligned rectangle in stage coordinates (XY plane).
// Used for ledge-grab boxes and the blast-zone bounds.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Translate returns the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{r.MinX + dx, r.MinY + dy, r.MaxX + dx, r.MaxY + dy}
}

// MirrorX returns the rectangle reflected across x = 0.
func (r Rect) MirrorX() Rect {
	return Rect{-r.MaxX, r.MinY, -r.MinX, r.MaxY}
}

// SegmentDistance returns the minimum distance between segments [a1, a2]
// and [b1, b2]. Degenerate segments (point == point) are handled, so the
// same routine serves sphere-sphere, sphere-capsule and capsule-capsule
// proximity tests.
func SegmentDistance(a1, a2, b1, b2 Vec3) float64 {
	d1 := a2.Sub(a1)
	d2 := b2.Sub(b1)
	r := a1.Sub(b1)

	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float64
	const eps = 1e-12

	switch {
	case a <= eps && e <= eps:
		// Both segments are points.
		return a1.Dist(b1)
	case a <= eps:
		s = 0
		t = ClampF(f/e, 0, 1)
	default:
		c := d1.Dot(r)
		if e <= eps {
			t = 0
			s = ClampF(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > eps {
				s = ClampF((b*f-c*e)/denom, 0, 1)
			} else {
				s = 0
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = ClampF(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = ClampF((b-c)/a, 0, 1)
			}
		}
	}

	p1 := a1.Add(d1.Scale(s))
	p2 := b1.Add(d2.Scale(t))
	return p1.Dist(p2)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
