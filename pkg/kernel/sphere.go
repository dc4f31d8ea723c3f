package kernel

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Sphere is defined by its center and radius. The radius should be
// positive; a zero radius degenerates to a single root at the center.
type Sphere struct {
	c v3.Vec
	r float64
}

// NewSphere returns the sphere centered at c with radius r.
func NewSphere(c v3.Vec, r float64) *Sphere {
	return &Sphere{c: c, r: r}
}

// Center returns the sphere center.
func (s *Sphere) Center() v3.Vec { return s.c }

// Radius returns the sphere radius.
func (s *Sphere) Radius() float64 { return s.r }

// Normal returns the outward unit normal at point, which should lie on the
// surface. The result has NaN components when point is the center.
func (s *Sphere) Normal(point v3.Vec) v3.Vec {
	return point.Sub(s.c).Normalize()
}

// quadratic returns b and the discriminant of qa·λ² + b·λ + c = 0, the
// line equation substituted into |p - center|² = r².
func (s *Sphere) quadratic(line Line) (b, discrim float64) {
	o := line.a.Sub(s.c)
	b = 2 * line.v.Dot(o)
	c := len2(o) - s.r*s.r
	return b, b*b - 4*line.qa*c
}

// Intersects returns both roots when the line crosses the sphere, the
// single root when it is tangent, and nothing when it misses.
// line.qa is never zero, so the division is safe.
func (s *Sphere) Intersects(line Line) []float64 {
	b, discrim := s.quadratic(line)
	switch {
	case discrim > 0:
		sq := math.Sqrt(discrim)
		return []float64{
			(-b + sq) / (2 * line.qa),
			(-b - sq) / (2 * line.qa),
		}
	case discrim == 0:
		return []float64{-b / (2 * line.qa)}
	}
	return nil
}

// ClosestIntersection returns the smallest positive root. Roots at or
// behind the pivot are ignored.
func (s *Sphere) ClosestIntersection(line Line) (Intersection, bool) {
	b, discrim := s.quadratic(line)
	switch {
	case discrim > 0:
		sq := math.Sqrt(discrim)
		l1 := (-b + sq) / (2 * line.qa)
		l2 := (-b - sq) / (2 * line.qa)
		switch {
		case l1 > 0 && l2 > 0:
			return Intersection{Lambda: math.Min(l1, l2)}, true
		case l1 > 0:
			return Intersection{Lambda: l1}, true
		case l2 > 0:
			return Intersection{Lambda: l2}, true
		}
	case discrim == 0:
		// Tangent: one root, kept only if it lies ahead.
		if l := -b / (2 * line.qa); l > 0 {
			return Intersection{Lambda: l}, true
		}
	}
	return Intersection{}, false
}

func (s *Sphere) String() string {
	return fmt.Sprintf("%s Radius = %g", fmtVec(s.c), s.r)
}
