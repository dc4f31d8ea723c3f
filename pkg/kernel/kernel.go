// Package kernel implements ray/shape intersection for planes, spheres
// and triangles. A Line is a parametric ray a + v·λ; every Shape reports
// either all intersection parameters (λ values) of a line or the closest
// one ahead of the line's pivot.
//
// All values are immutable after construction. Constructors validate their
// invariants and return an error instead of a partially built value; query
// methods never fail.
package kernel

import (
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Construction errors.
var (
	ErrDegenerateLine = errors.New("line points must differ")
	ErrZeroNormal     = errors.New("normal must be non-zero")
	ErrCollinear      = errors.New("triangle vertices are collinear")
)

// Intersection is the minimal description of a line/shape hit.
// Barycentric is only set for triangle hits, where it comes for free
// from the inside test.
type Intersection struct {
	Lambda      float64
	Barycentric *v3.Vec
}

// Shape is implemented by every primitive that can be hit by a Line.
type Shape interface {
	// Normal returns the unit normal of the shape at point, which should
	// lie on the shape's surface.
	Normal(point v3.Vec) v3.Vec

	// Intersects returns the λ values of every intersection with line.
	// A line parallel to the shape, or lying inside a planar shape,
	// yields no intersections by convention.
	Intersects(line Line) []float64

	// ClosestIntersection returns the intersection with the smallest
	// positive λ, i.e. the first hit in the direction of the line.
	// Planar shapes have at most one crossing and report it whatever
	// its sign.
	ClosestIntersection(line Line) (Intersection, bool)
}

// Compile-time interface checks.
var (
	_ Shape = (*Plane)(nil)
	_ Shape = (*Sphere)(nil)
	_ Shape = (*Triangle)(nil)
)

// Kind returns the lower-case name of the primitive behind s, or "shape"
// for implementations outside this package.
func Kind(s Shape) string {
	switch s.(type) {
	case *Plane:
		return "plane"
	case *Sphere:
		return "sphere"
	case *Triangle:
		return "triangle"
	}
	return "shape"
}

// Closest returns the nearest hit of line ahead of its pivot across shapes
// and the index of the shape that produced it. Hits with λ <= 0 are
// skipped. On equal λ the earlier shape wins.
func Closest(line Line, shapes ...Shape) (Intersection, int, bool) {
	var best Intersection
	idx := -1
	for i, s := range shapes {
		hit, ok := s.ClosestIntersection(line)
		if !ok || hit.Lambda <= 0 {
			continue
		}
		if idx < 0 || hit.Lambda < best.Lambda {
			best = hit
			idx = i
		}
	}
	return best, idx, idx >= 0
}
