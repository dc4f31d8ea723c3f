package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is an infinite plane through a point with a unit normal.
type Plane struct {
	a v3.Vec  // point on the plane
	n v3.Vec  // unit normal
	d float64 // -n·a
}

// NewPlane returns the plane through a with normal n. n is normalised.
func NewPlane(a, n v3.Vec) (*Plane, error) {
	if IsZero(n) {
		return nil, fmt.Errorf("kernel: new plane at %s: %w", fmtVec(a), ErrZeroNormal)
	}
	un := n.Normalize()
	return &Plane{
		a: a,
		n: un,
		d: -un.Dot(a),
	}, nil
}

// MustPlane is like NewPlane but panics on error.
func MustPlane(a, n v3.Vec) *Plane {
	p, err := NewPlane(a, n)
	if err != nil {
		panic(err.Error())
	}
	return p
}

// Point returns the point the plane was built from.
func (p *Plane) Point() v3.Vec { return p.a }

// Normal returns the plane normal, which is the same everywhere.
func (p *Plane) Normal(_ v3.Vec) v3.Vec {
	return p.n
}

// lambda solves n·(a + v·λ) + d = 0. ok is false when the line is
// parallel to the plane or lies in it.
func (p *Plane) lambda(line Line) (float64, bool) {
	denom := p.n.Dot(line.v)
	if denom == 0 {
		return 0, false
	}
	return (-p.n.Dot(line.a) - p.d) / denom, true
}

// Intersects returns the single λ where line crosses the plane, or nothing
// if the line is parallel to or contained in the plane.
func (p *Plane) Intersects(line Line) []float64 {
	lambda, ok := p.lambda(line)
	if !ok {
		return nil
	}
	return []float64{lambda}
}

// ClosestIntersection returns the crossing of line with the plane. A plane
// has at most one, so no sign filtering is applied.
func (p *Plane) ClosestIntersection(line Line) (Intersection, bool) {
	lambda, ok := p.lambda(line)
	if !ok {
		return Intersection{}, false
	}
	return Intersection{Lambda: lambda}, true
}

func (p *Plane) String() string {
	return fmt.Sprintf("A %s --> N %s", fmtVec(p.a), fmtVec(p.n))
}
