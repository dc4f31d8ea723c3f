package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is a planar triangle with vertices a, b, c in counter-clockwise
// order seen from the visible face. The order fixes the sign of the normal
// (ab × ac).
//
// The barycentric basis (ab, ac and their dot products) is computed once at
// construction and reused by every query.
type Triangle struct {
	a, b, c v3.Vec
	plane   Plane

	ab, ac        v3.Vec
	d00, d01, d11 float64
	denom         float64 // d00·d11 - d01², zero iff collinear
}

// NewTriangle returns the triangle abc. Collinear vertices are rejected.
func NewTriangle(a, b, c v3.Vec) (*Triangle, error) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	d00 := ab.Dot(ab)
	d01 := ab.Dot(ac)
	d11 := ac.Dot(ac)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return nil, fmt.Errorf("kernel: new triangle %s %s %s: %w", fmtVec(a), fmtVec(b), fmtVec(c), ErrCollinear)
	}

	// denom != 0 guarantees ab × ac is non-zero, however short.
	n := ab.Cross(ac).Normalize()

	return &Triangle{
		a: a, b: b, c: c,
		plane: Plane{a: a, n: n, d: -n.Dot(a)},
		ab:    ab,
		ac:    ac,
		d00:   d00,
		d01:   d01,
		d11:   d11,
		denom: denom,
	}, nil
}

// MustTriangle is like NewTriangle but panics on error.
func MustTriangle(a, b, c v3.Vec) *Triangle {
	t, err := NewTriangle(a, b, c)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// Vertices returns a, b and c in construction order.
func (t *Triangle) Vertices() (a, b, c v3.Vec) {
	return t.a, t.b, t.c
}

// Plane returns the supporting plane of the triangle.
func (t *Triangle) Plane() *Plane {
	return &t.plane
}

// Barycentric returns the weights (α, β, γ) of p with respect to the
// vertices (a, b, c), packed as X, Y, Z. The weights always sum to 1 and
// p is recovered as α·a + β·b + γ·c when it is coplanar with the triangle.
// All three in [0, 1] means p is inside or on the border.
func (t *Triangle) Barycentric(p v3.Vec) v3.Vec {
	ap := p.Sub(t.a)
	d20 := ap.Dot(t.ab)
	d21 := ap.Dot(t.ac)
	beta := (t.d11*d20 - t.d01*d21) / t.denom
	gamma := (t.d00*d21 - t.d01*d20) / t.denom
	return v3.Vec{X: 1 - beta - gamma, Y: beta, Z: gamma}
}

// Interpolate blends per-vertex attributes with barycentric weights
// obtained from Barycentric.
func Interpolate(bary, attrA, attrB, attrC v3.Vec) v3.Vec {
	return attrA.MulScalar(bary.X).
		Add(attrB.MulScalar(bary.Y)).
		Add(attrC.MulScalar(bary.Z))
}

// Normal returns the face normal, constant across the triangle.
func (t *Triangle) Normal(_ v3.Vec) v3.Vec {
	return t.plane.n
}

// Intersects returns the λ where line crosses the triangle, if it does.
// Lines parallel to or inside the triangle's plane never intersect.
func (t *Triangle) Intersects(line Line) []float64 {
	hits := t.plane.Intersects(line)
	if len(hits) == 0 {
		return nil
	}
	if !inside(t.Barycentric(line.Point(hits[0]))) {
		return nil
	}
	return hits
}

// ClosestIntersection returns the crossing of line with the triangle along
// with its barycentric coordinates.
func (t *Triangle) ClosestIntersection(line Line) (Intersection, bool) {
	hit, ok := t.plane.ClosestIntersection(line)
	if !ok {
		return Intersection{}, false
	}
	bary := t.Barycentric(line.Point(hit.Lambda))
	if !inside(bary) {
		return Intersection{}, false
	}
	hit.Barycentric = &bary
	return hit, true
}

func (t *Triangle) String() string {
	return fmt.Sprintf("A %s B %s C %s", fmtVec(t.a), fmtVec(t.b), fmtVec(t.c))
}

// inside reports whether every barycentric weight lies in [0, 1].
func inside(bary v3.Vec) bool {
	return bary.X >= 0 && bary.X <= 1 &&
		bary.Y >= 0 && bary.Y <= 1 &&
		bary.Z >= 0 && bary.Z <= 1
}
