// Package sdfx bridges kernel shapes and the github.com/deadsy/sdfx
// SDF-based CAD library: triangles convert to and from sdf.Triangle3, and
// spheres get a signed distance field that measures how far a hit point
// lies from the true surface.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/raykit/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle converts an sdfx triangle, such as one emitted by an sdfx
// renderer, into a kernel triangle. Vertex order is kept, so both agree
// on the normal.
func Triangle(t sdf.Triangle3) (*kernel.Triangle, error) {
	tri, err := kernel.NewTriangle(t[0], t[1], t[2])
	if err != nil {
		return nil, fmt.Errorf("sdfx: triangle: %w", err)
	}
	return tri, nil
}

// Triangle3 converts a kernel triangle back to sdfx form.
func Triangle3(t *kernel.Triangle) sdf.Triangle3 {
	a, b, c := t.Vertices()
	return sdf.Triangle3{a, b, c}
}

// Sphere returns the signed distance field of s: negative inside,
// zero on the surface.
func Sphere(s *kernel.Sphere) (sdf.SDF3, error) {
	ball, err := sdf.Sphere3D(s.Radius())
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	return sdf.Transform3D(ball, sdf.Translate3d(s.Center())), nil
}

// Residual returns the distance of p from the zero level set of field.
// For a correctly computed intersection point this is ~0.
func Residual(field sdf.SDF3, p v3.Vec) float64 {
	return math.Abs(field.Evaluate(p))
}

// Bounds returns the axis-aligned bounding box of a bounded shape.
// Planes are unbounded and report false.
func Bounds(s kernel.Shape) (sdf.Box3, bool) {
	switch shape := s.(type) {
	case *kernel.Sphere:
		// A negative radius still describes a ball of |r|.
		r := math.Abs(shape.Radius())
		ext := v3.Vec{X: r, Y: r, Z: r}
		return sdf.Box3{Min: shape.Center().Sub(ext), Max: shape.Center().Add(ext)}, true
	case *kernel.Triangle:
		tri := Triangle3(shape)
		return tri.BoundingBox(), true
	}
	return sdf.Box3{}, false
}
