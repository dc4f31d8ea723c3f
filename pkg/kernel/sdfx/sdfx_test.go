package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/raykit/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestTriangleRoundTrip(t *testing.T) {
	in := sdf.Triangle3{
		v3.Vec{X: 0, Y: 0, Z: 0},
		v3.Vec{X: 4, Y: 0, Z: 0},
		v3.Vec{X: 0, Y: 3, Z: 0},
	}
	tri, err := Triangle(in)
	if err != nil {
		t.Fatalf("Triangle() error = %v", err)
	}

	out := Triangle3(tri)
	for i := 0; i < 3; i++ {
		if !kernel.VecEqual(out[i], in[i]) {
			t.Errorf("vertex %d = %v, want %v", i, out[i], in[i])
		}
	}

	want := in.Normal()
	if got := tri.Normal(v3.Vec{}); !got.Equals(want, 1e-12) {
		t.Errorf("kernel normal %v disagrees with sdfx normal %v", got, want)
	}
}

func TestTriangleCollinear(t *testing.T) {
	in := sdf.Triangle3{
		v3.Vec{X: 0, Y: 0, Z: 0},
		v3.Vec{X: 1, Y: 1, Z: 0},
		v3.Vec{X: 2, Y: 2, Z: 0},
	}
	if _, err := Triangle(in); !errors.Is(err, kernel.ErrCollinear) {
		t.Fatalf("Triangle() error = %v, want ErrCollinear", err)
	}
}

func TestSphereResidual(t *testing.T) {
	s := kernel.NewSphere(v3.Vec{X: 1, Y: -2, Z: 3}, 2.5)
	field, err := Sphere(s)
	if err != nil {
		t.Fatalf("Sphere() error = %v", err)
	}

	lines := []kernel.Line{
		kernel.MustLine(v3.Vec{X: -10, Y: -2, Z: 3}, v3.Vec{X: 10, Y: -2, Z: 3}),
		kernel.MustLine(v3.Vec{X: 0, Y: 0, Z: 0}, v3.Vec{X: 1, Y: -1.5, Z: 2}),
		kernel.MustLine(v3.Vec{X: 1, Y: -2, Z: 3}, v3.Vec{X: 1.3, Y: -1.9, Z: 3.7}),
	}
	for _, l := range lines {
		roots := s.Intersects(l)
		if len(roots) == 0 {
			t.Errorf("%v: expected roots", l)
			continue
		}
		for _, lambda := range roots {
			if r := Residual(field, l.Point(lambda)); r > 1e-9 {
				t.Errorf("%v: residual at λ=%v is %v", l, lambda, r)
			}
		}
	}

	if r := Residual(field, s.Center()); math.Abs(r-2.5) > 1e-9 {
		t.Errorf("residual at center = %v, want radius", r)
	}
}

func TestSphereNonPositiveRadius(t *testing.T) {
	if _, err := Sphere(kernel.NewSphere(v3.Vec{}, 0)); err == nil {
		t.Fatal("expected sdfx to reject a zero radius")
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name     string
		shape    kernel.Shape
		ok       bool
		min, max v3.Vec
	}{
		{
			name:  "sphere",
			shape: kernel.NewSphere(v3.Vec{X: 1, Y: 2, Z: 3}, 1),
			ok:    true,
			min:   v3.Vec{X: 0, Y: 1, Z: 2},
			max:   v3.Vec{X: 2, Y: 3, Z: 4},
		},
		{
			name:  "sphere with negative radius",
			shape: kernel.NewSphere(v3.Vec{X: 1, Y: 2, Z: 3}, -1),
			ok:    true,
			min:   v3.Vec{X: 0, Y: 1, Z: 2},
			max:   v3.Vec{X: 2, Y: 3, Z: 4},
		},
		{
			name: "triangle",
			shape: kernel.MustTriangle(
				v3.Vec{X: -1, Y: 5, Z: 0},
				v3.Vec{X: 3, Y: 0, Z: 2},
				v3.Vec{X: 0, Y: -4, Z: 1},
			),
			ok:  true,
			min: v3.Vec{X: -1, Y: -4, Z: 0},
			max: v3.Vec{X: 3, Y: 5, Z: 2},
		},
		{
			name:  "plane",
			shape: kernel.MustPlane(v3.Vec{}, v3.Vec{Z: 1}),
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, ok := Bounds(tt.shape)
			if ok != tt.ok {
				t.Fatalf("Bounds() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if !kernel.VecEqual(box.Min, tt.min) {
				t.Errorf("Min = %v, want %v", box.Min, tt.min)
			}
			if !kernel.VecEqual(box.Max, tt.max) {
				t.Errorf("Max = %v, want %v", box.Max, tt.max)
			}
		})
	}
}
