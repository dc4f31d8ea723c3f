package kernel

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestNewLineEndpoints(t *testing.T) {
	tests := []struct {
		name string
		a, b v3.Vec
	}{
		{"unit diagonal", v3.Vec{X: 0, Y: 0, Z: 0}, v3.Vec{X: 1, Y: 1, Z: 1}},
		{"offset", v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 4, Y: -5, Z: 6.5}},
		{"axis", v3.Vec{X: 0, Y: 0, Z: 0}, v3.Vec{X: 0, Y: 0, Z: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLine(tt.a, tt.b)
			if err != nil {
				t.Fatalf("NewLine() error = %v", err)
			}
			if got := l.Point(0); !VecEqual(got, tt.a) {
				t.Errorf("Point(0) = %v, want %v", got, tt.a)
			}
			if got := l.Point(1); !VecEqual(got, tt.b) {
				t.Errorf("Point(1) = %v, want %v", got, tt.b)
			}
			d := tt.b.Sub(tt.a)
			if got, want := l.DirLen2(), d.Dot(d); got != want {
				t.Errorf("DirLen2() = %v, want %v", got, want)
			}
		})
	}
}

func TestNewLineDegenerate(t *testing.T) {
	p := v3.Vec{X: 3, Y: 3, Z: 3}
	_, err := NewLine(p, p)
	if err == nil {
		t.Fatal("expected error for identical points")
	}
	if !errors.Is(err, ErrDegenerateLine) {
		t.Errorf("error = %v, want ErrDegenerateLine", err)
	}
}

func TestMustLinePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLine did not panic on identical points")
		}
	}()
	MustLine(v3.Vec{}, v3.Vec{})
}

func TestLineDistance(t *testing.T) {
	l := MustLine(v3.Vec{X: 0, Y: 0, Z: 0}, v3.Vec{X: 0, Y: 0, Z: 10})

	tests := []struct {
		name string
		p    v3.Vec
		want float64
	}{
		{"pivot", v3.Vec{X: 0, Y: 0, Z: 0}, 0},
		{"on line ahead", v3.Vec{X: 0, Y: 0, Z: 25}, 0},
		{"on line behind", v3.Vec{X: 0, Y: 0, Z: -3}, 0},
		{"3-4-5", v3.Vec{X: 3, Y: 4, Z: 7}, 5},
		{"unit off axis", v3.Vec{X: 0, Y: 1, Z: 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.Distance(tt.p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestLineDistanceIndependentOfDirectionLength(t *testing.T) {
	p := v3.Vec{X: 1, Y: -2, Z: 4}
	short := MustLine(v3.Vec{X: 1, Y: 1, Z: 0}, v3.Vec{X: 2, Y: 1, Z: 0})
	long := MustLine(v3.Vec{X: 1, Y: 1, Z: 0}, v3.Vec{X: 101, Y: 1, Z: 0})
	if a, b := short.Distance(p), long.Distance(p); math.Abs(a-b) > 1e-9 {
		t.Errorf("Distance differs with direction length: %v vs %v", a, b)
	}
}

func TestLineString(t *testing.T) {
	l := MustLine(v3.Vec{X: 0, Y: 0, Z: 0}, v3.Vec{X: 1, Y: 2, Z: 3})
	want := "A (0, 0, 0) --> V (1, 2, 3)"
	if got := l.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
